package question

import (
	"errors"
	"fmt"
)

type ChoiceOption struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type MultipleChoiceQuestion struct {
	Options          []ChoiceOption `json:"options" validate:"min=2,dive"`
	CorrectOptionIDs []string       `json:"correct_option_ids" validate:"min=1,dive,required"`
	Multiple         bool           `json:"multiple"`
}

type MultipleChoiceResponse struct {
	SelectedOptionIDs []string `json:"selected_option_ids" validate:"dive,required"`
}

type multipleChoiceView struct {
	Options  []ChoiceOption `json:"options"`
	Multiple bool           `json:"multiple"`
}

type TrueFalseQuestion struct {
	Answer *bool `json:"answer" validate:"required"`
}

type TrueFalseResponse struct {
	Value *bool `json:"value" validate:"required"`
}

func init() {
	Default.Register(kind[MultipleChoiceQuestion, MultipleChoiceResponse]{
		typ: MultipleChoice,
		checkQ: func(q *MultipleChoiceQuestion) error {
			ids := make([]string, len(q.Options))
			for i, o := range q.Options {
				ids[i] = o.ID
			}
			known, err := uniqueIDs(ids)
			if err != nil {
				return err
			}
			if !q.Multiple && len(q.CorrectOptionIDs) != 1 {
				return errors.New("single-answer question needs exactly one correct option")
			}
			for _, id := range q.CorrectOptionIDs {
				if _, ok := known[id]; !ok {
					return fmt.Errorf("correct option %q is not an option", id)
				}
			}
			return nil
		},
		checkR: func(q *MultipleChoiceQuestion, r *MultipleChoiceResponse) error {
			if !q.Multiple && len(r.SelectedOptionIDs) > 1 {
				return errors.New("only one option may be selected")
			}
			known := make(map[string]struct{}, len(q.Options))
			for _, o := range q.Options {
				known[o.ID] = struct{}{}
			}
			for _, id := range r.SelectedOptionIDs {
				if _, ok := known[id]; !ok {
					return fmt.Errorf("unknown option %q", id)
				}
			}
			return nil
		},
		grade: func(q *MultipleChoiceQuestion, r *MultipleChoiceResponse) *bool {
			return boolPtr(sameSet(q.CorrectOptionIDs, r.SelectedOptionIDs))
		},
		redact: func(q *MultipleChoiceQuestion) any {
			return multipleChoiceView{Options: q.Options, Multiple: q.Multiple}
		},
	})

	Default.Register(kind[TrueFalseQuestion, TrueFalseResponse]{
		typ: TrueFalse,
		grade: func(q *TrueFalseQuestion, r *TrueFalseResponse) *bool {
			return boolPtr(*r.Value == *q.Answer)
		},
		redact: func(*TrueFalseQuestion) any { return struct{}{} },
	})
}
