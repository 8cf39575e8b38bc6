package question

import "errors"

var errTooLong = errors.New("answer exceeds max length")

// ShortAnswerQuestion without accepted answers is graded by hand.
type ShortAnswerQuestion struct {
	AcceptedAnswers []string `json:"accepted_answers" validate:"dive,required"`
	CaseSensitive   bool     `json:"case_sensitive,omitempty"`
	MaxLength       int      `json:"max_length,omitempty" validate:"gte=0"`
}

type ShortAnswerResponse struct {
	Text string `json:"text"`
}

type shortAnswerView struct {
	MaxLength int `json:"max_length,omitempty"`
}

func init() {
	Default.Register(kind[ShortAnswerQuestion, ShortAnswerResponse]{
		typ: ShortAnswer,
		checkR: func(q *ShortAnswerQuestion, r *ShortAnswerResponse) error {
			if q.MaxLength > 0 && len([]rune(r.Text)) > q.MaxLength {
				return errTooLong
			}
			return nil
		},
		grade: func(q *ShortAnswerQuestion, r *ShortAnswerResponse) *bool {
			if len(q.AcceptedAnswers) == 0 {
				return nil
			}
			return boolPtr(acceptedAnswer(q.AcceptedAnswers, r.Text, q.CaseSensitive))
		},
		redact: func(q *ShortAnswerQuestion) any {
			return shortAnswerView{MaxLength: q.MaxLength}
		},
	})
}
