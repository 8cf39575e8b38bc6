package question

import (
	"fmt"
	"strings"
)

// BlankMarker marks each gap in a completion template.
const BlankMarker = "___"

type CompletionBlank struct {
	Position int      `json:"position" validate:"gte=0"`
	Accepted []string `json:"accepted" validate:"min=1,dive,required"`
	// CaseSensitive disables lowercasing when comparing answers.
	CaseSensitive bool `json:"case_sensitive,omitempty"`
}

type CompletionQuestion struct {
	Template string            `json:"template" validate:"required"`
	Blanks   []CompletionBlank `json:"blanks" validate:"min=1,dive"`
}

type CompletionAnswer struct {
	Position int    `json:"position" validate:"gte=0"`
	Value    string `json:"value"`
}

type CompletionResponse struct {
	Answers []CompletionAnswer `json:"answers" validate:"dive"`
}

type completionView struct {
	Template   string `json:"template"`
	BlankCount int    `json:"blank_count"`
}

func init() {
	Default.Register(kind[CompletionQuestion, CompletionResponse]{
		typ: Completion,
		checkQ: func(q *CompletionQuestion) error {
			if n := strings.Count(q.Template, BlankMarker); n != len(q.Blanks) {
				return fmt.Errorf("template has %d blanks, %d defined", n, len(q.Blanks))
			}
			seen := make(map[int]struct{}, len(q.Blanks))
			for _, b := range q.Blanks {
				if b.Position >= len(q.Blanks) {
					return fmt.Errorf("blank position %d out of range", b.Position)
				}
				if _, dup := seen[b.Position]; dup {
					return fmt.Errorf("duplicate blank position %d", b.Position)
				}
				seen[b.Position] = struct{}{}
			}
			return nil
		},
		checkR: func(q *CompletionQuestion, r *CompletionResponse) error {
			seen := make(map[int]struct{}, len(r.Answers))
			for _, a := range r.Answers {
				if a.Position >= len(q.Blanks) {
					return fmt.Errorf("answer position %d out of range", a.Position)
				}
				if _, dup := seen[a.Position]; dup {
					return fmt.Errorf("duplicate answer position %d", a.Position)
				}
				seen[a.Position] = struct{}{}
			}
			return nil
		},
		grade: func(q *CompletionQuestion, r *CompletionResponse) *bool {
			given := make(map[int]string, len(r.Answers))
			for _, a := range r.Answers {
				given[a.Position] = a.Value
			}
			for _, b := range q.Blanks {
				v, ok := given[b.Position]
				if !ok || !acceptedAnswer(b.Accepted, v, b.CaseSensitive) {
					return boolPtr(false)
				}
			}
			return boolPtr(true)
		},
		redact: func(q *CompletionQuestion) any {
			return completionView{Template: q.Template, BlankCount: len(q.Blanks)}
		},
	})
}

func acceptedAnswer(accepted []string, value string, caseSensitive bool) bool {
	v := normalize(value, caseSensitive)
	if v == "" {
		return false
	}
	for _, a := range accepted {
		if normalize(a, caseSensitive) == v {
			return true
		}
	}
	return false
}
