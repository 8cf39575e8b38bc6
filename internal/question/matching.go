package question

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MatchingPair is one left/right pair. Students see the left side under ID
// and the right side under RightID, so the two ids of a pair must not be
// derivable from each other. Authors may leave RightID empty; Prepare
// assigns a random one.
type MatchingPair struct {
	ID      string `json:"id" validate:"required"`
	RightID string `json:"right_id,omitempty"`
	Left    string `json:"left" validate:"required"`
	Right   string `json:"right" validate:"required"`
}

type MatchingQuestion struct {
	Pairs []MatchingPair `json:"pairs" validate:"min=2,dive"`
}

// MatchingLink says the student joined the left item LeftID to the right
// item RightID.
type MatchingLink struct {
	LeftID  string `json:"left_id" validate:"required"`
	RightID string `json:"right_id" validate:"required"`
}

type MatchingResponse struct {
	Matches []MatchingLink `json:"matches" validate:"dive"`
}

type matchingSide struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type matchingView struct {
	Left  []matchingSide `json:"left"`
	Right []matchingSide `json:"right"`
}

func newRightID() string {
	return "r-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// rightToPair maps each right id to the id of the pair it belongs to.
func (q *MatchingQuestion) rightToPair() map[string]string {
	m := make(map[string]string, len(q.Pairs))
	for _, p := range q.Pairs {
		m[p.RightID] = p.ID
	}
	return m
}

func init() {
	Default.Register(kind[MatchingQuestion, MatchingResponse]{
		typ: Matching,
		prepare: func(q *MatchingQuestion) error {
			for i := range q.Pairs {
				if q.Pairs[i].RightID == "" {
					q.Pairs[i].RightID = newRightID()
				}
			}
			return nil
		},
		checkQ: func(q *MatchingQuestion) error {
			ids := make([]string, 0, 2*len(q.Pairs))
			for _, p := range q.Pairs {
				if p.RightID == "" {
					return fmt.Errorf("pair %q has no right id", p.ID)
				}
				ids = append(ids, p.ID, p.RightID)
			}
			// One namespace for both columns: no right id may equal any left id.
			_, err := uniqueIDs(ids)
			return err
		},
		checkR: func(q *MatchingQuestion, r *MatchingResponse) error {
			left := make(map[string]struct{}, len(q.Pairs))
			for _, p := range q.Pairs {
				left[p.ID] = struct{}{}
			}
			right := q.rightToPair()

			usedLeft := make(map[string]struct{}, len(r.Matches))
			for _, m := range r.Matches {
				if _, ok := left[m.LeftID]; !ok {
					return fmt.Errorf("unknown left id %q", m.LeftID)
				}
				if _, ok := right[m.RightID]; !ok {
					return fmt.Errorf("unknown right id %q", m.RightID)
				}
				if _, dup := usedLeft[m.LeftID]; dup {
					return errors.New("left id matched twice")
				}
				usedLeft[m.LeftID] = struct{}{}
			}
			return nil
		},
		grade: func(q *MatchingQuestion, r *MatchingResponse) *bool {
			if len(r.Matches) != len(q.Pairs) {
				return boolPtr(false)
			}
			right := q.rightToPair()
			for _, m := range r.Matches {
				if right[m.RightID] != m.LeftID {
					return boolPtr(false)
				}
			}
			return boolPtr(true)
		},
		redact: func(q *MatchingQuestion) any {
			v := matchingView{
				Left:  make([]matchingSide, len(q.Pairs)),
				Right: make([]matchingSide, len(q.Pairs)),
			}
			for i, p := range q.Pairs {
				v.Left[i] = matchingSide{ID: p.ID, Text: p.Left}
				v.Right[i] = matchingSide{ID: p.RightID, Text: p.Right}
			}
			sort.SliceStable(v.Right, func(i, j int) bool { return v.Right[i].Text < v.Right[j].Text })
			return v
		},
	})
}
