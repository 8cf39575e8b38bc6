package question

import (
	"fmt"
	"sort"
)

type OrderingItem struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// OrderingQuestion stores its items in the correct order.
type OrderingQuestion struct {
	Items []OrderingItem `json:"items" validate:"min=2,dive"`
}

type OrderingResponse struct {
	Order []string `json:"order" validate:"dive,required"`
}

type orderingView struct {
	Items []OrderingItem `json:"items"`
}

func init() {
	Default.Register(kind[OrderingQuestion, OrderingResponse]{
		typ: Ordering,
		checkQ: func(q *OrderingQuestion) error {
			_, err := uniqueIDs(q.itemIDs())
			return err
		},
		checkR: func(q *OrderingQuestion, r *OrderingResponse) error {
			if len(r.Order) != len(q.Items) {
				return fmt.Errorf("expected %d items, got %d", len(q.Items), len(r.Order))
			}
			if !sameSet(q.itemIDs(), r.Order) {
				return fmt.Errorf("order must contain every item exactly once")
			}
			return nil
		},
		grade: func(q *OrderingQuestion, r *OrderingResponse) *bool {
			for i, item := range q.Items {
				if r.Order[i] != item.ID {
					return boolPtr(false)
				}
			}
			return boolPtr(true)
		},
		redact: func(q *OrderingQuestion) any {
			items := append([]OrderingItem(nil), q.Items...)
			sort.SliceStable(items, func(i, j int) bool { return items[i].Text < items[j].Text })
			return orderingView{Items: items}
		},
	})
}

func (q *OrderingQuestion) itemIDs() []string {
	ids := make([]string, len(q.Items))
	for i, item := range q.Items {
		ids[i] = item.ID
	}
	return ids
}
