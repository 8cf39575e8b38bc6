package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/classwork-backend/internal/config"
)

// ErrMalformed is returned for queue items that cannot be decoded. The item is dropped.
var ErrMalformed = errors.New("malformed queue item")

// ViewEvent is one share-link visit waiting to be counted.
type ViewEvent struct {
	LinkID   uuid.UUID `json:"link_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

// ViewQueue pushes link views onto the Redis list drained by the view count worker.
type ViewQueue struct {
	rdb *redis.Client
}

// NewViewQueue creates a ViewQueue.
func NewViewQueue(rdb *redis.Client) *ViewQueue {
	return &ViewQueue{rdb: rdb}
}

// EnqueueView records one view of linkID.
func (q *ViewQueue) EnqueueView(ctx context.Context, linkID uuid.UUID, at time.Time) error {
	raw, err := json.Marshal(ViewEvent{LinkID: linkID, ViewedAt: at.UTC()})
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.LinkViewQueue, raw).Err()
}

// PopView waits up to timeout for the oldest queued view. It returns ErrMiss
// when nothing arrived in time.
func (q *ViewQueue) PopView(ctx context.Context, timeout time.Duration) (*ViewEvent, error) {
	item, err := q.rdb.BLPop(ctx, timeout, config.WorkerKey.LinkViewQueue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	if len(item) < 2 {
		return nil, ErrMiss
	}

	var ev ViewEvent
	if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &ev, nil
}

// Len returns the number of views waiting to be counted.
func (q *ViewQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.LinkViewQueue).Result()
}
