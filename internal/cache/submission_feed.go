package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/classwork-backend/internal/config"
	"github.com/stemsi/classwork-backend/internal/model"
)

// SubmissionFeed fans submission events out over Redis Pub/Sub, one channel per assignment.
type SubmissionFeed struct {
	rdb *redis.Client
}

// NewSubmissionFeed creates a SubmissionFeed.
func NewSubmissionFeed(rdb *redis.Client) *SubmissionFeed {
	return &SubmissionFeed{rdb: rdb}
}

// Publish sends ev to its assignment's channel.
func (f *SubmissionFeed) Publish(ctx context.Context, ev model.SubmissionEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return f.rdb.Publish(ctx, config.CacheKey.AssignmentFeedChannel(ev.AssignmentID.String()), raw).Err()
}

// Subscribe listens on an assignment's channel. The caller closes the subscription.
func (f *SubmissionFeed) Subscribe(ctx context.Context, assignmentID uuid.UUID) *redis.PubSub {
	return f.rdb.Subscribe(ctx, config.CacheKey.AssignmentFeedChannel(assignmentID.String()))
}
