// Package cache holds the Redis-backed parts of the service: the student
// payload cache, the share-link view queue, the submission feed and token
// revocation.
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
	"github.com/stemsi/classwork-backend/internal/model"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// AssignmentCache stores redacted assignment payloads served to students.
type AssignmentCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAssignmentCache creates an AssignmentCache. ttl <= 0 keeps entries until invalidated.
func NewAssignmentCache(rdb *redis.Client, ttl time.Duration) *AssignmentCache {
	return &AssignmentCache{rdb: rdb, ttl: ttl}
}

// GetPayload returns the cached payload or ErrMiss.
func (c *AssignmentCache) GetPayload(ctx context.Context, id uuid.UUID) (*model.AssignmentPayload, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.AssignmentPayloadKey(id.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var p model.AssignmentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// SetPayload caches p under its assignment id.
func (c *AssignmentCache) SetPayload(ctx context.Context, p *model.AssignmentPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, config.CacheKey.AssignmentPayloadKey(p.AssignmentID.String()), raw, ttl).Err()
}

// Invalidate drops the cached payload of an assignment.
func (c *AssignmentCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, config.CacheKey.AssignmentPayloadKey(id.String())).Err()
}
