package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AssignmentPayloadKey returns the cache key for the redacted student view of an assignment
func (r *CacheKeyStruct) AssignmentPayloadKey(assignmentID string) string {
	return fmt.Sprintf("assignment:%s:payload", assignmentID)
}

// AssignmentFeedChannel returns the Redis PubSub channel carrying submission events for an assignment
func (r *CacheKeyStruct) AssignmentFeedChannel(assignmentID string) string {
	return fmt.Sprintf("assignment:%s:feed", assignmentID)
}

// RevokedTokenKey marks a logged-out access token by its JWT id
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
