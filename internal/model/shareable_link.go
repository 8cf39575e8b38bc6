package model

import (
	"time"

	"github.com/google/uuid"
)

// LinkContentType names what a share link points at.
type LinkContentType string

const (
	LinkContentAssignment LinkContentType = "ASSIGNMENT"
)

// ShareableLink grants read access to content through an unguessable token.
type ShareableLink struct {
	ID           uuid.UUID       `json:"id"`
	Token        string          `json:"token"`
	ContentType  LinkContentType `json:"content_type"`
	ContentID    uuid.UUID       `json:"content_id"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	IsActive     bool            `json:"is_active"`
	ViewCount    int64           `json:"view_count"`
	LastViewedAt *time.Time      `json:"last_viewed_at,omitempty"`
	// URL is the public address built from the token.
	URL string `json:"url,omitempty"`
}

// Expired reports whether the link's expiry has passed at now.
func (l *ShareableLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// CreateShareableLinkRequest is the payload for issuing a link.
type CreateShareableLinkRequest struct {
	ContentType LinkContentType `json:"content_type" binding:"required,oneof=ASSIGNMENT"`
	ContentID   uuid.UUID       `json:"content_id" binding:"required"`
	ExpiresAt   *time.Time      `json:"expires_at" binding:"omitempty"`
}

// PublicLinkView is what an anonymous visitor of a share link receives.
type PublicLinkView struct {
	Token      string             `json:"token"`
	ExpiresAt  *time.Time         `json:"expires_at,omitempty"`
	Assignment *AssignmentPayload `json:"assignment"`
}
