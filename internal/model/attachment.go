package model

import (
	"time"

	"github.com/google/uuid"
)

// OwnerType names the table an attachment hangs off.
type OwnerType string

const (
	OwnerAssignment OwnerType = "ASSIGNMENT"
	OwnerSubmission OwnerType = "SUBMISSION"
)

// Attachment is a stored file linked to an assignment or a submission.
// URL is public for the media bucket and a short-lived signed URL otherwise,
// filled in when the row is read.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	OwnerType   OwnerType `json:"owner_type"`
	OwnerID     uuid.UUID `json:"owner_id"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
