package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// The interfaces below are satisfied by the pgx repositories, the Redis
// helpers in package cache and the local bucket store.

// AssignmentStore persists assignments.
type AssignmentStore interface {
	CreateWithQuestions(ctx context.Context, a *model.Assignment, qs []model.Question, attachments []model.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	List(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAssignmentRequest) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.AssignmentStatus, to model.AssignmentStatus) error
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	ListPublishedIDs(ctx context.Context) ([]uuid.UUID, error)
}

// QuestionStore persists an assignment's ordered questions.
type QuestionStore interface {
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error)
	ReplaceAll(ctx context.Context, assignmentID uuid.UUID, qs []model.Question) error
}

// AttachmentStore persists attachment rows.
type AttachmentStore interface {
	Create(ctx context.Context, a *model.Attachment) error
	ListByOwner(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]model.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

// SubmissionStore persists submissions and their responses.
type SubmissionStore interface {
	Start(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error)
	Submit(ctx context.Context, sub *model.Submission, responses []model.QuestionResponse, attachments []model.Attachment) error
	Grade(ctx context.Context, id uuid.UUID, score *float64, feedback *string, graderID uuid.UUID) (*model.Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error)
	ListResponses(ctx context.Context, submissionID uuid.UUID) ([]model.QuestionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID, status model.SubmissionStatus, page, perPage int) ([]model.Submission, int, error)
}

// LinkStore persists share links.
type LinkStore interface {
	Create(ctx context.Context, l *model.ShareableLink) error
	GetActiveByToken(ctx context.Context, token string) (*model.ShareableLink, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ShareableLink, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.ShareableLink, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByContent(ctx context.Context, contentType model.LinkContentType, contentID uuid.UUID) ([]model.ShareableLink, error)
	IncrementViews(ctx context.Context, id uuid.UUID, n int, at time.Time) error
}

// UserStore persists accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListByRole(ctx context.Context, role model.Role, classID *int, page, perPage int) ([]model.User, int, error)
}

// ObjectStore keeps file contents.
type ObjectStore interface {
	Put(ctx context.Context, b storage.Bucket, key string, body io.Reader) (int64, error)
	Delete(ctx context.Context, b storage.Bucket, key string) error
	List(ctx context.Context, b storage.Bucket, prefix string) ([]storage.Object, error)
	URL(b storage.Bucket, key string) (string, error)
}

// PayloadCache holds redacted assignment payloads for students.
type PayloadCache interface {
	GetPayload(ctx context.Context, id uuid.UUID) (*model.AssignmentPayload, error)
	SetPayload(ctx context.Context, p *model.AssignmentPayload) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// ViewQueue defers share-link view counting.
type ViewQueue interface {
	EnqueueView(ctx context.Context, linkID uuid.UUID, at time.Time) error
}

// EventPublisher announces submission state changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.SubmissionEvent) error
}

// TokenStore remembers logged-out tokens.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
