package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates the possible states of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "DRAFT"
	AssignmentStatusPublished AssignmentStatus = "PUBLISHED"
	AssignmentStatusArchived  AssignmentStatus = "ARCHIVED"
)

// Difficulty is the teacher's rating of an assignment.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// AssignmentTypeMixed marks an assignment holding several question kinds.
const AssignmentTypeMixed = "MIXED"

// Assignment represents an interactive assignment with its joined relations.
type Assignment struct {
	ID                 uuid.UUID        `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Type               string           `json:"type"`
	ClassID            int              `json:"class_id"`
	SubjectID          int              `json:"subject_id"`
	DueDate            *time.Time       `json:"due_date,omitempty"`
	Status             AssignmentStatus `json:"status"`
	Difficulty         Difficulty       `json:"difficulty"`
	EstimatedMinutes   int              `json:"estimated_minutes"`
	AudioFeedback      bool             `json:"audio_feedback"`
	Celebration        bool             `json:"celebration"`
	ParentHelpRequired bool             `json:"parent_help_required"`
	CreatedBy          uuid.UUID        `json:"created_by"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`

	Class       *ClassRef    `json:"class,omitempty"`
	Subject     *SubjectRef  `json:"subject,omitempty"`
	Questions   []Question   `json:"questions,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	// QuestionCount is filled on list reads, where questions are not loaded.
	QuestionCount int `json:"question_count"`
}

// CreateAssignmentRequest is the payload for creating an assignment together
// with its questions. Files arrive as multipart parts next to it.
type CreateAssignmentRequest struct {
	Title              string          `json:"title" binding:"required,min=3,max=255"`
	Description        string          `json:"description" binding:"max=5000"`
	Type               string          `json:"type" binding:"required,assignmenttype"`
	ClassID            int             `json:"class_id" binding:"required,min=1"`
	SubjectID          int             `json:"subject_id" binding:"required,min=1"`
	DueDate            *time.Time      `json:"due_date" binding:"omitempty"`
	Difficulty         Difficulty      `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	EstimatedMinutes   int             `json:"estimated_minutes" binding:"omitempty,min=1,max=600"`
	AudioFeedback      bool            `json:"audio_feedback"`
	Celebration        bool            `json:"celebration"`
	ParentHelpRequired bool            `json:"parent_help_required"`
	Questions          []QuestionInput `json:"questions" binding:"omitempty,dive"`
}

// UpdateAssignmentRequest patches assignment fields. Nil fields are left as is.
type UpdateAssignmentRequest struct {
	Title              *string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description        *string     `json:"description" binding:"omitempty,max=5000"`
	Type               *string     `json:"type" binding:"omitempty,assignmenttype"`
	ClassID            *int        `json:"class_id" binding:"omitempty,min=1"`
	SubjectID          *int        `json:"subject_id" binding:"omitempty,min=1"`
	DueDate            *time.Time  `json:"due_date" binding:"omitempty"`
	Difficulty         *Difficulty `json:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	EstimatedMinutes   *int        `json:"estimated_minutes" binding:"omitempty,min=1,max=600"`
	AudioFeedback      *bool       `json:"audio_feedback"`
	Celebration        *bool       `json:"celebration"`
	ParentHelpRequired *bool       `json:"parent_help_required"`
}

// IsEmpty reports whether the patch changes nothing.
func (r *UpdateAssignmentRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Type == nil &&
		r.ClassID == nil && r.SubjectID == nil && r.DueDate == nil &&
		r.Difficulty == nil && r.EstimatedMinutes == nil && r.AudioFeedback == nil &&
		r.Celebration == nil && r.ParentHelpRequired == nil
}

// AssignmentFilter narrows list reads.
type AssignmentFilter struct {
	ClassID   *int
	SubjectID *int
	Status    AssignmentStatus
	Search    string
	Page      int
	PerPage   int
}

// AssignmentPayload is the cached student view: published fields only, no answer keys.
type AssignmentPayload struct {
	AssignmentID       uuid.UUID            `json:"assignment_id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Type               string               `json:"type"`
	DueDate            *time.Time           `json:"due_date,omitempty"`
	Difficulty         Difficulty           `json:"difficulty"`
	EstimatedMinutes   int                  `json:"estimated_minutes"`
	AudioFeedback      bool                 `json:"audio_feedback"`
	Celebration        bool                 `json:"celebration"`
	ParentHelpRequired bool                 `json:"parent_help_required"`
	Class              *ClassRef            `json:"class,omitempty"`
	Subject            *SubjectRef          `json:"subject,omitempty"`
	Questions          []QuestionForStudent `json:"questions"`
	Attachments        []Attachment         `json:"attachments"`
}
