package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus tracks a student's progress on one assignment.
// It moves STARTED → SUBMITTED → GRADED; a resubmission reopens GRADED to SUBMITTED.
type SubmissionStatus string

const (
	SubmissionStatusStarted   SubmissionStatus = "STARTED"
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionStatusGraded    SubmissionStatus = "GRADED"
)

// Submission is one student's attempt at an assignment.
type Submission struct {
	ID           uuid.UUID        `json:"id"`
	AssignmentID uuid.UUID        `json:"assignment_id"`
	StudentID    uuid.UUID        `json:"student_id"`
	StudentName  string           `json:"student_name,omitempty"`
	Status       SubmissionStatus `json:"status"`
	StartedAt    time.Time        `json:"started_at"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty"`
	Score        *float64         `json:"score"`
	Feedback     *string          `json:"feedback"`
	GradedBy     *uuid.UUID       `json:"graded_by,omitempty"`
	GradedAt     *time.Time       `json:"graded_at,omitempty"`

	Responses   []QuestionResponse `json:"responses,omitempty"`
	Attachments []Attachment       `json:"attachments,omitempty"`
}

// QuestionResponse is the answer to one question. IsCorrect is nil when the
// question kind is graded by hand.
type QuestionResponse struct {
	ID           uuid.UUID       `json:"id"`
	SubmissionID uuid.UUID       `json:"submission_id"`
	QuestionID   uuid.UUID       `json:"question_id"`
	ResponseData json.RawMessage `json:"response_data"`
	IsCorrect    *bool           `json:"is_correct"`
}

// ResponseInput is one answer inside a submit request.
type ResponseInput struct {
	QuestionID   uuid.UUID       `json:"question_id" binding:"required"`
	ResponseData json.RawMessage `json:"response_data" binding:"required"`
}

// SubmitAssignmentRequest carries every answer of an attempt at once.
type SubmitAssignmentRequest struct {
	AssignmentID uuid.UUID       `json:"-"`
	Responses    []ResponseInput `json:"responses" binding:"required,min=1,dive"`
}

// GradeSubmissionRequest is the teacher's verdict.
type GradeSubmissionRequest struct {
	Score    *float64 `json:"score" binding:"required,min=0,max=100"`
	Feedback *string  `json:"feedback" binding:"omitempty,max=5000"`
}

// SubmissionEventType names events on an assignment's live feed.
type SubmissionEventType string

const (
	SubmissionEventSubmitted SubmissionEventType = "submission.submitted"
	SubmissionEventGraded    SubmissionEventType = "submission.graded"
)

// SubmissionEvent is published whenever a submission changes state.
type SubmissionEvent struct {
	Type         SubmissionEventType `json:"type"`
	AssignmentID uuid.UUID           `json:"assignment_id"`
	SubmissionID uuid.UUID           `json:"submission_id"`
	StudentID    uuid.UUID           `json:"student_id"`
	Status       SubmissionStatus    `json:"status"`
	Score        *float64            `json:"score,omitempty"`
	At           time.Time           `json:"at"`
}
