package model

import "time"

// Subject represents an academic course or subject.
type Subject struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	AssignmentCount int       `json:"assignment_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SubjectRef is the subject summary joined onto assignments.
type SubjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SubjectRequest is the payload for creating or renaming a subject.
type SubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
