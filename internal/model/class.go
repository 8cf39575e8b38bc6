package model

import "time"

// Class represents a school class group.
type Class struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Section    string `json:"section"`
	GradeLevel int    `json:"grade_level"`

	// Students and assignments currently attached to the class.
	StudentCount    int       `json:"student_count"`
	AssignmentCount int       `json:"assignment_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ClassRef is the class summary joined onto assignments.
type ClassRef struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

// CreateClassRequest is the payload for creating or renaming a class.
type CreateClassRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Section    string `json:"section" binding:"max=20"`
	GradeLevel int    `json:"grade_level" binding:"required,min=1,max=12"`
}
