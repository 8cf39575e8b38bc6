package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardPendingItem is an assignment with submissions waiting for a grade.
type DashboardPendingItem struct {
	AssignmentID uuid.UUID  `json:"assignment_id"`
	Title        string     `json:"title"`
	DueDate      *time.Time `json:"due_date"`
	Pending      int        `json:"pending"`
}

// DashboardRecentSubmission is a minimal row for the latest turned-in work.
type DashboardRecentSubmission struct {
	SubmissionID    uuid.UUID        `json:"submission_id"`
	AssignmentID    uuid.UUID        `json:"assignment_id"`
	AssignmentTitle string           `json:"assignment_title"`
	StudentName     string           `json:"student_name"`
	Status          SubmissionStatus `json:"status"`
	SubmittedAt     *time.Time       `json:"submitted_at"`
}

// DashboardData consolidates all metrics for the staff dashboard.
type DashboardData struct {
	TotalStudents          int                         `json:"total_students"`
	TotalAssignments       int                         `json:"total_assignments"`
	TotalQuestions         int                         `json:"total_questions"`
	TotalActiveLinks       int                         `json:"total_active_links"`
	AssignmentStatusCounts map[AssignmentStatus]int    `json:"assignment_status_counts"`
	PendingGrading         []DashboardPendingItem      `json:"pending_grading"`
	RecentSubmissions      []DashboardRecentSubmission `json:"recent_submissions"`
}
