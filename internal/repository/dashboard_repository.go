package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// DashboardRepository handles staff dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalStudents, totalAssignments, totalQuestions, activeLinks int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'STUDENT'),
			(SELECT COUNT(*) FROM assignments),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM shareable_links
			 WHERE is_active AND (expires_at IS NULL OR expires_at > NOW()))`,
	).Scan(&totalStudents, &totalAssignments, &totalQuestions, &activeLinks)
	return
}

// GetAssignmentStatusCounts retrieves the distribution of assignments by status.
func (r *DashboardRepository) GetAssignmentStatusCounts(ctx context.Context) (map[model.AssignmentStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM assignments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.AssignmentStatus]int)
	for rows.Next() {
		var status model.AssignmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetPendingGrading retrieves assignments with SUBMITTED work, most backlog first.
func (r *DashboardRepository) GetPendingGrading(ctx context.Context, limit int) ([]model.DashboardPendingItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.title, a.due_date, COUNT(s.id) AS pending
		 FROM assignments a
		 JOIN submissions s ON s.assignment_id = a.id AND s.status = $1
		 GROUP BY a.id, a.title, a.due_date
		 ORDER BY pending DESC, a.due_date ASC NULLS LAST
		 LIMIT $2`,
		model.SubmissionStatusSubmitted, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.DashboardPendingItem{}
	for rows.Next() {
		var it model.DashboardPendingItem
		if err := rows.Scan(&it.AssignmentID, &it.Title, &it.DueDate, &it.Pending); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetRecentSubmissions retrieves the last N turned-in submissions.
func (r *DashboardRepository) GetRecentSubmissions(ctx context.Context, limit int) ([]model.DashboardRecentSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, a.id, a.title, u.name, s.status, s.submitted_at
		 FROM submissions s
		 JOIN assignments a ON a.id = s.assignment_id
		 JOIN users u ON u.id = s.student_id
		 WHERE s.submitted_at IS NOT NULL
		 ORDER BY s.submitted_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.DashboardRecentSubmission{}
	for rows.Next() {
		var rs model.DashboardRecentSubmission
		if err := rows.Scan(&rs.SubmissionID, &rs.AssignmentID, &rs.AssignmentTitle, &rs.StudentName, &rs.Status, &rs.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, rs)
	}
	return results, rows.Err()
}
