package service

import (
	"context"

	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
)

// Sizes of the pending grading and recent submission lists.
const (
	DefaultDashboardListLimit = 5
	MaxDashboardListLimit     = 20
)

// DashboardService handles staff dashboard business logic.
type DashboardService struct {
	repo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData fetches all dashboard metrics sequentially. limit is
// clamped to [1, MaxDashboardListLimit].
func (s *DashboardService) GetDashboardData(ctx context.Context, limit int) (*model.DashboardData, error) {
	limit = max(1, min(limit, MaxDashboardListLimit))

	students, assignments, questions, links, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetAssignmentStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.GetPendingGrading(ctx, limit)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.GetRecentSubmissions(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardData{
		TotalStudents:          students,
		TotalAssignments:       assignments,
		TotalQuestions:         questions,
		TotalActiveLinks:       links,
		AssignmentStatusCounts: statusCounts,
		PendingGrading:         pending,
		RecentSubmissions:      recent,
	}, nil
}
