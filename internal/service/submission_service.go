package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// SubmissionService handles student attempts and teacher grading.
type SubmissionService struct {
	submissions SubmissionStore
	assignments AssignmentStore
	questions   QuestionStore
	attachments AttachmentStore
	media       *MediaService
	events      EventPublisher
	log         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissions SubmissionStore,
	assignments AssignmentStore,
	questions QuestionStore,
	attachments AttachmentStore,
	media *MediaService,
	events EventPublisher,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		assignments: assignments,
		questions:   questions,
		attachments: attachments,
		media:       media,
		events:      events,
		log:         log.With().Str("component", "submission_service").Logger(),
	}
}

// Start records that a student opened a published assignment. Calling it
// again returns the existing submission whatever its status.
func (s *SubmissionService) Start(ctx context.Context, assignmentID, studentID uuid.UUID, classID *int) (*model.Submission, error) {
	if _, err := s.openAssignment(ctx, assignmentID, classID); err != nil {
		return nil, err
	}

	sub, err := s.submissions.Start(ctx, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("start submission: %w", err)
	}
	return sub, nil
}

// SubmitAssignment stores a full set of answers. The student's earlier
// responses are replaced and a graded submission goes back to SUBMITTED.
// Auto-checkable answers get IsCorrect set.
func (s *SubmissionService) SubmitAssignment(ctx context.Context, req *model.SubmitAssignmentRequest, uploads []storage.Upload, studentID uuid.UUID, classID *int) (*model.Submission, error) {
	if _, err := s.openAssignment(ctx, req.AssignmentID, classID); err != nil {
		return nil, err
	}

	qs, err := s.questions.ListByAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	responses, err := checkResponses(qs, req.Responses)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("submissions/%s/%s", req.AssignmentID, studentID)
	stored, err := s.media.StoreAttachments(ctx, model.OwnerSubmission, prefix, uploads, studentID)
	if err != nil {
		return nil, fmt.Errorf("store attachments: %w", err)
	}

	sub := &model.Submission{AssignmentID: req.AssignmentID, StudentID: studentID}
	if err := s.submissions.Submit(ctx, sub, responses, stored); err != nil {
		s.media.Discard(ctx, stored)
		return nil, fmt.Errorf("submit: %w", err)
	}

	s.log.Info().
		Str("assignment_id", req.AssignmentID.String()).
		Str("submission_id", sub.ID.String()).
		Int("responses", len(responses)).
		Msg("Assignment submitted")

	s.publish(ctx, model.SubmissionEventSubmitted, sub)
	return s.GetByID(ctx, sub.ID)
}

// GradeSubmission marks a submission GRADED with exactly the given score and
// feedback. A STARTED submission may be graded directly.
func (s *SubmissionService) GradeSubmission(ctx context.Context, submissionID uuid.UUID, req *model.GradeSubmissionRequest, graderID uuid.UUID) (*model.Submission, error) {
	current, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if current.Status == model.SubmissionStatusStarted {
		s.log.Warn().
			Str("submission_id", submissionID.String()).
			Msg("Grading a submission that was never turned in")
	}

	sub, err := s.submissions.Grade(ctx, submissionID, req.Score, req.Feedback, graderID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}

	s.log.Info().
		Str("submission_id", submissionID.String()).
		Float64("score", *req.Score).
		Msg("Submission graded")

	s.publish(ctx, model.SubmissionEventGraded, sub)
	return s.withDetails(ctx, sub)
}

// GetStudentSubmission returns the student's submission for an assignment with
// its responses. It returns nil and no error when the student has not started.
func (s *SubmissionService) GetStudentSubmission(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	sub, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s.withDetails(ctx, sub)
}

// GetByID returns one submission with its responses and attachments.
func (s *SubmissionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	return s.withDetails(ctx, sub)
}

// ListByAssignment returns a page of the assignment's submissions, optionally by status.
func (s *SubmissionService) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, status model.SubmissionStatus, page, perPage int) ([]model.Submission, *response.Pagination, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		return nil, nil, notFound(err, ErrAssignmentNotFound)
	}

	page, perPage = clampPage(page, perPage)
	subs, total, err := s.submissions.ListByAssignment(ctx, assignmentID, status, page, perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list submissions: %w", err)
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, response.NewPagination(page, perPage, total), nil
}

// openAssignment loads an assignment a student may work on.
func (s *SubmissionService) openAssignment(ctx context.Context, id uuid.UUID, classID *int) (*model.Assignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	if a.Status != model.AssignmentStatusPublished {
		return nil, ErrAssignmentNotPublished
	}
	if classID != nil && a.ClassID != *classID {
		return nil, ErrClassMismatch
	}
	return a, nil
}

func (s *SubmissionService) withDetails(ctx context.Context, sub *model.Submission) (*model.Submission, error) {
	responses, err := s.submissions.ListResponses(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	atts, err := s.attachments.ListByOwner(ctx, model.OwnerSubmission, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	s.media.Sign(atts)

	if responses == nil {
		responses = []model.QuestionResponse{}
	}
	if atts == nil {
		atts = []model.Attachment{}
	}
	sub.Responses = responses
	sub.Attachments = atts
	return sub, nil
}

func (s *SubmissionService) publish(ctx context.Context, typ model.SubmissionEventType, sub *model.Submission) {
	ev := model.SubmissionEvent{
		Type:         typ,
		AssignmentID: sub.AssignmentID,
		SubmissionID: sub.ID,
		StudentID:    sub.StudentID,
		Status:       sub.Status,
		Score:        sub.Score,
		At:           time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("Failed to publish submission event")
	}
}

// checkResponses validates each answer against its question and grades it.
func checkResponses(qs []model.Question, inputs []model.ResponseInput) ([]model.QuestionResponse, error) {
	byID := make(map[uuid.UUID]*model.Question, len(qs))
	for i := range qs {
		byID[qs[i].ID] = &qs[i]
	}

	seen := make(map[uuid.UUID]struct{}, len(inputs))
	responses := make([]model.QuestionResponse, 0, len(inputs))
	for _, in := range inputs {
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrQuestionNotInAssignment, in.QuestionID)
		}
		if _, dup := seen[in.QuestionID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateResponse, in.QuestionID)
		}
		seen[in.QuestionID] = struct{}{}

		kind, err := question.Lookup(q.QuestionType)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", q.Order, err)
		}
		correct, err := kind.Grade(q.QuestionData, in.ResponseData)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", q.Order, err)
		}

		responses = append(responses, model.QuestionResponse{
			QuestionID:   in.QuestionID,
			ResponseData: in.ResponseData,
			IsCorrect:    correct,
		})
	}
	return responses, nil
}
