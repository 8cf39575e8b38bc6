package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/cache"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// AssignmentService handles assignment authoring, publishing and the cached student view.
type AssignmentService struct {
	assignments AssignmentStore
	questions   QuestionStore
	attachments AttachmentStore
	media       *MediaService
	cache       PayloadCache
	log         zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	assignments AssignmentStore,
	questions QuestionStore,
	attachments AttachmentStore,
	media *MediaService,
	payloadCache PayloadCache,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		questions:   questions,
		attachments: attachments,
		media:       media,
		cache:       payloadCache,
		log:         log.With().Str("component", "assignment_service").Logger(),
	}
}

// Create stores a DRAFT assignment with its questions and files.
// Files are uploaded first; if the database write fails they are removed again.
func (s *AssignmentService) Create(ctx context.Context, req *model.CreateAssignmentRequest, uploads []storage.Upload, userID uuid.UUID) (*model.Assignment, error) {
	qs, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	a := &model.Assignment{
		Title:              req.Title,
		Description:        req.Description,
		Type:               req.Type,
		ClassID:            req.ClassID,
		SubjectID:          req.SubjectID,
		DueDate:            utcTime(req.DueDate),
		Status:             model.AssignmentStatusDraft,
		Difficulty:         difficulty,
		EstimatedMinutes:   req.EstimatedMinutes,
		AudioFeedback:      req.AudioFeedback,
		Celebration:        req.Celebration,
		ParentHelpRequired: req.ParentHelpRequired,
		CreatedBy:          userID,
	}

	stored, err := s.media.StoreAttachments(ctx, model.OwnerAssignment, "assignments/"+userID.String(), uploads, userID)
	if err != nil {
		return nil, fmt.Errorf("store attachments: %w", err)
	}

	if err := s.assignments.CreateWithQuestions(ctx, a, qs, stored); err != nil {
		s.media.Discard(ctx, stored)
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, fmt.Errorf("%w: class or subject does not exist", err)
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.log.Info().
		Str("assignment_id", a.ID.String()).
		Int("questions", len(qs)).
		Int("attachments", len(stored)).
		Msg("Assignment created")

	return s.GetByID(ctx, a.ID)
}

// Update patches the supplied fields. Questions are left untouched.
func (s *AssignmentService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAssignmentRequest) (*model.Assignment, error) {
	if req.DueDate != nil {
		req.DueDate = utcTime(req.DueDate)
	}
	if !req.IsEmpty() {
		if err := s.assignments.Update(ctx, id, req); err != nil {
			return nil, notFound(err, ErrAssignmentNotFound)
		}
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshPayload(ctx, a)
	return a, nil
}

// UpdateQuestions replaces every question of an assignment in one transaction.
// Orders are reassigned 1..N from the list position. An empty list clears the
// assignment. Responses to removed questions go with them.
func (s *AssignmentService) UpdateQuestions(ctx context.Context, assignmentID uuid.UUID, inputs []model.QuestionInput) ([]model.Question, error) {
	qs, err := buildQuestions(inputs)
	if err != nil {
		return nil, err
	}

	if err := s.questions.ReplaceAll(ctx, assignmentID, qs); err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}

	s.log.Info().
		Str("assignment_id", assignmentID.String()).
		Int("questions", len(qs)).
		Msg("Assignment questions replaced")

	a, err := s.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	s.refreshPayload(ctx, a)
	return a.Questions, nil
}

// GetByID returns the assignment with class, subject, ordered questions and
// attachments with download URLs.
func (s *AssignmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}

	qs, err := s.questions.ListByAssignment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	atts, err := s.attachments.ListByOwner(ctx, model.OwnerAssignment, id)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	s.media.Sign(atts)

	if qs == nil {
		qs = []model.Question{}
	}
	if atts == nil {
		atts = []model.Attachment{}
	}
	a.Questions = qs
	a.Attachments = atts
	a.QuestionCount = len(qs)
	return a, nil
}

// List returns a page of assignments matching the filter.
func (s *AssignmentService) List(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, *response.Pagination, error) {
	f.Page, f.PerPage = clampPage(f.Page, f.PerPage)

	items, total, err := s.assignments.List(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("list assignments: %w", err)
	}
	if items == nil {
		items = []model.Assignment{}
	}
	return items, response.NewPagination(f.Page, f.PerPage, total), nil
}

// Delete removes an assignment. Questions, submissions, responses and share
// links go with it through foreign keys; attachment files are removed after
// the rows are gone.
func (s *AssignmentService) Delete(ctx context.Context, id uuid.UUID) error {
	keys, err := s.assignments.Delete(ctx, id)
	if err != nil {
		return notFound(err, ErrAssignmentNotFound)
	}

	s.media.DeleteObjects(ctx, keys)
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("assignment_id", id.String()).Msg("Failed to drop cached payload")
	}

	s.log.Info().Str("assignment_id", id.String()).Int("files", len(keys)).Msg("Assignment deleted")
	return nil
}

// Publish moves a DRAFT assignment with at least one question to PUBLISHED and
// warms the student payload cache.
func (s *AssignmentService) Publish(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssignmentStatusDraft {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, a.Status, model.AssignmentStatusPublished)
	}
	if len(a.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	// Redact first so a broken payload never gets published.
	payload, err := buildPayload(a)
	if err != nil {
		return nil, err
	}

	if err := s.setStatus(ctx, a, model.AssignmentStatusDraft, model.AssignmentStatusPublished); err != nil {
		return nil, err
	}

	if err := s.cache.SetPayload(ctx, payload); err != nil {
		s.log.Warn().Err(err).Str("assignment_id", id.String()).Msg("Failed to warm payload cache")
	}

	s.log.Info().Str("assignment_id", id.String()).Msg("Assignment published")
	return a, nil
}

// Archive moves a PUBLISHED assignment to ARCHIVED. Students can no longer open
// or submit it.
func (s *AssignmentService) Archive(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssignmentStatusPublished {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, a.Status, model.AssignmentStatusArchived)
	}

	if err := s.setStatus(ctx, a, model.AssignmentStatusPublished, model.AssignmentStatusArchived); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("assignment_id", id.String()).Msg("Failed to drop cached payload")
	}

	s.log.Info().Str("assignment_id", id.String()).Msg("Assignment archived")
	return a, nil
}

func (s *AssignmentService) setStatus(ctx context.Context, a *model.Assignment, from, to model.AssignmentStatus) error {
	err := s.assignments.UpdateStatus(ctx, a.ID, []model.AssignmentStatus{from}, to)
	if errors.Is(err, repository.ErrNotFound) {
		// Deleted or moved by someone else since it was read.
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, from, to)
	}
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	a.Status = to
	return nil
}

// GetStudentView returns a published assignment with answer keys removed.
// When classID is set the assignment must belong to that class.
//
// The payload is read from Redis; on a miss it is rebuilt from PostgreSQL and
// written back. Attachments are listed on every call so their signed URLs stay fresh.
func (s *AssignmentService) GetStudentView(ctx context.Context, id uuid.UUID, classID *int) (*model.AssignmentPayload, error) {
	payload, err := s.cache.GetPayload(ctx, id)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Str("assignment_id", id.String()).Msg("Payload cache read failed, using database")
		}
		payload, err = s.loadPayload(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if classID != nil && (payload.Class == nil || payload.Class.ID != *classID) {
		return nil, ErrClassMismatch
	}

	atts, err := s.attachments.ListByOwner(ctx, model.OwnerAssignment, id)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	s.media.Sign(atts)
	if atts == nil {
		atts = []model.Attachment{}
	}
	payload.Attachments = atts
	return payload, nil
}

func (s *AssignmentService) loadPayload(ctx context.Context, id uuid.UUID) (*model.AssignmentPayload, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssignmentStatusPublished {
		return nil, ErrAssignmentNotPublished
	}

	payload, err := buildPayload(a)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPayload(ctx, payload); err != nil {
		s.log.Warn().Err(err).Str("assignment_id", id.String()).Msg("Failed to cache payload")
	} else {
		s.log.Debug().Str("assignment_id", id.String()).Msg("Self-healed payload cache")
	}
	return payload, nil
}

// refreshPayload keeps the cached student view in step after an edit.
func (s *AssignmentService) refreshPayload(ctx context.Context, a *model.Assignment) {
	if a.Status != model.AssignmentStatusPublished {
		if err := s.cache.Invalidate(ctx, a.ID); err != nil {
			s.log.Warn().Err(err).Str("assignment_id", a.ID.String()).Msg("Failed to drop cached payload")
		}
		return
	}

	payload, err := buildPayload(a)
	if err == nil {
		err = s.cache.SetPayload(ctx, payload)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("assignment_id", a.ID.String()).Msg("Failed to refresh cached payload")
		_ = s.cache.Invalidate(ctx, a.ID)
	}
}

// Prewarm caches the student payload of every published assignment.
// Individual failures are logged and skipped.
func (s *AssignmentService) Prewarm(ctx context.Context) error {
	ids, err := s.assignments.ListPublishedIDs(ctx)
	if err != nil {
		return fmt.Errorf("list published assignments: %w", err)
	}

	warmed := 0
	for _, id := range ids {
		if _, err := s.loadPayload(ctx, id); err != nil {
			s.log.Error().Err(err).Str("assignment_id", id.String()).Msg("Failed to prewarm assignment")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("published", len(ids)).Msg("Payload cache prewarmed")
	return nil
}

// ─── Attachments ────────────────────────────────────────────────────

// AddAttachments stores more files on an existing assignment.
func (s *AssignmentService) AddAttachments(ctx context.Context, id uuid.UUID, uploads []storage.Upload, userID uuid.UUID) ([]model.Attachment, error) {
	if _, err := s.assignments.GetByID(ctx, id); err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}

	stored, err := s.media.StoreAttachments(ctx, model.OwnerAssignment, "assignments/"+userID.String(), uploads, userID)
	if err != nil {
		return nil, fmt.Errorf("store attachments: %w", err)
	}

	for i := range stored {
		stored[i].OwnerID = id
		if err := s.attachments.Create(ctx, &stored[i]); err != nil {
			s.media.Discard(ctx, stored[i:])
			return nil, fmt.Errorf("save attachment: %w", err)
		}
	}
	s.media.Sign(stored)
	return stored, nil
}

// DeleteAttachment removes one file from an assignment.
func (s *AssignmentService) DeleteAttachment(ctx context.Context, assignmentID, attachmentID uuid.UUID) error {
	atts, err := s.attachments.ListByOwner(ctx, model.OwnerAssignment, assignmentID)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}
	owned := false
	for _, a := range atts {
		if a.ID == attachmentID {
			owned = true
			break
		}
	}
	if !owned {
		return ErrAttachmentNotFound
	}

	deleted, err := s.attachments.Delete(ctx, attachmentID)
	if err != nil {
		return notFound(err, ErrAttachmentNotFound)
	}
	s.media.DeleteObjects(ctx, []string{deleted.ObjectKey})
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────

// buildQuestions validates authored questions, fills server-assigned
// payload fields and numbers them 1..N.
func buildQuestions(inputs []model.QuestionInput) ([]model.Question, error) {
	qs := make([]model.Question, len(inputs))
	for i, in := range inputs {
		kind, err := question.Lookup(in.QuestionType)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		data, err := kind.Prepare(in.QuestionData)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		qs[i] = model.Question{
			QuestionType: in.QuestionType,
			QuestionText: in.QuestionText,
			QuestionData: data,
			Order:        i + 1,
			Hint:         in.Hint,
			AudioURL:     in.AudioURL,
			FeedbackText: in.FeedbackText,
		}
	}
	return qs, nil
}

// buildPayload turns a loaded assignment into its redacted student view.
func buildPayload(a *model.Assignment) (*model.AssignmentPayload, error) {
	qs := make([]model.QuestionForStudent, len(a.Questions))
	for i, q := range a.Questions {
		kind, err := question.Lookup(q.QuestionType)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		data, err := kind.Redact(q.QuestionData)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		qs[i] = model.QuestionForStudent{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			QuestionText: q.QuestionText,
			QuestionData: data,
			Order:        q.Order,
			Hint:         q.Hint,
			AudioURL:     q.AudioURL,
		}
	}

	return &model.AssignmentPayload{
		AssignmentID:       a.ID,
		Title:              a.Title,
		Description:        a.Description,
		Type:               a.Type,
		DueDate:            a.DueDate,
		Difficulty:         a.Difficulty,
		EstimatedMinutes:   a.EstimatedMinutes,
		AudioFeedback:      a.AudioFeedback,
		Celebration:        a.Celebration,
		ParentHelpRequired: a.ParentHelpRequired,
		Class:              a.Class,
		Subject:            a.Subject,
		Questions:          qs,
		Attachments:        []model.Attachment{},
	}, nil
}
