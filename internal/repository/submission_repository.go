package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// SubmissionRepository handles submission and response data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionSelect = `
	SELECT s.id, s.assignment_id, s.student_id, u.name, s.status, s.started_at, s.submitted_at,
	       s.score, s.feedback, s.graded_by, s.graded_at
	FROM submissions s
	JOIN users u ON u.id = s.student_id`

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.StudentName, &s.Status, &s.StartedAt, &s.SubmittedAt,
		&s.Score, &s.Feedback, &s.GradedBy, &s.GradedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start creates a STARTED submission. A second call returns the existing row untouched.
func (r *SubmissionRepository) Start(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submissions (assignment_id, student_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (assignment_id, student_id) DO NOTHING
		 RETURNING id`,
		assignmentID, studentID, model.SubmissionStatusStarted,
	).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err)
	}
	return r.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
}

// Submit upserts the student's submission and replaces its responses and
// adds attachments, all in one transaction. On return sub carries the stored
// id, status and timestamps.
//
// A new row starts and submits at the same instant; an existing row keeps
// started_at. A graded row is reopened: score, feedback and grader are cleared.
func (r *SubmissionRepository) Submit(ctx context.Context, sub *model.Submission, responses []model.QuestionResponse, attachments []model.Attachment) error {
	now := time.Now().UTC()

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO submissions (assignment_id, student_id, status, started_at, submitted_at)
			 VALUES ($1, $2, $3, $4, $4)
			 ON CONFLICT (assignment_id, student_id) DO UPDATE
			 SET status = EXCLUDED.status,
			     submitted_at = EXCLUDED.submitted_at,
			     score = NULL,
			     feedback = NULL,
			     graded_by = NULL,
			     graded_at = NULL
			 RETURNING id, status, started_at, submitted_at`,
			sub.AssignmentID, sub.StudentID, model.SubmissionStatusSubmitted, now,
		).Scan(&sub.ID, &sub.Status, &sub.StartedAt, &sub.SubmittedAt)
		if err != nil {
			return err
		}
		sub.Score, sub.Feedback, sub.GradedBy, sub.GradedAt = nil, nil, nil, nil

		if _, err := tx.Exec(ctx, `DELETE FROM responses WHERE submission_id = $1`, sub.ID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i := range responses {
			resp := &responses[i]
			resp.SubmissionID = sub.ID
			batch.Queue(
				`INSERT INTO responses (submission_id, question_id, response_data, is_correct)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				sub.ID, resp.QuestionID, resp.ResponseData, resp.IsCorrect,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&resp.ID)
			})
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert responses: %w", err)
		}

		if err := insertAttachments(ctx, tx, sub.ID, attachments); err != nil {
			return fmt.Errorf("insert attachments: %w", err)
		}
		return nil
	})
	return mapError(err)
}

// Grade sets the score and feedback exactly as given and marks the row GRADED.
func (r *SubmissionRepository) Grade(ctx context.Context, id uuid.UUID, score *float64, feedback *string, graderID uuid.UUID) (*model.Submission, error) {
	var updated uuid.UUID
	err := r.pool.QueryRow(ctx,
		`UPDATE submissions
		 SET status = $1, score = $2, feedback = $3, graded_by = $4, graded_at = NOW()
		 WHERE id = $5
		 RETURNING id`,
		model.SubmissionStatusGraded, score, feedback, graderID, id,
	).Scan(&updated)
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetByID(ctx, updated)
}

// GetByID retrieves a submission without its responses.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx, submissionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// GetByAssignmentAndStudent retrieves one student's submission for an assignment.
func (r *SubmissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx,
		submissionSelect+` WHERE s.assignment_id = $1 AND s.student_id = $2`, assignmentID, studentID))
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// ListResponses returns a submission's responses in question order.
func (r *SubmissionRepository) ListResponses(ctx context.Context, submissionID uuid.UUID) ([]model.QuestionResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.submission_id, r.question_id, r.response_data, r.is_correct
		 FROM responses r
		 JOIN questions q ON q.id = r.question_id
		 WHERE r.submission_id = $1
		 ORDER BY q."order" ASC`, submissionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.QuestionResponse{}
	for rows.Next() {
		var resp model.QuestionResponse
		if err := rows.Scan(&resp.ID, &resp.SubmissionID, &resp.QuestionID, &resp.ResponseData, &resp.IsCorrect); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// ListByAssignment returns a page of an assignment's submissions. Turned-in
// work comes first, oldest submission first, so the grading queue reads top-down.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, status model.SubmissionStatus, page, perPage int) ([]model.Submission, int, error) {
	args := []any{assignmentID}
	where := ` WHERE s.assignment_id = $1`
	if status != "" {
		args = append(args, status)
		where += ` AND s.status = $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, pageOffset(page, perPage))
	query := submissionSelect + where + fmt.Sprintf(
		` ORDER BY (s.status = 'STARTED') ASC, s.submitted_at ASC NULLS LAST, u.name ASC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, total, rows.Err()
}
