package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentSelect = `
	SELECT a.id, a.title, a.description, a.type, a.class_id, a.subject_id, a.due_date, a.status,
	       a.difficulty, a.estimated_minutes, a.audio_feedback, a.celebration, a.parent_help_required,
	       a.created_by, a.created_at, a.updated_at,
	       c.name, c.section, s.name,
	       (SELECT COUNT(*) FROM questions q WHERE q.assignment_id = a.id)
	FROM assignments a
	JOIN classes c ON c.id = a.class_id
	JOIN subjects s ON s.id = a.subject_id`

func scanAssignment(row pgx.Row) (*model.Assignment, error) {
	a := &model.Assignment{Class: &model.ClassRef{}, Subject: &model.SubjectRef{}}
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Type, &a.ClassID, &a.SubjectID, &a.DueDate, &a.Status,
		&a.Difficulty, &a.EstimatedMinutes, &a.AudioFeedback, &a.Celebration, &a.ParentHelpRequired,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
		&a.Class.Name, &a.Class.Section, &a.Subject.Name,
		&a.QuestionCount)
	if err != nil {
		return nil, err
	}
	a.Class.ID = a.ClassID
	a.Subject.ID = a.SubjectID
	return a, nil
}

// CreateWithQuestions inserts the assignment, its questions and attachment rows
// in one transaction. Generated ids and timestamps are written back.
func (r *AssignmentRepository) CreateWithQuestions(ctx context.Context, a *model.Assignment, qs []model.Question, attachments []model.Attachment) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO assignments (title, description, type, class_id, subject_id, due_date, status, difficulty,
			                          estimated_minutes, audio_feedback, celebration, parent_help_required, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING id, created_at, updated_at`,
			a.Title, a.Description, a.Type, a.ClassID, a.SubjectID, a.DueDate, a.Status, a.Difficulty,
			a.EstimatedMinutes, a.AudioFeedback, a.Celebration, a.ParentHelpRequired, a.CreatedBy,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}

		if err := insertQuestions(ctx, tx, a.ID, qs); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		if err := insertAttachments(ctx, tx, a.ID, attachments); err != nil {
			return fmt.Errorf("insert attachments: %w", err)
		}
		return nil
	})
	return mapError(err)
}

// GetByID retrieves an assignment with its class and subject.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, assignmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// List returns a filtered page of assignments, newest first, and the total match count.
func (r *AssignmentRepository) List(ctx context.Context, f model.AssignmentFilter) ([]model.Assignment, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if f.ClassID != nil {
		args = append(args, *f.ClassID)
		where = append(where, fmt.Sprintf("a.class_id = $%d", len(args)))
	}
	if f.SubjectID != nil {
		args = append(args, *f.SubjectID)
		where = append(where, fmt.Sprintf("a.subject_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("a.title ILIKE $%d", len(args)))
	}
	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments a`+whereSQL, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PerPage, pageOffset(f.Page, f.PerPage))
	query := assignmentSelect + whereSQL +
		fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, total, rows.Err()
}

// Update applies the non-nil fields of req. dueDate is stored as given.
func (r *AssignmentRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAssignmentRequest) error {
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Type != nil {
		set("type", *req.Type)
	}
	if req.ClassID != nil {
		set("class_id", *req.ClassID)
	}
	if req.SubjectID != nil {
		set("subject_id", *req.SubjectID)
	}
	if req.DueDate != nil {
		set("due_date", req.DueDate.UTC())
	}
	if req.Difficulty != nil {
		set("difficulty", *req.Difficulty)
	}
	if req.EstimatedMinutes != nil {
		set("estimated_minutes", *req.EstimatedMinutes)
	}
	if req.AudioFeedback != nil {
		set("audio_feedback", *req.AudioFeedback)
	}
	if req.Celebration != nil {
		set("celebration", *req.Celebration)
	}
	if req.ParentHelpRequired != nil {
		set("parent_help_required", *req.ParentHelpRequired)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE assignments SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves the assignment to status only if it currently has one of from.
// It returns ErrNotFound when no row matched either condition.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []model.AssignmentStatus, to model.AssignmentStatus) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = ANY($3)`,
		to, id, allowed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the assignment and every attachment row owned by it or by
// its submissions. Questions, submissions, responses and share links go with
// the row through foreign-key cascades. It returns the orphaned object keys.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`DELETE FROM attachments
			 WHERE (owner_type = 'ASSIGNMENT' AND owner_id = $1)
			    OR (owner_type = 'SUBMISSION' AND owner_id IN (SELECT id FROM submissions WHERE assignment_id = $1))
			 RETURNING object_key`, id,
		)
		if err != nil {
			return err
		}
		keys, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return keys, nil
}

// ListPublishedIDs returns the ids of every published assignment.
func (r *AssignmentRepository) ListPublishedIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM assignments WHERE status = $1`, model.AssignmentStatusPublished)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}
