package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// subjectAssignmentCount is evaluated per row of subjects.
const subjectAssignmentCount = `(SELECT COUNT(*) FROM assignments a WHERE a.subject_id = subjects.id)`

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// Create inserts a subject. A duplicate name yields ErrConflict.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		s.Name,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

// GetAll lists subjects by name with the number of assignments in each.
func (r *SubjectRepository) GetAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, `+subjectAssignmentCount+`, created_at, updated_at
		 FROM subjects
		 ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Subject, error) {
		var s model.Subject
		err := row.Scan(&s.ID, &s.Name, &s.AssignmentCount, &s.CreatedAt, &s.UpdatedAt)
		return s, err
	})
}

// Update renames a subject and reloads its assignment count.
func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE subjects SET name = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+subjectAssignmentCount+`, created_at, updated_at`,
		s.Name, s.ID,
	).Scan(&s.AssignmentCount, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

// Delete removes a subject. Subjects still used by assignments yield ErrForeignKey.
func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
