package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// Per-row member counts of classes.
const classCounts = `(SELECT COUNT(*) FROM users u WHERE u.class_id = classes.id AND u.role = 'STUDENT'),
	(SELECT COUNT(*) FROM assignments a WHERE a.class_id = classes.id)`

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, section, grade_level) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Section, c.GradeLevel,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// GetAll retrieves every class ordered by grade then name, with the number
// of students and assignments in each.
func (r *ClassRepository) GetAll(ctx context.Context) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, section, grade_level, `+classCounts+`, created_at, updated_at
		 FROM classes
		 ORDER BY grade_level ASC, name ASC, section ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Class, error) {
		var c model.Class
		err := row.Scan(&c.ID, &c.Name, &c.Section, &c.GradeLevel,
			&c.StudentCount, &c.AssignmentCount, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

// Update renames a class and reloads its member counts.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE classes SET name = $1, section = $2, grade_level = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING `+classCounts+`, created_at, updated_at`,
		c.Name, c.Section, c.GradeLevel, c.ID,
	).Scan(&c.StudentCount, &c.AssignmentCount, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Delete removes a class. Classes still used by assignments yield ErrForeignKey.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
