package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByAssignment returns an assignment's questions in display order.
func (r *QuestionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, question_type, question_text, question_data, "order", hint, audio_url, feedback_text
		 FROM questions
		 WHERE assignment_id = $1
		 ORDER BY "order" ASC`, assignmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.AssignmentID, &q.QuestionType, &q.QuestionText, &q.QuestionData,
			&q.Order, &q.Hint, &q.AudioURL, &q.FeedbackText); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceAll swaps the assignment's questions for qs in one transaction.
// Orders are taken from qs as given. Responses to removed questions cascade away.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, assignmentID uuid.UUID, qs []model.Question) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM assignments WHERE id = $1 FOR UPDATE`, assignmentID,
		).Scan(&locked); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE assignment_id = $1`, assignmentID); err != nil {
			return err
		}
		if err := insertQuestions(ctx, tx, assignmentID, qs); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE assignments SET updated_at = NOW() WHERE id = $1`, assignmentID)
		return err
	})
	return mapError(err)
}

// insertQuestions queues every insert in one batch and fills the generated ids.
func insertQuestions(ctx context.Context, tx pgx.Tx, assignmentID uuid.UUID, qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range qs {
		q := &qs[i]
		q.AssignmentID = assignmentID
		batch.Queue(
			`INSERT INTO questions (assignment_id, question_type, question_text, question_data, "order", hint, audio_url, feedback_text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			assignmentID, q.QuestionType, q.QuestionText, q.QuestionData, q.Order, q.Hint, q.AudioURL, q.FeedbackText,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&q.ID)
		})
	}
	return tx.SendBatch(ctx, batch).Close()
}
