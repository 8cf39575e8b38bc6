package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// AttachmentRepository handles attachment rows. Rows are created together with
// their owner inside the owner's transaction or added one by one later.
type AttachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository creates a new AttachmentRepository.
func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

const attachmentColumns = `id, owner_type, owner_id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at`

func scanAttachment(row pgx.Row, a *model.Attachment) error {
	return row.Scan(&a.ID, &a.OwnerType, &a.OwnerID, &a.FileName, &a.ObjectKey, &a.ContentType, &a.SizeBytes, &a.UploadedBy, &a.CreatedAt)
}

// Create inserts a single attachment.
func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	return mapError(insertAttachment(ctx, r.pool, a))
}

// ListByOwner returns an owner's attachments, oldest first.
func (r *AttachmentRepository) ListByOwner(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]model.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attachmentColumns+`
		 FROM attachments
		 WHERE owner_type = $1 AND owner_id = $2
		 ORDER BY created_at ASC`, ownerType, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []model.Attachment{}
	for rows.Next() {
		var a model.Attachment
		if err := scanAttachment(rows, &a); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// Delete removes one attachment and returns the deleted row.
func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	a := &model.Attachment{}
	err := scanAttachment(r.pool.QueryRow(ctx,
		`DELETE FROM attachments WHERE id = $1 RETURNING `+attachmentColumns, id), a)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertAttachment(ctx context.Context, q querier, a *model.Attachment) error {
	return q.QueryRow(ctx,
		`INSERT INTO attachments (owner_type, owner_id, file_name, object_key, content_type, size_bytes, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		a.OwnerType, a.OwnerID, a.FileName, a.ObjectKey, a.ContentType, a.SizeBytes, a.UploadedBy,
	).Scan(&a.ID, &a.CreatedAt)
}

func insertAttachments(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, attachments []model.Attachment) error {
	for i := range attachments {
		attachments[i].OwnerID = ownerID
		if err := insertAttachment(ctx, tx, &attachments[i]); err != nil {
			return err
		}
	}
	return nil
}
