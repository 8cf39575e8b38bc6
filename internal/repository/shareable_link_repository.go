package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/classwork-backend/internal/model"
)

// ShareableLinkRepository handles share link data access.
type ShareableLinkRepository struct {
	pool *pgxpool.Pool
}

// NewShareableLinkRepository creates a new ShareableLinkRepository.
func NewShareableLinkRepository(pool *pgxpool.Pool) *ShareableLinkRepository {
	return &ShareableLinkRepository{pool: pool}
}

const linkColumns = `id, token, content_type, content_id, created_by, created_at, expires_at, is_active, view_count, last_viewed_at`

func scanLink(row pgx.Row) (*model.ShareableLink, error) {
	l := &model.ShareableLink{}
	err := row.Scan(&l.ID, &l.Token, &l.ContentType, &l.ContentID, &l.CreatedBy, &l.CreatedAt,
		&l.ExpiresAt, &l.IsActive, &l.ViewCount, &l.LastViewedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts an active link with zero views. A taken token yields ErrConflict.
func (r *ShareableLinkRepository) Create(ctx context.Context, l *model.ShareableLink) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO shareable_links (token, content_type, content_id, created_by, expires_at, is_active, view_count)
		 VALUES ($1, $2, $3, $4, $5, TRUE, 0)
		 RETURNING id, created_at, is_active, view_count`,
		l.Token, l.ContentType, l.ContentID, l.CreatedBy, l.ExpiresAt,
	).Scan(&l.ID, &l.CreatedAt, &l.IsActive, &l.ViewCount)
	return mapError(err)
}

// GetActiveByToken finds an active link by token. Expiry is left to the caller.
func (r *ShareableLinkRepository) GetActiveByToken(ctx context.Context, token string) (*model.ShareableLink, error) {
	l, err := scanLink(r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM shareable_links WHERE token = $1 AND is_active`, token))
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// GetByID retrieves a link regardless of state.
func (r *ShareableLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShareableLink, error) {
	l, err := scanLink(r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM shareable_links WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// SetActive flips a link on or off and returns the updated row.
func (r *ShareableLinkRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.ShareableLink, error) {
	l, err := scanLink(r.pool.QueryRow(ctx,
		`UPDATE shareable_links SET is_active = $1 WHERE id = $2 RETURNING `+linkColumns, active, id))
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// Delete removes a link permanently.
func (r *ShareableLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shareable_links WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByContent returns every link pointing at one piece of content, newest first.
func (r *ShareableLinkRepository) ListByContent(ctx context.Context, contentType model.LinkContentType, contentID uuid.UUID) ([]model.ShareableLink, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+linkColumns+`
		 FROM shareable_links
		 WHERE content_type = $1 AND content_id = $2
		 ORDER BY created_at DESC`, contentType, contentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []model.ShareableLink{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// IncrementViews adds n views in a single statement so concurrent callers never lose counts.
func (r *ShareableLinkRepository) IncrementViews(ctx context.Context, id uuid.UUID, n int, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE shareable_links
		 SET view_count = view_count + $1,
		     last_viewed_at = GREATEST(COALESCE(last_viewed_at, $2), $2)
		 WHERE id = $3`,
		n, at, id,
	)
	return err
}

// IncrementViewsBatch applies many per-link view counts in one UPDATE using UNNEST.
// ids, counts and lastViewed are parallel slices.
func (r *ShareableLinkRepository) IncrementViewsBatch(ctx context.Context, ids []uuid.UUID, counts []int64, lastViewed []time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE shareable_links AS l
		 SET view_count = l.view_count + t.n,
		     last_viewed_at = GREATEST(COALESCE(l.last_viewed_at, t.viewed_at), t.viewed_at)
		 FROM (
			SELECT u.id, u.n, u.viewed_at
			FROM UNNEST($1::uuid[], $2::bigint[], $3::timestamptz[]) AS u (id, n, viewed_at)
		 ) AS t
		 WHERE l.id = t.id`,
		ids, counts, lastViewed,
	)
	return err
}
