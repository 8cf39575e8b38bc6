package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/cache"
)

const (
	ViewBatchSize    = 100
	ViewBatchTimeout = 2 * time.Second
	ViewPollTimeout  = 1 * time.Second
)

// ViewSource is the queue of share-link views waiting to be counted.
type ViewSource interface {
	PopView(ctx context.Context, timeout time.Duration) (*cache.ViewEvent, error)
	EnqueueView(ctx context.Context, linkID uuid.UUID, at time.Time) error
}

// ViewCounter writes view counts to PostgreSQL.
type ViewCounter interface {
	IncrementViewsBatch(ctx context.Context, ids []uuid.UUID, counts []int64, lastViewed []time.Time) error
	IncrementViews(ctx context.Context, id uuid.UUID, n int, at time.Time) error
}

// ViewCountWorker drains the view queue and adds the views to each link in batches.
type ViewCountWorker struct {
	source  ViewSource
	counter ViewCounter
	log     zerolog.Logger
}

func NewViewCountWorker(source ViewSource, counter ViewCounter, log zerolog.Logger) *ViewCountWorker {
	return &ViewCountWorker{
		source:  source,
		counter: counter,
		log:     log.With().Str("component", "view_count_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it holds.
func (w *ViewCountWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ViewCountWorker started")

	batch := make([]cache.ViewEvent, 0, ViewBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ViewBatchSize || time.Since(lastFlush) >= ViewBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			ev, err := w.source.PopView(ctx, ViewPollTimeout)
			switch {
			case err == nil:
				batch = append(batch, *ev)
			case errors.Is(err, cache.ErrMiss):
			case errors.Is(err, cache.ErrMalformed):
				w.log.Error().Err(err).Msg("Invalid JSON payload")
			case ctx.Err() == nil:
				w.log.Error().Err(err).Msg("BLPop error")
				sleep(ctx, ViewPollTimeout)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ----------------------------------------------------------------
// Batch update wrapper
// ----------------------------------------------------------------

type linkViews struct {
	id         uuid.UUID
	count      int64
	lastViewed time.Time
}

// aggregate folds a batch into one entry per link, keeping first-seen order.
func aggregate(batch []cache.ViewEvent) []linkViews {
	index := make(map[uuid.UUID]int, len(batch))
	out := make([]linkViews, 0, len(batch))
	for _, ev := range batch {
		i, ok := index[ev.LinkID]
		if !ok {
			index[ev.LinkID] = len(out)
			out = append(out, linkViews{id: ev.LinkID, count: 1, lastViewed: ev.ViewedAt})
			continue
		}
		out[i].count++
		if ev.ViewedAt.After(out[i].lastViewed) {
			out[i].lastViewed = ev.ViewedAt
		}
	}
	return out
}

func (w *ViewCountWorker) flushSafe(ctx context.Context, batch []cache.ViewEvent) {
	if len(batch) == 0 {
		return
	}

	links := aggregate(batch)
	if err := w.bulkIncrement(ctx, links); err != nil {
		w.log.Warn().Err(err).Msg("bulk view update failed, using fallback")

		for _, l := range links {
			if err := w.counter.IncrementViews(ctx, l.id, int(l.count), l.lastViewed); err != nil {
				w.log.Error().Err(err).Str("link_id", l.id.String()).Msg("single view update failed, requeueing")
				w.requeue(ctx, batch, l.id)
			}
		}
		return
	}

	w.log.Debug().Int("views", len(batch)).Int("links", len(links)).Msg("View counts flushed")
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST
// ----------------------------------------------------------------

func (w *ViewCountWorker) bulkIncrement(ctx context.Context, links []linkViews) error {
	ids := make([]uuid.UUID, len(links))
	counts := make([]int64, len(links))
	lastViewed := make([]time.Time, len(links))
	for i, l := range links {
		ids[i] = l.id
		counts[i] = l.count
		lastViewed[i] = l.lastViewed
	}
	return w.counter.IncrementViewsBatch(ctx, ids, counts, lastViewed)
}

// requeue puts the views of one link back on the queue for the next batch.
func (w *ViewCountWorker) requeue(ctx context.Context, batch []cache.ViewEvent, id uuid.UUID) {
	for _, ev := range batch {
		if ev.LinkID != id {
			continue
		}
		if err := w.source.EnqueueView(ctx, ev.LinkID, ev.ViewedAt); err != nil {
			w.log.Error().Err(err).Str("link_id", id.String()).Msg("Requeue failed, views lost")
			return
		}
	}
}
