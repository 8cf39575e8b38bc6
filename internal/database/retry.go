package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// clientName identifies this service in pg_stat_activity and CLIENT LIST.
const clientName = "classwork-backend"

// Connect attempts used at start-up, when Postgres or Redis containers may
// still be booting alongside the API.
const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// pingWithRetry calls ping until it succeeds, attempts run out or ctx ends.
// The wait doubles after every failure.
func pingWithRetry(ctx context.Context, log zerolog.Logger, target string, attempts int, backoff time.Duration, ping func(context.Context) error) error {
	var err error
	wait := backoff
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		log.Warn().Err(err).
			Str("target", target).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Connection not ready, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w (last error: %v)", target, ctx.Err(), err)
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", target, attempts, err)
}
