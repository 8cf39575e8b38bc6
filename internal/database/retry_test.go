package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = errors.New("connection refused")

func TestPingWithRetry_EventuallyUp(t *testing.T) {
	calls := 0
	err := pingWithRetry(context.Background(), zerolog.Nop(), "redis", 4, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errRefused
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPingWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := pingWithRetry(context.Background(), zerolog.Nop(), "postgres", 3, time.Millisecond, func(context.Context) error {
		calls++
		return errRefused
	})
	require.ErrorIs(t, err, errRefused)
	assert.Equal(t, 3, calls)
}

func TestPingWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := pingWithRetry(ctx, zerolog.Nop(), "postgres", 5, time.Hour, func(context.Context) error {
		cancel()
		return errRefused
	})
	require.ErrorIs(t, err, context.Canceled)
}
