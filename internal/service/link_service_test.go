package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLink(t *testing.T, env *testEnv, contentID uuid.UUID, expiresAt *time.Time) *model.ShareableLink {
	t.Helper()
	l, err := env.links.CreateShareableLink(context.Background(), &model.CreateShareableLinkRequest{
		ContentType: model.LinkContentAssignment,
		ContentID:   contentID,
		ExpiresAt:   expiresAt,
	}, uuid.New())
	require.NoError(t, err)
	return l
}

func TestGenerateToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, TokenLength)
		assert.True(t, ValidToken(token))
		assert.False(t, strings.ContainsAny(token, "01OolI"), token)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestValidToken(t *testing.T) {
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken("short"))
	assert.False(t, ValidToken("ABCDEFGHJKLMNPQ0"))
	assert.True(t, ValidToken("ABCDEFGHJKLMNPQR"))
}

func TestCreateShareableLink(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)

	l := createLink(t, env, a.ID, nil)

	assert.True(t, l.IsActive)
	assert.Zero(t, l.ViewCount)
	assert.Len(t, l.Token, TokenLength)
	assert.Equal(t, "https://classwork.test/share/"+l.Token, l.URL)
}

func TestCreateShareableLinkUnknownContent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.links.CreateShareableLink(context.Background(), &model.CreateShareableLinkRequest{
		ContentType: model.LinkContentAssignment,
		ContentID:   uuid.New(),
	}, uuid.New())
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestCreateShareableLinkRetriesCollisions(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)

	env.db.tokenCollisions = tokenAttempts - 1
	createLink(t, env, a.ID, nil)

	env.db.tokenCollisions = tokenAttempts
	_, err := env.links.CreateShareableLink(context.Background(), &model.CreateShareableLinkRequest{
		ContentType: model.LinkContentAssignment,
		ContentID:   a.ID,
	}, uuid.New())
	require.ErrorIs(t, err, ErrTokenExhausted)
}

func TestGetByTokenTreatsExpiredAsMissing(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	expired := createLink(t, env, a.ID, &past)
	live := createLink(t, env, a.ID, &future)
	ctx := context.Background()

	got, err := env.links.GetByToken(ctx, expired.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, env.db.links[expired.ID].IsActive, "the row itself is untouched")

	got, err = env.links.GetByToken(ctx, live.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, live.ID, got.ID)

	got, err = env.links.GetByToken(ctx, "ABCDEFGHJKLMNPQR")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeactivateReactivateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)
	l := createLink(t, env, a.ID, nil)
	ctx := context.Background()

	off, err := env.links.DeactivateLink(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	got, err := env.links.GetByToken(ctx, l.Token)
	require.NoError(t, err)
	assert.Nil(t, got)

	on, err := env.links.ReactivateLink(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	got, err = env.links.GetByToken(ctx, l.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)

	require.NoError(t, env.links.DeleteLink(ctx, l.ID))
	_, err = env.links.GetByID(ctx, l.ID)
	require.ErrorIs(t, err, ErrLinkNotFound)
	require.ErrorIs(t, env.links.DeleteLink(ctx, l.ID), ErrLinkNotFound)
	_, err = env.links.DeactivateLink(ctx, l.ID)
	require.ErrorIs(t, err, ErrLinkNotFound)
}

func TestIncrementViewCount(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)
	l := createLink(t, env, a.ID, nil)
	ctx := context.Background()

	require.NoError(t, env.links.IncrementViewCount(ctx, l.Token))
	assert.Equal(t, []uuid.UUID{l.ID}, env.views.queued)
	assert.Zero(t, env.db.links[l.ID].ViewCount, "queued views are written by the worker")

	env.views.down = true
	require.NoError(t, env.links.IncrementViewCount(ctx, l.Token))
	assert.Equal(t, int64(1), env.db.links[l.ID].ViewCount)
	assert.NotNil(t, env.db.links[l.ID].LastViewedAt)

	require.ErrorIs(t, env.links.IncrementViewCount(ctx, "ABCDEFGHJKLMNPQR"), ErrLinkNotFound)
}

func TestPublicView(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)
	l := createLink(t, env, a.ID, nil)
	ctx := context.Background()

	view, err := env.links.PublicView(ctx, l.Token, true)
	require.NoError(t, err)
	assert.Equal(t, l.Token, view.Token)
	assert.Equal(t, "Animal Sounds", view.Assignment.Title)
	assert.Len(t, view.Assignment.Questions, 3)
	assert.Len(t, env.views.queued, 1)

	_, err = env.links.PublicView(ctx, l.Token, false)
	require.NoError(t, err)
	assert.Len(t, env.views.queued, 1, "throttled visits are served but not counted")

	_, err = env.assignments.Archive(ctx, a.ID)
	require.NoError(t, err)
	_, err = env.links.PublicView(ctx, l.Token, true)
	require.ErrorIs(t, err, ErrLinkContentGone)
	assert.Len(t, env.views.queued, 1)

	_, err = env.links.PublicView(ctx, "ABCDEFGHJKLMNPQR", true)
	require.ErrorIs(t, err, ErrLinkNotFound)
}

func TestListByContentAndQRCode(t *testing.T) {
	env := newTestEnv(t)
	a := publishedAnimalSounds(t, env)
	createLink(t, env, a.ID, nil)
	l := createLink(t, env, a.ID, nil)
	ctx := context.Background()

	links, err := env.links.ListByContent(ctx, model.LinkContentAssignment, a.ID)
	require.NoError(t, err)
	assert.Len(t, links, 2)
	for _, got := range links {
		assert.NotEmpty(t, got.URL)
	}

	png, err := env.links.QRCode(ctx, l.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))

	_, err = env.links.QRCode(ctx, uuid.New(), 0)
	require.ErrorIs(t, err, ErrLinkNotFound)
}
