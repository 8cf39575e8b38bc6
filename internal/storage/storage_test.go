package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), "http://files.test/", "secret", time.Minute, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestPutOpenDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Put(ctx, BucketAttachments, "assignments/a1/notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	f, err := s.Open(BucketAttachments, "assignments/a1/notes.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(data))

	objects, err := s.List(ctx, BucketAttachments, "assignments/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "assignments/a1/notes.txt", objects[0].Key)

	require.NoError(t, s.Delete(ctx, BucketAttachments, "assignments/a1/notes.txt"))
	require.NoError(t, s.Delete(ctx, BucketAttachments, "assignments/a1/notes.txt"))

	_, err = s.Open(BucketAttachments, "assignments/a1/notes.txt")
	assert.ErrorIs(t, err, ErrObjectMissing)
}

func TestPathRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []string{"", "/etc/passwd", "../x", "a/../../x", "a//b", "."} {
		_, err := s.Path(BucketMedia, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestURLs(t *testing.T) {
	s := newTestStore(t)

	u, err := s.URL(BucketMedia, "img/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/files/media/img/cat.png", u)

	u, err = s.URL(BucketAttachments, "a/b.pdf")
	require.NoError(t, err)
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "/files/signed", parsed.Path)

	bucket, key, err := s.VerifySignedToken(parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, BucketAttachments, bucket)
	assert.Equal(t, "a/b.pdf", key)
}

func TestSignedURLExpires(t *testing.T) {
	s := newTestStore(t)
	u, err := s.SignedURL(BucketAttachments, "a/b.pdf", -time.Minute)
	require.NoError(t, err)
	parsed, err := url.Parse(u)
	require.NoError(t, err)

	_, _, err = s.VerifySignedToken(parsed.Query().Get("token"))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	k := ObjectKey("assignments/x", "Worksheet.PDF")
	assert.True(t, strings.HasPrefix(k, "assignments/x/"))
	assert.True(t, strings.HasSuffix(k, ".pdf"))
}
