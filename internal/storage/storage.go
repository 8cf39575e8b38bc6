// Package storage keeps uploaded files in named buckets on local disk.
//
// The "media" bucket is public and served as static files. Every other
// bucket is private and only reachable through signed, expiring URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bucket names a top-level storage area.
type Bucket string

const (
	BucketMedia       Bucket = "media"
	BucketAttachments Bucket = "attachments"
)

// Public reports whether objects in b are served without a signature.
func (b Bucket) Public() bool { return b == BucketMedia }

var (
	ErrInvalidKey    = errors.New("invalid object key")
	ErrObjectMissing = errors.New("object not found")
	ErrBadSignature  = errors.New("invalid or expired file signature")
)

// signedAudience separates file tokens from access tokens signed with the same secret.
const signedAudience = "classwork-files"

// Object describes a stored file.
type Object struct {
	Bucket  Bucket    `json:"bucket"`
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	URL     string    `json:"url,omitempty"`
}

// Upload is a file waiting to be stored. Open is called once.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromFileHeader wraps a multipart part as an Upload.
func FromFileHeader(h *multipart.FileHeader) Upload {
	return Upload{
		FileName:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// ObjectKey builds a collision-free key under prefix keeping the file extension.
func ObjectKey(prefix, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(prefix, uuid.New().String()+ext)
}

// LocalStore implements bucket storage on the local filesystem.
type LocalStore struct {
	root       string
	publicBase string
	secret     []byte
	signedTTL  time.Duration
	log        zerolog.Logger
}

// NewLocalStore creates the bucket directories under root.
func NewLocalStore(root, publicBase, secret string, signedTTL time.Duration, log zerolog.Logger) (*LocalStore, error) {
	for _, b := range []Bucket{BucketMedia, BucketAttachments} {
		if err := os.MkdirAll(filepath.Join(root, string(b)), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return &LocalStore{
		root:       root,
		publicBase: strings.TrimRight(publicBase, "/"),
		secret:     []byte(secret),
		signedTTL:  signedTTL,
		log:        log.With().Str("component", "storage").Logger(),
	}, nil
}

// BucketDir returns the directory backing bucket b.
func (s *LocalStore) BucketDir(b Bucket) string {
	return filepath.Join(s.root, string(b))
}

// Path resolves an object key to a file path inside its bucket.
func (s *LocalStore) Path(b Bucket, key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.BucketDir(b), filepath.FromSlash(clean)), nil
}

// Put writes body to bucket/key and returns the number of bytes written.
func (s *LocalStore) Put(ctx context.Context, b Bucket, key string, body io.Reader) (int64, error) {
	p, err := s.Path(b, key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("commit object: %w", err)
	}
	return n, nil
}

// Open opens an object for reading.
func (s *LocalStore) Open(b Bucket, key string) (*os.File, error) {
	p, err := s.Path(b, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectMissing
	}
	return f, err
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, b Bucket, key string) error {
	p, err := s.Path(b, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// List returns the objects under prefix, sorted by key.
func (s *LocalStore) List(ctx context.Context, b Bucket, prefix string) ([]Object, error) {
	dir := s.BucketDir(b)
	var objects []Object
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{Bucket: b, Key: key, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", b, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// URL returns a public URL for public buckets and a signed one otherwise.
func (s *LocalStore) URL(b Bucket, key string) (string, error) {
	if b.Public() {
		return s.PublicURL(b, key), nil
	}
	return s.SignedURL(b, key, s.signedTTL)
}

// PublicURL returns the static address of an object in a public bucket.
func (s *LocalStore) PublicURL(b Bucket, key string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.publicBase, b, key)
}

type signedClaims struct {
	Bucket Bucket `json:"bkt"`
	Key    string `json:"key"`
	jwt.RegisteredClaims
}

// SignedURL returns a download address that stops working after ttl.
func (s *LocalStore) SignedURL(b Bucket, key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := signedClaims{
		Bucket: b,
		Key:    key,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{signedAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign file url: %w", err)
	}
	return fmt.Sprintf("%s/files/signed?token=%s", s.publicBase, url.QueryEscape(token)), nil
}

// VerifySignedToken returns the object a signed URL token points at.
func (s *LocalStore) VerifySignedToken(token string) (Bucket, string, error) {
	claims := &signedClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(signedAudience), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if _, err := s.Path(claims.Bucket, claims.Key); err != nil {
		return "", "", ErrBadSignature
	}
	return claims.Bucket, claims.Key, nil
}
