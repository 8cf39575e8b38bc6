package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// maxImageEdge bounds the longer side of stored JPEG and PNG images.
const maxImageEdge = 1600

// sniffLen is how much of a file is read to detect its type.
const sniffLen = 3072

// MIME types accepted in the public media bucket (question images and audio).
var mediaTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp",
	"audio/mpeg", "audio/wav", "audio/ogg", "audio/mp4",
}

// MIME types accepted as assignment or submission attachments.
var attachmentTypes = append([]string{
	"application/pdf",
	"text/plain",
	"video/mp4",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}, mediaTypes...)

// MediaService validates uploads and keeps them in bucket storage.
type MediaService struct {
	store    ObjectStore
	maxBytes int64
	log      zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(store ObjectStore, maxBytes int64, log zerolog.Logger) *MediaService {
	return &MediaService{
		store:    store,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "media_service").Logger(),
	}
}

// SaveMedia stores an image or audio clip in the public bucket and returns its URL.
// Large JPEG and PNG images are scaled down first.
func (s *MediaService) SaveMedia(ctx context.Context, up storage.Upload) (*storage.Object, error) {
	if err := s.checkSize(up.Size); err != nil {
		return nil, err
	}

	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	mt, body, err := sniff(rc, mediaTypes)
	if err != nil {
		return nil, err
	}

	if mt.Is("image/jpeg") || mt.Is("image/png") {
		body, err = s.downscale(body, mt)
		if err != nil {
			return nil, err
		}
	}

	key := storage.ObjectKey(path.Join("uploads", strings.SplitN(mt.String(), "/", 2)[0]), "f"+mt.Extension())
	n, err := s.put(ctx, storage.BucketMedia, key, body)
	if err != nil {
		return nil, err
	}

	url, err := s.store.URL(storage.BucketMedia, key)
	if err != nil {
		return nil, err
	}
	return &storage.Object{Bucket: storage.BucketMedia, Key: key, Size: n, URL: url}, nil
}

// ListMedia lists the public bucket under prefix with URLs filled in.
func (s *MediaService) ListMedia(ctx context.Context, prefix string) ([]storage.Object, error) {
	objects, err := s.store.List(ctx, storage.BucketMedia, prefix)
	if err != nil {
		return nil, err
	}
	for i := range objects {
		objects[i].URL, _ = s.store.URL(objects[i].Bucket, objects[i].Key)
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	return objects, nil
}

// StoreAttachments uploads files into the private bucket under prefix and
// returns unsaved attachment rows for them. When any file fails, the files
// already stored are removed again.
func (s *MediaService) StoreAttachments(ctx context.Context, ownerType model.OwnerType, prefix string, uploads []storage.Upload, uploadedBy uuid.UUID) ([]model.Attachment, error) {
	attachments := make([]model.Attachment, 0, len(uploads))
	for _, up := range uploads {
		a, err := s.storeAttachment(ctx, ownerType, prefix, up, uploadedBy)
		if err != nil {
			s.Discard(ctx, attachments)
			return nil, fmt.Errorf("%s: %w", up.FileName, err)
		}
		attachments = append(attachments, *a)
	}
	return attachments, nil
}

func (s *MediaService) storeAttachment(ctx context.Context, ownerType model.OwnerType, prefix string, up storage.Upload, uploadedBy uuid.UUID) (*model.Attachment, error) {
	if err := s.checkSize(up.Size); err != nil {
		return nil, err
	}

	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	mt, body, err := sniff(rc, attachmentTypes)
	if err != nil {
		return nil, err
	}

	name := up.FileName
	if name == "" {
		name = "file" + mt.Extension()
	}
	key := storage.ObjectKey(prefix, name)
	n, err := s.put(ctx, storage.BucketAttachments, key, body)
	if err != nil {
		return nil, err
	}

	return &model.Attachment{
		OwnerType:   ownerType,
		FileName:    path.Base(name),
		ObjectKey:   key,
		ContentType: strings.SplitN(mt.String(), ";", 2)[0],
		SizeBytes:   n,
		UploadedBy:  uploadedBy,
	}, nil
}

// Discard removes the stored objects of attachments. Failures are logged only.
func (s *MediaService) Discard(ctx context.Context, attachments []model.Attachment) {
	keys := make([]string, len(attachments))
	for i, a := range attachments {
		keys[i] = a.ObjectKey
	}
	s.DeleteObjects(ctx, keys)
}

// DeleteObjects removes private objects by key. Failures are logged only.
func (s *MediaService) DeleteObjects(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, storage.BucketAttachments, k); err != nil {
			s.log.Warn().Err(err).Str("key", k).Msg("Failed to delete stored object")
		}
	}
}

// Sign fills in download URLs for attachments.
func (s *MediaService) Sign(attachments []model.Attachment) {
	for i := range attachments {
		url, err := s.store.URL(storage.BucketAttachments, attachments[i].ObjectKey)
		if err != nil {
			s.log.Warn().Err(err).Str("attachment_id", attachments[i].ID.String()).Msg("Failed to sign attachment URL")
			continue
		}
		attachments[i].URL = url
	}
}

func (s *MediaService) checkSize(size int64) error {
	if s.maxBytes > 0 && size > s.maxBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, size, s.maxBytes)
	}
	return nil
}

// put writes body and rejects it once it grows past the size limit, whatever the declared size was.
func (s *MediaService) put(ctx context.Context, b storage.Bucket, key string, body io.Reader) (int64, error) {
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}
	n, err := s.store.Put(ctx, b, key, body)
	if err != nil {
		return 0, fmt.Errorf("store object: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		_ = s.store.Delete(ctx, b, key)
		return 0, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	return n, nil
}

func (s *MediaService) downscale(body io.Reader, mt *mimetype.MIME) (io.Reader, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil || (cfg.Width <= maxImageEdge && cfg.Height <= maxImageEdge) {
		return bytes.NewReader(raw), nil
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable image", ErrUnsupportedFileType)
	}
	img = imaging.Fit(img, maxImageEdge, maxImageEdge, imaging.Lanczos)

	format := imaging.JPEG
	if mt.Is("image/png") {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	s.log.Debug().Int("width", cfg.Width).Int("height", cfg.Height).Msg("Scaled down uploaded image")
	return &buf, nil
}

// sniff detects the content type from the leading bytes and returns a reader
// that still yields the whole stream.
func sniff(r io.Reader, allowed []string) (*mimetype.MIME, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: empty file", ErrUnsupportedFileType)
	}

	mt := mimetype.Detect(head)
	for _, a := range allowed {
		if mt.Is(a) {
			return mt, io.MultiReader(bytes.NewReader(head), r), nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFileType, mt.String(), strings.Join(allowed, ", "))
}
