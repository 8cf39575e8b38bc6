package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
)

// TokenAlphabet leaves out characters that are easy to misread (0/O/o, 1/l/I).
const TokenAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

// TokenLength is the length of every share token.
const TokenLength = 16

const tokenAttempts = 3

// QR code size bounds in pixels.
const (
	DefaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// AssignmentViewer resolves the student view of an assignment.
type AssignmentViewer interface {
	GetStudentView(ctx context.Context, id uuid.UUID, classID *int) (*model.AssignmentPayload, error)
}

// LinkService issues and resolves share links.
type LinkService struct {
	links       LinkStore
	assignments AssignmentStore
	viewer      AssignmentViewer
	views       ViewQueue
	baseURL     string
	now         func() time.Time
	log         zerolog.Logger
}

// NewLinkService creates a new LinkService. baseURL prefixes tokens in public URLs.
func NewLinkService(
	links LinkStore,
	assignments AssignmentStore,
	viewer AssignmentViewer,
	views ViewQueue,
	baseURL string,
	log zerolog.Logger,
) *LinkService {
	return &LinkService{
		links:       links,
		assignments: assignments,
		viewer:      viewer,
		views:       views,
		baseURL:     strings.TrimRight(baseURL, "/"),
		now:         time.Now,
		log:         log.With().Str("component", "link_service").Logger(),
	}
}

// CreateShareableLink issues an active link with a fresh token.
func (s *LinkService) CreateShareableLink(ctx context.Context, req *model.CreateShareableLinkRequest, userID uuid.UUID) (*model.ShareableLink, error) {
	if _, err := s.assignments.GetByID(ctx, req.ContentID); err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}

	l := &model.ShareableLink{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		CreatedBy:   userID,
		ExpiresAt:   utcTime(req.ExpiresAt),
	}

	for attempt := 1; attempt <= tokenAttempts; attempt++ {
		token, err := GenerateToken()
		if err != nil {
			return nil, err
		}
		l.Token = token

		err = s.links.Create(ctx, l)
		if err == nil {
			s.log.Info().
				Str("link_id", l.ID.String()).
				Str("content_id", l.ContentID.String()).
				Msg("Share link created")
			s.withURL(l)
			return l, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("create link: %w", err)
		}
		s.log.Warn().Int("attempt", attempt).Msg("Share token collision, retrying")
	}
	return nil, ErrTokenExhausted
}

// GetByToken returns the active link for token. A missing, inactive or
// expired link yields nil and no error.
func (s *LinkService) GetByToken(ctx context.Context, token string) (*model.ShareableLink, error) {
	if !ValidToken(token) {
		return nil, nil
	}

	l, err := s.links.GetActiveByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	if l.Expired(s.now()) {
		return nil, nil
	}
	s.withURL(l)
	return l, nil
}

// IncrementViewCount counts one view of a usable link. The count is queued for
// the batch worker; if Redis is down it is written straight to PostgreSQL.
// Returns ErrLinkNotFound for unusable tokens.
func (s *LinkService) IncrementViewCount(ctx context.Context, token string) error {
	l, err := s.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if l == nil {
		return ErrLinkNotFound
	}
	s.countView(ctx, l)
	return nil
}

func (s *LinkService) countView(ctx context.Context, l *model.ShareableLink) {
	at := s.now().UTC()
	err := s.views.EnqueueView(ctx, l.ID, at)
	if err == nil {
		return
	}

	s.log.Warn().Err(err).Str("link_id", l.ID.String()).Msg("View queue unavailable, counting directly")
	if err := s.links.IncrementViews(ctx, l.ID, 1, at); err != nil {
		// View counts are advisory; a lost view is not worth failing the request.
		s.log.Error().Err(err).Str("link_id", l.ID.String()).Msg("Failed to count link view")
	}
}

// PublicView resolves a token for an anonymous visitor and returns the
// redacted assignment. The view is counted only when count is set; callers
// throttle repeat visits by clearing it.
func (s *LinkService) PublicView(ctx context.Context, token string, count bool) (*model.PublicLinkView, error) {
	l, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLinkNotFound
	}

	payload, err := s.viewer.GetStudentView(ctx, l.ContentID, nil)
	if errors.Is(err, ErrAssignmentNotFound) || errors.Is(err, ErrAssignmentNotPublished) {
		return nil, ErrLinkContentGone
	}
	if err != nil {
		return nil, err
	}

	if count {
		s.countView(ctx, l)
	}
	return &model.PublicLinkView{Token: l.Token, ExpiresAt: l.ExpiresAt, Assignment: payload}, nil
}

// DeactivateLink turns a link off. It can be turned on again.
func (s *LinkService) DeactivateLink(ctx context.Context, id uuid.UUID) (*model.ShareableLink, error) {
	return s.setActive(ctx, id, false)
}

// ReactivateLink turns a deactivated link back on. Expiry still applies.
func (s *LinkService) ReactivateLink(ctx context.Context, id uuid.UUID) (*model.ShareableLink, error) {
	return s.setActive(ctx, id, true)
}

func (s *LinkService) setActive(ctx context.Context, id uuid.UUID, active bool) (*model.ShareableLink, error) {
	l, err := s.links.SetActive(ctx, id, active)
	if err != nil {
		return nil, notFound(err, ErrLinkNotFound)
	}
	s.log.Info().Str("link_id", id.String()).Bool("active", active).Msg("Share link toggled")
	s.withURL(l)
	return l, nil
}

// DeleteLink removes a link permanently.
func (s *LinkService) DeleteLink(ctx context.Context, id uuid.UUID) error {
	if err := s.links.Delete(ctx, id); err != nil {
		return notFound(err, ErrLinkNotFound)
	}
	s.log.Info().Str("link_id", id.String()).Msg("Share link deleted")
	return nil
}

// GetByID returns a link regardless of its state.
func (s *LinkService) GetByID(ctx context.Context, id uuid.UUID) (*model.ShareableLink, error) {
	l, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrLinkNotFound)
	}
	s.withURL(l)
	return l, nil
}

// ListByContent returns every link issued for a piece of content.
func (s *LinkService) ListByContent(ctx context.Context, contentType model.LinkContentType, contentID uuid.UUID) ([]model.ShareableLink, error) {
	links, err := s.links.ListByContent(ctx, contentType, contentID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	if links == nil {
		links = []model.ShareableLink{}
	}
	for i := range links {
		s.withURL(&links[i])
	}
	return links, nil
}

// QRCode renders the link's public URL as a PNG of size x size pixels.
func (s *LinkService) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case size == 0:
		size = DefaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}

	png, err := qrcode.Encode(l.URL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// URL builds the public address of a token.
func (s *LinkService) URL(token string) string {
	return s.baseURL + "/" + token
}

func (s *LinkService) withURL(l *model.ShareableLink) {
	l.URL = s.URL(l.Token)
}

// GenerateToken returns a random TokenLength-character token drawn from TokenAlphabet.
func GenerateToken() (string, error) {
	limit := big.NewInt(int64(len(TokenAlphabet)))
	b := make([]byte, TokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		b[i] = TokenAlphabet[n.Int64()]
	}
	return string(b), nil
}

// ValidToken reports whether token could have been issued by GenerateToken.
func ValidToken(token string) bool {
	if len(token) != TokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		if strings.IndexByte(TokenAlphabet, token[i]) < 0 {
			return false
		}
	}
	return true
}
