package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/middleware"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sharedToken = "ABCDEFGHJKLMNPQR"

// oneLinkStore knows a single active link. Other LinkStore methods are unused.
type oneLinkStore struct {
	service.LinkStore
	link model.ShareableLink
}

func (s *oneLinkStore) GetActiveByToken(_ context.Context, token string) (*model.ShareableLink, error) {
	if token != s.link.Token {
		return nil, repository.ErrNotFound
	}
	l := s.link
	return &l, nil
}

type animalSoundsViewer struct{}

func (animalSoundsViewer) GetStudentView(_ context.Context, id uuid.UUID, _ *int) (*model.AssignmentPayload, error) {
	return &model.AssignmentPayload{AssignmentID: id, Title: "Animal Sounds"}, nil
}

type countingViewQueue struct {
	mu    sync.Mutex
	views int
}

func (q *countingViewQueue) EnqueueView(context.Context, uuid.UUID, time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.views++
	return nil
}

func (q *countingViewQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.views
}

func TestSharedAssignment_CountsOneViewPerVisitor(t *testing.T) {
	links := &oneLinkStore{link: model.ShareableLink{
		ID:          uuid.New(),
		Token:       sharedToken,
		ContentType: model.LinkContentAssignment,
		ContentID:   uuid.New(),
		IsActive:    true,
	}}
	views := &countingViewQueue{}
	h := NewLinkHandler(service.NewLinkService(links, nil, animalSoundsViewer{}, views, "https://class.test", zerolog.Nop()))

	viewLimiter := middleware.NewRateLimiter(1, 10*time.Minute)
	byVisitor := middleware.ByIPAndParam("token")
	r := gin.New()
	r.GET("/links/:token", viewLimiter.MarkBy(byVisitor), h.GetSharedAssignment)
	r.POST("/links/:token/views", viewLimiter.MiddlewareBy(byVisitor), h.CountView)

	visit := func(method, target, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		req.RemoteAddr = ip + ":4242"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		w := visit(http.MethodGet, "/links/"+sharedToken, "10.0.0.7")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data model.PublicLinkView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Animal Sounds", body.Data.Assignment.Title)
	}
	assert.Equal(t, 1, views.count(), "repeat visits from one address count once")

	w := visit(http.MethodPost, "/links/"+sharedToken+"/views", "10.0.0.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "the explicit count shares the visitor's budget")
	assert.Equal(t, 1, views.count())

	visit(http.MethodGet, "/links/"+sharedToken, "10.0.0.8")
	assert.Equal(t, 2, views.count())

	w = visit(http.MethodGet, "/links/ZZZZZZZZZZZZZZZZ", "10.0.0.9")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 2, views.count())
}
