package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
	assert.Equal(t, 1, NewPagination(1, 0, 5).TotalPages)
}

func TestFailCarriesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		FailWithDetail(c, http.StatusUnprocessableEntity, ErrInvalidQuestionData, "pairs: too few")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body.Metadata.RequestID)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrInvalidQuestionData, body.Error.Code)
	assert.Equal(t, "pairs: too few", body.Error.Fields["detail"])
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_RejectsUnsafeIDs(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	cases := []struct {
		header string
		keep   bool
	}{
		{"abc-123_DEF", true},
		{"", false},
		{"has space", false},
		{"line\nbreak", false},
		{"x" + string(make([]byte, 64)), false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.header != "" {
			req.Header.Set(HeaderRequestID, tc.header)
		}
		r.ServeHTTP(w, req)

		got := w.Body.String()
		assert.Equal(t, got, w.Header().Get(HeaderRequestID))
		if tc.keep {
			assert.Equal(t, tc.header, got)
		} else {
			assert.NotEqual(t, tc.header, got)
			assert.Len(t, got, 36, "replaced with a UUID")
		}
	}
}
