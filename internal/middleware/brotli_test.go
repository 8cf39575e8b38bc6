package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brotliEngine(body []byte, contentType string) *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/x", func(c *gin.Context) {
		c.Data(http.StatusOK, contentType, body)
	})
	return r
}

func fetch(r *gin.Engine, acceptEncoding string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotli_CompressesLargeJSON(t *testing.T) {
	body := []byte(`{"data":"` + strings.Repeat("matching pairs ", 200) + `"}`)
	w := fetch(brotliEngine(body, "application/json; charset=utf-8"), "gzip, br")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
	assert.Less(t, w.Body.Len(), len(body))

	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, body, plain)
}

func TestBrotli_PassThrough(t *testing.T) {
	large := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 1024)

	cases := []struct {
		name           string
		body           []byte
		contentType    string
		acceptEncoding string
	}{
		{"small body", []byte(`{"ok":true}`), "application/json", "br"},
		{"image", large, "image/png", "br"},
		{"pdf", large, "application/pdf", "br"},
		{"client without br", large, "text/plain", "gzip"},
		{"br refused", large, "text/plain", "br;q=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := fetch(brotliEngine(tc.body, tc.contentType), tc.acceptEncoding)
			assert.Empty(t, w.Header().Get("Content-Encoding"))
			assert.Equal(t, tc.body, w.Body.Bytes())
		})
	}
}
