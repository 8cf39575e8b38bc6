package handler

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// MediaHandler handles media uploads and signed file downloads.
type MediaHandler struct {
	mediaService *service.MediaService
	store        *storage.LocalStore
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService, store *storage.LocalStore) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, store: store}
}

// UploadMedia godoc
// POST /api/v1/admin/media/upload
// Uploads an image or audio clip for use inside questions and returns its URL.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	obj, err := h.mediaService.SaveMedia(c.Request.Context(), storage.FromFileHeader(header))
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": obj.URL, "key": obj.Key, "size": obj.Size})
}

// ListMedia godoc
// GET /api/v1/admin/media?prefix=uploads/image
// Lists uploaded media files.
func (h *MediaHandler) ListMedia(c *gin.Context) {
	prefix := strings.TrimPrefix(c.Query("prefix"), "/")

	objects, err := h.mediaService.ListMedia(c.Request.Context(), prefix)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"files": objects})
}

// DownloadSigned godoc
// GET /files/signed?token=...
// Streams a private file when the signed token is valid and unexpired.
func (h *MediaHandler) DownloadSigned(c *gin.Context) {
	bucket, key, err := h.store.VerifySignedToken(c.Query("token"))
	if err != nil {
		response.Fail(c, http.StatusForbidden, response.ErrTokenInvalid)
		return
	}

	f, err := h.store.Open(bucket, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectMissing) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		failError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		failError(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, path.Base(key), info.ModTime(), f)
}
