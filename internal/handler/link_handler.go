package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/middleware"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/validator"
)

// LinkHandler handles share links for staff and their anonymous visitors.
type LinkHandler struct {
	linkService *service.LinkService
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkService *service.LinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// CreateLink godoc
// POST /api/v1/admin/links
// Issues a share link for an assignment.
func (h *LinkHandler) CreateLink(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateShareableLinkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	link, err := h.linkService.CreateShareableLink(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"link": link})
}

// ListLinks godoc
// GET /api/v1/admin/links?content_type=ASSIGNMENT&content_id=...
// Lists every link issued for a piece of content.
func (h *LinkHandler) ListLinks(c *gin.Context) {
	contentID, err := uuid.Parse(c.Query("content_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	contentType := model.LinkContentType(strings.ToUpper(c.DefaultQuery("content_type", string(model.LinkContentAssignment))))
	if contentType != model.LinkContentAssignment {
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "content_type must be ASSIGNMENT")
		return
	}

	links, err := h.linkService.ListByContent(c.Request.Context(), contentType, contentID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"links": links})
}

// GetLink godoc
// GET /api/v1/admin/links/:id
func (h *LinkHandler) GetLink(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	link, err := h.linkService.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"link": link})
}

// DeactivateLink godoc
// POST /api/v1/admin/links/:id/deactivate
func (h *LinkHandler) DeactivateLink(c *gin.Context) {
	h.toggle(c, false)
}

// ReactivateLink godoc
// POST /api/v1/admin/links/:id/reactivate
func (h *LinkHandler) ReactivateLink(c *gin.Context) {
	h.toggle(c, true)
}

func (h *LinkHandler) toggle(c *gin.Context, active bool) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var (
		link *model.ShareableLink
		err  error
	)
	if active {
		link, err = h.linkService.ReactivateLink(c.Request.Context(), id)
	} else {
		link, err = h.linkService.DeactivateLink(c.Request.Context(), id)
	}
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"link": link})
}

// DeleteLink godoc
// DELETE /api/v1/admin/links/:id
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.linkService.DeleteLink(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "link deleted successfully"})
}

// GetLinkQRCode godoc
// GET /api/v1/admin/links/:id/qr?size=256
// Renders the link's public URL as a PNG QR code.
func (h *LinkHandler) GetLinkQRCode(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "size must be a positive number")
			return
		}
		size = n
	}

	png, err := h.linkService.QRCode(c.Request.Context(), id, size)
	if err != nil {
		failError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

// ─── Public access ──────────────────────────────────────────────────

// GetSharedAssignment godoc
// GET /api/v1/public/links/:token
// Resolves a share link for an anonymous visitor. Only visits within the
// per-visitor view limit are counted.
func (h *LinkHandler) GetSharedAssignment(c *gin.Context) {
	view, err := h.linkService.PublicView(c.Request.Context(), c.Param("token"), middleware.WithinLimit(c))
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrLinkUnavailable)
			return
		}
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// CountView godoc
// POST /api/v1/public/links/:token/views
// Counts one view for clients that cache the shared content themselves.
func (h *LinkHandler) CountView(c *gin.Context) {
	if err := h.linkService.IncrementViewCount(c.Request.Context(), c.Param("token")); err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrLinkUnavailable)
			return
		}
		failError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
