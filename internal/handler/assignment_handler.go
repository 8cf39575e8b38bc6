package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/middleware"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/validator"
)

// AssignmentHandler handles assignment authoring and the student assignment views.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// ListAssignments godoc
// GET /api/v1/admin/assignments
// Lists assignments with pagination, filtered by class_id, subject_id, status and search.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	classID, ok := queryInt(c, "class_id")
	if !ok {
		return
	}
	subjectID, ok := queryInt(c, "subject_id")
	if !ok {
		return
	}

	status := model.AssignmentStatus(strings.ToUpper(c.Query("status")))
	switch status {
	case "", model.AssignmentStatusDraft, model.AssignmentStatusPublished, model.AssignmentStatusArchived:
	default:
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "status must be DRAFT, PUBLISHED or ARCHIVED")
		return
	}

	page, perPage := pageParams(c)
	assignments, pagination, err := h.assignmentService.List(c.Request.Context(), model.AssignmentFilter{
		ClassID:   classID,
		SubjectID: subjectID,
		Status:    status,
		Search:    strings.TrimSpace(c.Query("search")),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		failError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"assignments": assignments}, pagination)
}

// CreateAssignment godoc
// POST /api/v1/admin/assignments
// Creates a DRAFT assignment with its questions. Accepts JSON, or multipart
// form data with the JSON in "payload" and files under "files".
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateAssignmentRequest
	if fields := validator.BindPayload(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	uploads, err := formUploads(c, "files")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, uploads, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "class or subject does not exist")
			return
		}
		failError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// GetAssignment godoc
// GET /api/v1/admin/assignments/:id
// Returns an assignment with its questions, answer keys and attachments.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// UpdateAssignment godoc
// PATCH /api/v1/admin/assignments/:id
// Updates the supplied assignment fields.
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "class or subject does not exist")
			return
		}
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// DeleteAssignment godoc
// DELETE /api/v1/admin/assignments/:id
// Deletes an assignment with its questions, submissions, links and files.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted successfully"})
}

// PublishAssignment godoc
// POST /api/v1/admin/assignments/:id/publish
// Publishes a DRAFT assignment and warms the student view cache.
func (h *AssignmentHandler) PublishAssignment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Publish(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// ArchiveAssignment godoc
// POST /api/v1/admin/assignments/:id/archive
// Archives a PUBLISHED assignment. Students can no longer open or submit it.
func (h *AssignmentHandler) ArchiveAssignment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Archive(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}

// AddAttachments godoc
// POST /api/v1/admin/assignments/:id/attachments
// Uploads extra files for an assignment (multipart, field "files").
func (h *AssignmentHandler) AddAttachments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	uploads, err := formUploads(c, "files")
	if err != nil || len(uploads) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	attachments, err := h.assignmentService.AddAttachments(c.Request.Context(), id, uploads, claims.UserID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attachments": attachments})
}

// DeleteAttachment godoc
// DELETE /api/v1/admin/assignments/:id/attachments/:attachment_id
// Removes one attachment and its stored file.
func (h *AssignmentHandler) DeleteAttachment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramUUID(c, "attachment_id")
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAttachment(c.Request.Context(), id, attachmentID); err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "attachment deleted successfully"})
}

// ─── Student views ──────────────────────────────────────────────────

// ListStudentAssignments godoc
// GET /api/v1/student/assignments
// Lists the published assignments of the student's class.
func (h *AssignmentHandler) ListStudentAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if claims.ClassID == nil {
		response.SuccessWithPagination(c, http.StatusOK, gin.H{"assignments": []model.Assignment{}}, response.NewPagination(1, 0, 0))
		return
	}

	page, perPage := pageParams(c)
	assignments, pagination, err := h.assignmentService.List(c.Request.Context(), model.AssignmentFilter{
		ClassID: claims.ClassID,
		Status:  model.AssignmentStatusPublished,
		Search:  strings.TrimSpace(c.Query("search")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		failError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"assignments": assignments}, pagination)
}

// GetStudentAssignment godoc
// GET /api/v1/student/assignments/:id
// Returns the published assignment without answer keys.
func (h *AssignmentHandler) GetStudentAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	payload, err := h.assignmentService.GetStudentView(c.Request.Context(), id, claims.ClassID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": payload})
}
