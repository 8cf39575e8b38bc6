package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/middleware"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/validator"
)

// SubmissionHandler handles student attempts and teacher grading.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// StartAssignment godoc
// POST /api/v1/student/assignments/:id/start
// Records that the student opened the assignment.
func (h *SubmissionHandler) StartAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionService.Start(c.Request.Context(), id, claims.UserID, claims.ClassID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// SubmitAssignment godoc
// POST /api/v1/student/assignments/:id/submit
// Submits every response at once. Accepts JSON, or multipart form data with
// the JSON in "payload" and files under "files".
func (h *SubmissionHandler) SubmitAssignment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.SubmitAssignmentRequest
	if fields := validator.BindPayload(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.AssignmentID = id

	uploads, err := formUploads(c, "files")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	sub, err := h.submissionService.SubmitAssignment(c.Request.Context(), &req, uploads, claims.UserID, claims.ClassID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// GetMySubmission godoc
// GET /api/v1/student/assignments/:id/submission
// Returns the student's own submission, or null when not started.
func (h *SubmissionHandler) GetMySubmission(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionService.GetStudentSubmission(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// ListSubmissions godoc
// GET /api/v1/admin/assignments/:id/submissions
// Lists an assignment's submissions with pagination, optionally by status.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	status := model.SubmissionStatus(strings.ToUpper(c.Query("status")))
	switch status {
	case "", model.SubmissionStatusStarted, model.SubmissionStatusSubmitted, model.SubmissionStatusGraded:
	default:
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "status must be STARTED, SUBMITTED or GRADED")
		return
	}

	page, perPage := pageParams(c)
	subs, pagination, err := h.submissionService.ListByAssignment(c.Request.Context(), id, status, page, perPage)
	if err != nil {
		failError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"submissions": subs}, pagination)
}

// GetSubmission godoc
// GET /api/v1/admin/submissions/:id
// Returns one submission with responses and attachments.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionService.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// GradeSubmission godoc
// POST /api/v1/admin/submissions/:id/grade
// Records a score and feedback and marks the submission GRADED.
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.GradeSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.submissionService.GradeSubmission(c.Request.Context(), id, &req, claims.UserID)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}
