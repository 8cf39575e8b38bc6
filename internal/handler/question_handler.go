package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/validator"
)

// QuestionHandler handles an assignment's question list.
type QuestionHandler struct {
	assignmentService *service.AssignmentService
	registry          *question.Registry
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(assignmentService *service.AssignmentService, registry *question.Registry) *QuestionHandler {
	return &QuestionHandler{assignmentService: assignmentService, registry: registry}
}

// ListQuestionTypes godoc
// GET /api/v1/admin/question-types
// Lists the question types the server can validate and grade.
func (h *QuestionHandler) ListQuestionTypes(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"question_types": h.registry.Types()})
}

// ReplaceQuestions godoc
// PUT /api/v1/admin/assignments/:id/questions
// Replaces the whole question list. List position becomes question order.
func (h *QuestionHandler) ReplaceQuestions(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.assignmentService.UpdateQuestions(c.Request.Context(), id, req.Questions)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}
