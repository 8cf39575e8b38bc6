package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/question"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/storage"
)

// failError maps service and repository errors onto API error codes.
// Anything unrecognised becomes a 500 and is attached to the gin context
// so the access log shows it.
func failError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrLinkNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)

	case errors.Is(err, service.ErrAssignmentNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrAssignmentNotPublished)
	case errors.Is(err, service.ErrInvalidStatusTransition):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidStatus)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrClassMismatch):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)

	case errors.Is(err, service.ErrQuestionNotInAssignment),
		errors.Is(err, service.ErrDuplicateResponse):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrQuestionNotInAssign, err.Error())
	case errors.Is(err, question.ErrUnknownType):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrUnknownQuestionType, err.Error())
	case errors.Is(err, question.ErrInvalidPayload):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrInvalidQuestionData, err.Error())
	case errors.Is(err, service.ErrStudentNeedsClass):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, err.Error())

	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)

	case errors.Is(err, service.ErrLinkContentGone):
		response.Fail(c, http.StatusGone, response.ErrLinkUnavailable)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)

	case errors.Is(err, repository.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, repository.ErrForeignKey):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)

	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramUUID parses a UUID path parameter, answering 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// paramInt parses an integer path parameter, answering 400 when it is malformed.
func paramInt(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional positive integer filter such as ?class_id=3.
func queryInt(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}
	return &n, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	return page, perPage
}

// formUploads collects the files sent under field. Non-multipart requests carry none.
func formUploads(c *gin.Context, field string) ([]storage.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File[field]
	uploads := make([]storage.Upload, 0, len(headers))
	for _, h := range headers {
		uploads = append(uploads, storage.FromFileHeader(h))
	}
	return uploads, nil
}
