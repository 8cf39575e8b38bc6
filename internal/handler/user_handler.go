package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	"github.com/stemsi/classwork-backend/internal/validator"
)

// UserHandler handles account management.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers godoc
// GET /api/v1/admin/users?role=STUDENT&class_id=1
// Lists accounts of one role with pagination.
func (h *UserHandler) ListUsers(c *gin.Context) {
	role := model.Role(strings.ToUpper(c.DefaultQuery("role", string(model.RoleStudent))))
	if _, ok := model.RolePermissions[role]; !ok {
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "unknown role")
		return
	}
	classID, ok := queryInt(c, "class_id")
	if !ok {
		return
	}

	page, perPage := pageParams(c)
	users, pagination, err := h.userService.List(c.Request.Context(), role, classID, page, perPage)
	if err != nil {
		failError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// CreateUser godoc
// POST /api/v1/admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// ResetPassword godoc
// PUT /api/v1/admin/users/:id/password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "password updated successfully"})
}
