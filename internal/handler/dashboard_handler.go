package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
)

// DashboardHandler handles staff dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard
// Query: ?limit= (1-20, default 5) sizes the pending and recent lists.
// Returns summary counts, assignment status distribution, grading backlog and recent submissions.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	limit := service.DefaultDashboardListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > service.MaxDashboardListLimit {
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, "limit must be between 1 and 20")
			return
		}
		limit = n
	}

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), limit)
	if err != nil {
		failError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
