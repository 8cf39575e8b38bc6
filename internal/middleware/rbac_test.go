package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stretchr/testify/assert"
)

func TestRequirePermission(t *testing.T) {
	auth := newAuth(&fakeTokens{revoked: map[string]bool{}})
	adminTok, _ := tokenFor(t, auth, model.RoleAdmin)
	teacherTok, _ := tokenFor(t, auth, model.RoleTeacher)

	r := gin.New()
	staff := r.Group("/", RequireStaffJWT(auth))
	staff.POST("/grade", RequirePermission(model.PermissionSubmissionsGrade), ok)
	staff.POST("/users", RequirePermission(model.PermissionUsersWrite), ok)
	staff.GET("/either", RequireAnyPermission(model.PermissionUsersWrite, model.PermissionLinksWrite), ok)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/grade", teacherTok).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/users", adminTok).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/either", teacherTok).Code)

	w := serve(r, http.MethodPost, "/users", teacherTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrPermissionDenied, errCode(t, w))
}

func TestRequirePermission_NoClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequirePermission(model.PermissionDashboardRead), ok)

	w := serve(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, errCode(t, w))
}
