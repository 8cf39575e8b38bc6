package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesTokenWithPermissions(t *testing.T) {
	env := newTestEnv(t)
	teacher, err := env.users.Create(context.Background(), &model.CreateUserRequest{
		Email: "Sari@School.test", Name: "Bu Sari", Password: "rahasia123", Role: model.RoleTeacher, ClassID: intPtr(1),
	})
	require.NoError(t, err)
	assert.Nil(t, teacher.ClassID, "only students carry a class")
	assert.Equal(t, "sari@school.test", teacher.Email)

	res, err := env.auth.Login(context.Background(), &model.LoginRequest{Email: "sari@school.test", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, res.User.ID)
	assert.Contains(t, res.Permissions, string(model.PermissionSubmissionsGrade))

	claims, err := env.auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, claims.UserID)
	assert.Equal(t, model.RoleTeacher, claims.Role)
	assert.True(t, claims.HasPermission(string(model.PermissionAssignmentsWrite)))
	assert.Nil(t, claims.ClassID)
}

func TestLoginStudentCarriesClass(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.Create(context.Background(), &model.CreateUserRequest{
		Email: "budi@school.test", Name: "Budi", Password: "rahasia123", Role: model.RoleStudent, ClassID: intPtr(2),
	})
	require.NoError(t, err)

	res, err := env.auth.Login(context.Background(), &model.LoginRequest{Email: "budi@school.test", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Empty(t, res.Permissions)

	claims, err := env.auth.ValidateToken(res.Token)
	require.NoError(t, err)
	require.NotNil(t, claims.ClassID)
	assert.Equal(t, 2, *claims.ClassID)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.Create(context.Background(), &model.CreateUserRequest{
		Email: "sari@school.test", Name: "Bu Sari", Password: "rahasia123", Role: model.RoleTeacher,
	})
	require.NoError(t, err)

	_, err = env.auth.Login(context.Background(), &model.LoginRequest{Email: "sari@school.test", Password: "salah"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(context.Background(), &model.LoginRequest{Email: "nobody@school.test", Password: "rahasia123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	env := newTestEnv(t)
	user := env.db.addUser("Bu Sari", model.RoleTeacher, nil)

	otherCfg := *env.cfg
	otherCfg.JWTSecret = "another-secret"
	foreign, _, err := (&AuthService{cfg: &otherCfg}).GenerateToken(&user)
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(foreign)
	require.Error(t, err)

	expiredCfg := *env.cfg
	expiredCfg.JWTExpiry = -time.Minute
	expired, _, err := (&AuthService{cfg: &expiredCfg}).GenerateToken(&user)
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.db.addUser("Bu Sari", model.RoleTeacher, nil)
	token, _, err := env.auth.GenerateToken(&user)
	require.NoError(t, err)
	claims, err := env.auth.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, env.auth.CheckRevoked(context.Background(), claims))
	require.NoError(t, env.auth.Logout(context.Background(), claims))
	require.ErrorIs(t, env.auth.CheckRevoked(context.Background(), claims), ErrTokenRevoked)

	ttl := env.tokens.revoked[claims.ID]
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestCreateUserRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, &model.CreateUserRequest{
		Email: "budi@school.test", Name: "Budi", Password: "rahasia123", Role: model.RoleStudent,
	})
	require.ErrorIs(t, err, ErrStudentNeedsClass)

	_, err = env.users.Create(ctx, &model.CreateUserRequest{
		Email: "budi@school.test", Name: "Budi", Password: "rahasia123", Role: model.RoleStudent, ClassID: intPtr(1),
	})
	require.NoError(t, err)
	_, err = env.users.Create(ctx, &model.CreateUserRequest{
		Email: "BUDI@school.test", Name: "Budi Lagi", Password: "rahasia123", Role: model.RoleParent,
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	users, page, err := env.users.List(ctx, model.RoleStudent, intPtr(1), 1, 10)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, page.TotalItems)
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, err := env.users.Create(ctx, &model.CreateUserRequest{
		Email: "sari@school.test", Name: "Bu Sari", Password: "rahasia123", Role: model.RoleTeacher,
	})
	require.NoError(t, err)

	require.NoError(t, env.users.ResetPassword(ctx, u.ID, "baru12345"))
	_, err = env.auth.Login(ctx, &model.LoginRequest{Email: "sari@school.test", Password: "baru12345"})
	require.NoError(t, err)

	require.ErrorIs(t, env.users.ResetPassword(ctx, uuid.New(), "baru12345"), ErrUserNotFound)
}
