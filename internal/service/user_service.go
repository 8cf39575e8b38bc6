package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
)

// Account errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStudentNeedsClass = errors.New("students must belong to a class")
)

type UserService struct {
	users UserStore
	auth  *AuthService
	log   zerolog.Logger
}

func NewUserService(users UserStore, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Create adds an account. Students need a class; other roles never carry one.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	classID := req.ClassID
	if req.Role == model.RoleStudent && classID == nil {
		return nil, ErrStudentNeedsClass
	}
	if req.Role != model.RoleStudent {
		classID = nil
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         req.Role,
		ClassID:      classID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("User created")
	return u, nil
}

// List returns a page of accounts with role, optionally limited to a class.
func (s *UserService) List(ctx context.Context, role model.Role, classID *int, page, perPage int) ([]model.User, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)
	users, total, err := s.users.ListByRole(ctx, role, classID, page, perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// ResetPassword sets a new password for an account.
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	s.log.Info().Str("user_id", id.String()).Msg("Password reset")
	return nil
}
