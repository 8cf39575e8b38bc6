package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account kind. It decides which route group a token may use.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// IsStaff reports whether the role authors and grades assignments.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User is any account that can sign in.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	ClassID      *int      `json:"class_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
	Permissions []string  `json:"permissions"`
}

// CreateUserRequest is the payload for creating an account.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=ADMIN TEACHER STUDENT PARENT"`
	ClassID  *int   `json:"class_id" binding:"omitempty,min=1"`
}

// ResetPasswordRequest sets a new password for an account.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=128"`
}
