package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAuth carries the credential-bearing view of a user. Only the auth
// domain should ever see the password hash.
type UserAuth struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// User is the public identity returned by /api/auth/user and stored in the
// request context by the auth middleware.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile holds the traveller details attached to a user.
type Profile struct {
	UserID         string     `json:"-"`
	FullName       *string    `json:"full_name"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	PassportNumber *string    `json:"passport_number"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Nationality    *string    `json:"nationality"`
}

// UpdateProfileParams are the PUT /api/profile fields. Nil means "leave as is".
type UpdateProfileParams struct {
	FullName       *string `json:"full_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	PassportNumber *string `json:"passport_number"`
	DateOfBirth    *string `json:"date_of_birth"` // YYYY-MM-DD
	Nationality    *string `json:"nationality"`
}
