package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                      uuid.UUID  `json:"id" db:"user_id"`
	Email                   string     `json:"email" db:"email"`
	PasswordHash            string     `json:"-" db:"password_hash"`
	Username                string     `json:"username" db:"username"`
	FullName                string     `json:"full_name" db:"full_name"`
	AvatarURL               *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio                     *string    `json:"bio,omitempty" db:"bio"`
	Role                    string     `json:"role" db:"role"`
	IsActive                bool       `json:"is_active" db:"is_active"`
	IsEmailVerified         bool       `json:"is_email_verified" db:"is_email_verified"`
	EmailVerificationToken  *string    `json:"-" db:"email_verification_token"`
	EmailVerificationSentAt *time.Time `json:"-" db:"email_verification_sent_at"`
	PasswordResetToken      *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiresAt  *time.Time `json:"-" db:"password_reset_expires_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt               *time.Time `json:"-" db:"deleted_at"`
}

// PublicProfile is what other readers see of an account.
type PublicProfile struct {
	ID        uuid.UUID `json:"id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	FullName  string    `json:"full_name" db:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	FullName string `json:"full_name" validate:"required,min=2"`
}

type UpdateUserInput struct {
	FullName  *string  `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Password  *string  `json:"password,omitempty" validate:"omitempty,min=8"`
	AvatarURL **string `json:"avatar_url,omitempty"`
	Bio       **string `json:"bio,omitempty" validate:"omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AssignRoleInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=reader author admin"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserRole string

const (
	RoleReader UserRole = "reader"
	RoleAuthor UserRole = "author"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleReader, RoleAuthor, RoleAdmin:
		return true
	default:
		return false
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}
