package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// User represents an account in the system
type User struct {
	BaseModel
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string       `gorm:"type:varchar(255)" json:"-"` // empty for Google-only accounts
	Name         string       `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	AuthProvider AuthProvider `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleID     *string      `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasPassword reports whether the account can log in with email/password.
// Google-only accounts never have one.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	AuthProvider AuthProvider `json:"auth_provider"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AuthProvider: u.AuthProvider,
		LastLoginAt:  u.LastLoginAt,
	}
}
