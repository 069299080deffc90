package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:150"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"created_at"`
}

type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=150"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

type SigninRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" form:"old_password" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=8"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session backs the cookie-based login of the web surface.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordResetToken is issued by the reset-request form. Delivering the
// token to the user is out of scope; the server only records and validates it.
type PasswordResetToken struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
