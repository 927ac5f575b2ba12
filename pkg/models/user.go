package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated caller resolved from the access token.
// Accounts live in the external auth service; only id/email travel here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// TokenClaims 访问令牌声明，exp/iat 由 RegisteredClaims 携带
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Type   string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// UserProfile 发帖人的公开联系方式 (table: user_profiles)
//
// Attached to every fetched Jio as creatorProfile so buyers and sellers can
// reach each other on Telegram.
type UserProfile struct {
	UserID         string    `json:"userId" db:"user_id"`
	TelegramHandle string    `json:"telegramHandle" db:"telegram_handle"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// UpdateProfileRequest PUT /api/profile 请求体
type UpdateProfileRequest struct {
	TelegramHandle string `json:"telegramHandle" validate:"required,telegram"`
}

// NormalizeTelegramHandle strips whitespace and a leading "@".
func NormalizeTelegramHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
