package models

import (
	"strings"
	"time"
)

// Customer 代表已註冊的商城客戶
// Customer represents a registered customer of the store
type Customer struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address so that guest and
// registered lookups agree on the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
