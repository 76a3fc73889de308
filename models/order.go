package models

import (
	"time"
)

// Order 代表主機商城中的一筆訂單
// Order represents an order in the host commerce platform
type Order struct {
	ID           uint64    `json:"id"`
	BillingEmail string    `json:"billing_email"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
