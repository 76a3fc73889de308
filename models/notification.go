package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledNotification is a one-shot coupon email waiting in the delay
// queue until its fire time.
type ScheduledNotification struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	CouponCode string    `json:"coupon_code"`
	FireAt     time.Time `json:"fire_at"`
}
