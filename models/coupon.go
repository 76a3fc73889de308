package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DevWael/google-review-incentive/models/enum"
)

// Coupon 代表為通過驗證的評論點擊所簽發的單次折扣碼
// Coupon represents the single-use discount issued for a validated review click
type Coupon struct {
	ID                uuid.UUID         `json:"id"`
	Code              string            `json:"code"`
	DiscountType      enum.DiscountType `json:"discount_type"`
	Amount            decimal.Decimal   `json:"amount"`
	ExpiresAt         time.Time         `json:"expires_at"`
	EmailRestrictions []string          `json:"email_restrictions"`
	UsageLimit        int               `json:"usage_limit"`
	UsageLimitPerUser int               `json:"usage_limit_per_user"`
	IndividualUse     bool              `json:"individual_use"`
	Description       string            `json:"description"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
