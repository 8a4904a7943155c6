// internal/domain/discount/entity.go
package discount

import (
	"time"

	"gorm.io/gorm"
)

// Coupon discount types
const (
	TypePercentage  = "percentage"
	TypeFixedAmount = "fixed_amount"
)

// Coupon represents a discount coupon
type Coupon struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Description string `json:"description" gorm:"size:255"`

	// Type is either percentage or fixed_amount. For percentage coupons
	// Value is the percentage (10 = 10%); for fixed_amount coupons Value
	// is the discount in cents.
	Type  string  `json:"type" gorm:"not null;size:20"`
	Value float64 `json:"value" gorm:"not null"`

	// MinOrderAmount is the minimum cart subtotal in cents required for
	// the coupon to apply. MaxDiscountAmount caps percentage discounts;
	// zero means no cap.
	MinOrderAmount    int64 `json:"min_order_amount" gorm:"default:0"`
	MaxDiscountAmount int64 `json:"max_discount_amount" gorm:"default:0"`

	UsageLimit int  `json:"usage_limit" gorm:"default:0"`
	UsedCount  int  `json:"used_count" gorm:"default:0"`
	IsActive   bool `json:"is_active" gorm:"default:true"`

	StartsAt  *time.Time `json:"starts_at"`
	ExpiresAt *time.Time `json:"expires_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsRedeemable reports whether the coupon can currently be redeemed
func (c *Coupon) IsRedeemable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// AmountFor computes the discount amount in cents for a given subtotal.
// The caller is expected to have checked MinOrderAmount already.
func (c *Coupon) AmountFor(subtotal int64) int64 {
	if c.Type == TypePercentage {
		amount := int64(float64(subtotal) * c.Value / 100)
		if c.MaxDiscountAmount > 0 && amount > c.MaxDiscountAmount {
			amount = c.MaxDiscountAmount
		}
		return amount
	}
	return int64(c.Value)
}
