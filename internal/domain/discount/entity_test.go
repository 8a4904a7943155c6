package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAmountForPercentage(t *testing.T) {
	c := &Coupon{Type: TypePercentage, Value: 10}

	assert.Equal(t, int64(550), c.AmountFor(5500))
}

func TestAmountForPercentageCapped(t *testing.T) {
	c := &Coupon{Type: TypePercentage, Value: 20, MaxDiscountAmount: 500}

	assert.Equal(t, int64(500), c.AmountFor(10000))
}

func TestAmountForFixed(t *testing.T) {
	c := &Coupon{Type: TypeFixedAmount, Value: 500}

	assert.Equal(t, int64(500), c.AmountFor(3000))
	assert.Equal(t, int64(500), c.AmountFor(100000))
}

func TestIsRedeemable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{"active no window", Coupon{IsActive: true}, true},
		{"inactive", Coupon{IsActive: false}, false},
		{"not started", Coupon{IsActive: true, StartsAt: &future}, false},
		{"started", Coupon{IsActive: true, StartsAt: &past}, true},
		{"expired", Coupon{IsActive: true, ExpiresAt: &past}, false},
		{"not yet expired", Coupon{IsActive: true, ExpiresAt: &future}, true},
		{"usage exhausted", Coupon{IsActive: true, UsageLimit: 5, UsedCount: 5}, false},
		{"usage remaining", Coupon{IsActive: true, UsageLimit: 5, UsedCount: 4}, true},
		{"unlimited usage", Coupon{IsActive: true, UsageLimit: 0, UsedCount: 1000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.IsRedeemable(now))
		})
	}
}
