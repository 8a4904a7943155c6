package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableStock(t *testing.T) {
	tracked := &Product{TrackQuantity: true, Quantity: 5}
	assert.Equal(t, 5, tracked.AvailableStock())

	untracked := &Product{TrackQuantity: false, Quantity: 0}
	assert.Greater(t, untracked.AvailableStock(), 1<<30)
	assert.True(t, untracked.IsInStock())
}

func TestIsLowStock(t *testing.T) {
	p := &Product{TrackQuantity: true, Quantity: 3, LowStockThreshold: 5}
	assert.True(t, p.IsLowStock())

	p.Quantity = 6
	assert.False(t, p.IsLowStock())

	p.TrackQuantity = false
	p.Quantity = 0
	assert.False(t, p.IsLowStock())
}

func TestGetDiscountPercentage(t *testing.T) {
	p := &Product{Price: 7500, ComparePrice: 10000}
	assert.Equal(t, 25, p.GetDiscountPercentage())

	p.ComparePrice = 0
	assert.Equal(t, 0, p.GetDiscountPercentage())

	p.ComparePrice = 5000
	assert.Equal(t, 0, p.GetDiscountPercentage())
}
