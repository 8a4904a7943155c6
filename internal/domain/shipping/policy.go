// internal/domain/shipping/policy.go
package shipping

import (
	"github.com/your-org/storefront-backend/internal/config"
)

// Method represents an available shipping method
type Method struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	EstimatedDays string `json:"estimated_days"`
}

// FlatRatePolicy charges a flat standard rate per shipment, waived once the
// cart subtotal reaches the free shipping threshold. An empty cart ships
// nothing and is never charged.
type FlatRatePolicy struct {
	config *config.Config
}

// NewFlatRatePolicy creates a flat-rate shipping policy from configuration
func NewFlatRatePolicy(cfg *config.Config) *FlatRatePolicy {
	return &FlatRatePolicy{config: cfg}
}

// Quote returns the shipping amount in cents for a cart
func (p *FlatRatePolicy) Quote(totalQuantity int, subtotal int64) int64 {
	if totalQuantity == 0 {
		return 0
	}
	if subtotal >= p.config.Pricing.FreeShippingThreshold {
		return 0
	}
	return p.config.Pricing.StandardShippingRate
}

// Methods returns the shipping methods available for a given subtotal
func (p *FlatRatePolicy) Methods(subtotal int64) []Method {
	standardPrice := p.config.Pricing.StandardShippingRate
	if subtotal >= p.config.Pricing.FreeShippingThreshold {
		standardPrice = 0
	}

	return []Method{
		{
			ID:            "standard",
			Name:          "Standard Shipping",
			Description:   "Delivery in 5-7 business days",
			Price:         standardPrice,
			EstimatedDays: "5-7",
		},
		{
			ID:            "express",
			Name:          "Express Shipping",
			Description:   "Delivery in 1-2 business days",
			Price:         p.config.Pricing.ExpressShippingRate,
			EstimatedDays: "1-2",
		},
	}
}
