package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			StandardShippingRate:  500,
			ExpressShippingRate:   1500,
			FreeShippingThreshold: 5000,
		},
	}
}

func TestQuoteEmptyCartIsFree(t *testing.T) {
	p := NewFlatRatePolicy(testConfig())

	assert.Equal(t, int64(0), p.Quote(0, 0))
}

func TestQuoteFlatRateBelowThreshold(t *testing.T) {
	p := NewFlatRatePolicy(testConfig())

	assert.Equal(t, int64(500), p.Quote(2, 4999))
}

func TestQuoteFreeAtThreshold(t *testing.T) {
	p := NewFlatRatePolicy(testConfig())

	assert.Equal(t, int64(0), p.Quote(2, 5000))
	assert.Equal(t, int64(0), p.Quote(10, 99999))
}

func TestMethodsReflectThreshold(t *testing.T) {
	p := NewFlatRatePolicy(testConfig())

	below := p.Methods(1000)
	assert.Equal(t, int64(500), below[0].Price)
	assert.Equal(t, int64(1500), below[1].Price)

	above := p.Methods(6000)
	assert.Equal(t, int64(0), above[0].Price)
	// Express is never free.
	assert.Equal(t, int64(1500), above[1].Price)
}
