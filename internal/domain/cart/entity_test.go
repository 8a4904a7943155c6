package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

type flatShipping struct {
	rate          int64
	freeThreshold int64
}

func (f flatShipping) Quote(totalQuantity int, subtotal int64) int64 {
	if totalQuantity == 0 {
		return 0
	}
	if f.freeThreshold > 0 && subtotal >= f.freeThreshold {
		return 0
	}
	return f.rate
}

func testPricing() Pricing {
	return Pricing{TaxRate: 0.10, Shipping: flatShipping{rate: 500}}
}

func testProduct(id uint, price int64, stock int) *product.Product {
	return &product.Product{
		ID:            id,
		Name:          "Test Product",
		Price:         price,
		TrackQuantity: true,
		Quantity:      stock,
	}
}

func guestKey() Key {
	return Key{SessionID: "test-session"}
}

func TestNewCartIsEmptyWithZeroTotals(t *testing.T) {
	c := New(guestKey(), testPricing())

	assert.True(t, c.IsEmpty())
	assert.Equal(t, Totals{}, c.Totals)
}

func TestAddLineComputesTotals(t *testing.T) {
	c := New(guestKey(), testPricing())

	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 2))
	require.NoError(t, c.AddLine(testProduct(2, 1500, 10), 1))

	assert.Equal(t, 2, c.Totals.ItemCount)
	assert.Equal(t, 3, c.Totals.TotalQuantity)
	assert.Equal(t, int64(5500), c.Totals.Subtotal)
	assert.Equal(t, int64(550), c.Totals.TaxAmount)
	assert.Equal(t, int64(500), c.Totals.ShippingAmount)
	assert.Equal(t, int64(6550), c.Totals.Total)
}

func TestAddLineMergesExistingLine(t *testing.T) {
	c := New(guestKey(), testPricing())
	p := testProduct(1, 2000, 10)

	require.NoError(t, c.AddLine(p, 2))
	require.NoError(t, c.AddLine(p, 3))

	assert.Equal(t, 1, c.Totals.ItemCount)
	line, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
}

func TestAddLineKeepsOriginalUnitPriceOnMerge(t *testing.T) {
	c := New(guestKey(), testPricing())

	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 1))

	// Catalog price changed between the two adds.
	require.NoError(t, c.AddLine(testProduct(1, 9999, 10), 1))

	line, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, int64(2000), line.UnitPrice)
	assert.Equal(t, int64(4000), line.Subtotal())
}

func TestAddLineRejectsInvalidQuantity(t *testing.T) {
	c := New(guestKey(), testPricing())

	err := c.AddLine(testProduct(1, 2000, 10), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = c.AddLine(testProduct(1, 2000, 10), -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestAddLineStockCheckUsesMergedQuantity(t *testing.T) {
	c := New(guestKey(), testPricing())
	p := testProduct(1, 2000, 5)

	require.NoError(t, c.AddLine(p, 3))

	err := c.AddLine(p, 3)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, uint(1), stockErr.ProductID)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	// The failed add left the cart unchanged.
	line, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, int64(6000), c.Totals.Subtotal)
}

func TestAddLineUntrackedProductIgnoresStock(t *testing.T) {
	c := New(guestKey(), testPricing())
	p := testProduct(1, 2000, 0)
	p.TrackQuantity = false

	assert.NoError(t, c.AddLine(p, 100))
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	p := testProduct(1, 2000, 10)

	a := New(guestKey(), testPricing())
	require.NoError(t, a.AddLine(p, 2))
	require.NoError(t, a.SetQuantity(p, 0))

	b := New(guestKey(), testPricing())
	require.NoError(t, b.AddLine(p, 2))
	b.RemoveLine(1)

	assert.True(t, a.IsEmpty())
	assert.Equal(t, a.Totals, b.Totals)
}

func TestSetQuantityUnknownLine(t *testing.T) {
	c := New(guestKey(), testPricing())

	err := c.SetQuantity(testProduct(1, 2000, 10), 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveLineAbsentIsNoOp(t *testing.T) {
	c := New(guestKey(), testPricing())
	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 2))
	before := c.Totals

	c.RemoveLine(42)

	assert.Equal(t, before, c.Totals)
}

func TestApplyDiscountAdjustsTotal(t *testing.T) {
	c := New(guestKey(), testPricing())
	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 2))
	require.NoError(t, c.AddLine(testProduct(2, 1500, 10), 1))

	c.ApplyDiscount("SAVE10", 1000)

	assert.Equal(t, int64(1000), c.Totals.DiscountAmount)
	// Tax applies to the pre-discount subtotal.
	assert.Equal(t, int64(550), c.Totals.TaxAmount)
	assert.Equal(t, int64(5550), c.Totals.Total)
}

func TestTaxRoundsToNearestCent(t *testing.T) {
	c := New(guestKey(), testPricing())
	require.NoError(t, c.AddLine(testProduct(1, 2999, 10), 1))

	// 2999 * 0.10 = 299.9; truncation would lose a cent.
	assert.Equal(t, int64(300), c.Totals.TaxAmount)
	assert.Equal(t, int64(3799), c.Totals.Total)
}

func TestDiscountClampedToSubtotal(t *testing.T) {
	c := New(guestKey(), testPricing())
	require.NoError(t, c.AddLine(testProduct(1, 1000, 10), 1))

	c.ApplyDiscount("BIG", 5000)

	assert.Equal(t, int64(1000), c.Totals.DiscountAmount)
	assert.GreaterOrEqual(t, c.Totals.Total, int64(0))
}

func TestClearResetsEverything(t *testing.T) {
	c := New(guestKey(), testPricing())
	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 2))
	c.ApplyDiscount("SAVE10", 500)

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.DiscountCode)
	assert.Equal(t, Totals{}, c.Totals)
}

func TestEmptyingCartDropsDiscount(t *testing.T) {
	c := New(guestKey(), testPricing())
	p := testProduct(1, 2000, 10)
	require.NoError(t, c.AddLine(p, 1))
	c.ApplyDiscount("SAVE10", 500)

	c.RemoveLine(1)

	assert.Empty(t, c.DiscountCode)
	assert.Equal(t, Totals{}, c.Totals)
}

func TestFreeShippingThreshold(t *testing.T) {
	pricing := Pricing{TaxRate: 0.10, Shipping: flatShipping{rate: 500, freeThreshold: 5000}}
	c := New(guestKey(), pricing)

	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 2))
	assert.Equal(t, int64(500), c.Totals.ShippingAmount)

	require.NoError(t, c.AddLine(testProduct(2, 1500, 10), 1))
	assert.Equal(t, int64(0), c.Totals.ShippingAmount)
}

func TestCloneIsIndependent(t *testing.T) {
	c := New(guestKey(), testPricing())
	require.NoError(t, c.AddLine(testProduct(1, 2000, 10), 2))

	dup := c.Clone()
	require.NoError(t, dup.AddLine(testProduct(2, 1500, 10), 1))

	assert.Equal(t, 1, c.Totals.ItemCount)
	assert.Equal(t, 2, dup.Totals.ItemCount)
}
