// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"math"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Key identifies the owner of a cart: an authenticated user or a guest
// session. At most one cart exists per key.
type Key struct {
	UserID    *uint
	SessionID string
}

// IsGuest reports whether the cart belongs to an anonymous session
func (k Key) IsGuest() bool {
	return k.UserID == nil
}

func (k Key) String() string {
	if k.UserID != nil {
		return fmt.Sprintf("user:%d", *k.UserID)
	}
	return fmt.Sprintf("session:%s", k.SessionID)
}

// Line represents one product line in a cart. UnitPrice is a snapshot taken
// when the product was first added; it is not refreshed when the catalog
// price changes.
type Line struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"` // in cents
	AddedAt   time.Time `json:"added_at"`
}

// Subtotal is always derived from quantity and unit price, never stored.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Totals represents the derived cart totals
type Totals struct {
	ItemCount      int   `json:"item_count"`     // Number of unique lines
	TotalQuantity  int   `json:"total_quantity"` // Sum of all quantities
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	ShippingAmount int64 `json:"shipping_amount"`
	Total          int64 `json:"total"`
}

// ShippingPolicy quotes a shipping cost for a cart's contents
type ShippingPolicy interface {
	Quote(totalQuantity int, subtotal int64) int64
}

// Pricing carries the external pricing inputs the aggregate needs to derive
// its totals.
type Pricing struct {
	TaxRate  float64
	Shipping ShippingPolicy
}

// Cart is the aggregate: an ordered set of lines, unique by product, plus a
// cart-level discount and eagerly computed totals. Every mutating method
// recomputes Totals before returning, so the aggregate is never observed in
// an inconsistent state.
type Cart struct {
	Key          Key       `json:"-"`
	Lines        []Line    `json:"lines"`
	DiscountCode string    `json:"discount_code,omitempty"`
	Totals       Totals    `json:"totals"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	pricing        Pricing
	discountAmount int64
}

// New creates an empty cart for the given owner
func New(key Key, pricing Pricing) *Cart {
	now := time.Now().UTC()
	c := &Cart{
		Key:       key,
		Lines:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
		pricing:   pricing,
	}
	c.recalculate()
	return c
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for a product, if present
func (c *Cart) Line(productID uint) (*Line, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// AddLine adds quantity of a product to the cart. If a line for the product
// already exists its quantity is increased; the stock check applies to the
// merged quantity, not the delta. The unit price of an existing line is kept.
func (c *Cart) AddLine(p *product.Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("product %d: %w", p.ID, ErrInvalidQuantity)
	}

	merged := quantity
	if line, ok := c.Line(p.ID); ok {
		merged += line.Quantity
	}

	if merged > p.AvailableStock() {
		return &InsufficientStockError{
			ProductID: p.ID,
			Requested: merged,
			Available: p.AvailableStock(),
		}
	}

	if line, ok := c.Line(p.ID); ok {
		line.Quantity = merged
	} else {
		c.Lines = append(c.Lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  quantity,
			UnitPrice: p.Price,
			AddedAt:   time.Now().UTC(),
		})
	}

	c.touch()
	return nil
}

// SetQuantity sets the absolute quantity of an existing line. A quantity of
// zero removes the line.
func (c *Cart) SetQuantity(p *product.Product, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("product %d: %w", p.ID, ErrInvalidQuantity)
	}

	line, ok := c.Line(p.ID)
	if !ok {
		return fmt.Errorf("product %d: %w", p.ID, ErrLineNotFound)
	}

	if quantity == 0 {
		c.RemoveLine(p.ID)
		return nil
	}

	if quantity > p.AvailableStock() {
		return &InsufficientStockError{
			ProductID: p.ID,
			Requested: quantity,
			Available: p.AvailableStock(),
		}
	}

	line.Quantity = quantity
	c.touch()
	return nil
}

// RemoveLine removes the line for a product. Removing an absent line is a
// no-op, not an error.
func (c *Cart) RemoveLine(productID uint) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return
		}
	}
}

// ApplyDiscount records a validated discount. The amount is clamped to the
// subtotal so the grand total can never go negative.
func (c *Cart) ApplyDiscount(code string, amount int64) {
	c.DiscountCode = code
	c.discountAmount = amount
	c.touch()
}

// RemoveDiscount clears any applied discount
func (c *Cart) RemoveDiscount() {
	c.DiscountCode = ""
	c.discountAmount = 0
	c.touch()
}

// Clear removes all lines and resets the discount
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.DiscountCode = ""
	c.discountAmount = 0
	c.touch()
}

// Clone returns a deep copy of the cart. The mutation service validates
// operations on a clone so a rejected operation leaves the original intact.
func (c *Cart) Clone() *Cart {
	dup := *c
	dup.Lines = make([]Line, len(c.Lines))
	copy(dup.Lines, c.Lines)
	return &dup
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
	c.recalculate()
}

// recalculate derives every total from the lines. An empty cart has all
// totals at zero and carries no discount.
func (c *Cart) recalculate() {
	var t Totals
	t.ItemCount = len(c.Lines)
	for _, line := range c.Lines {
		t.TotalQuantity += line.Quantity
		t.Subtotal += line.Subtotal()
	}

	if t.ItemCount == 0 {
		c.DiscountCode = ""
		c.discountAmount = 0
		c.Totals = t
		return
	}

	if c.discountAmount > t.Subtotal {
		c.discountAmount = t.Subtotal
	}
	t.DiscountAmount = c.discountAmount
	t.TaxAmount = int64(math.Round(float64(t.Subtotal) * c.pricing.TaxRate))
	if c.pricing.Shipping != nil {
		t.ShippingAmount = c.pricing.Shipping.Quote(t.TotalQuantity, t.Subtotal)
	}
	t.Total = t.Subtotal - t.DiscountAmount + t.TaxAmount + t.ShippingAmount

	c.Totals = t
}
