// internal/domain/cart/errors.go
package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned when a requested quantity is below 1
	// (except for SetQuantity, where 0 removes the line).
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrLineNotFound is returned when a quantity update targets a product
	// that has no line in the cart.
	ErrLineNotFound = errors.New("cart line not found")
)

// InsufficientStockError is returned when a requested quantity, after merging
// with any existing line, exceeds the product's current stock.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// PersistenceError wraps a failure from the cart persistence collaborator.
// When it is returned, the local aggregate was left at its pre-call state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
