// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

// ErrEmptyCart is returned when order placement is attempted on an empty
// cart. No repository call is made in that case.
var ErrEmptyCart = errors.New("cannot place an order from an empty cart")

// CreationError wraps a repository failure during order placement. The cart
// is left untouched when placement fails.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// CartProvider is the slice of the cart service the order flow needs
type CartProvider interface {
	Get(ctx context.Context, key cart.Key) (*cart.Cart, error)
	ClearCart(ctx context.Context, key cart.Key) (*cart.Cart, error)
}

// CouponRedeemer consumes a coupon usage when an order is placed
type CouponRedeemer interface {
	Redeem(ctx context.Context, code string) error
}

// Service materializes carts into orders
type Service struct {
	repo    Repository
	carts   CartProvider
	coupons CouponRedeemer
	config  *config.Config
	logger  *logrus.Logger
}

// NewService creates a new order service
func NewService(repo Repository, carts CartProvider, coupons CouponRedeemer, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		repo:    repo,
		carts:   carts,
		coupons: coupons,
		config:  cfg,
		logger:  logger,
	}
}

// PlaceOrder materializes the cart into an order. The order snapshots the
// cart's lines and derived totals at placement time. On success the cart is
// cleared; on failure it is left exactly as it was.
func (s *Service) PlaceOrder(ctx context.Context, key cart.Key, notes string) (*Order, error) {
	c, err := s.carts.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o := s.buildOrder(c, key, notes)

	if err := s.repo.CreateWithReservation(ctx, o); err != nil {
		return nil, &CreationError{Err: err}
	}

	if o.DiscountCode != "" && s.coupons != nil {
		// Redemption failure is not worth failing a placed order over;
		// the discount was validated when it was applied.
		if err := s.coupons.Redeem(ctx, o.DiscountCode); err != nil {
			s.logger.WithError(err).WithField("code", o.DiscountCode).
				Warn("Failed to redeem coupon for placed order")
		}
	}

	if _, err := s.carts.ClearCart(ctx, key); err != nil {
		// The order exists; a stale cart is recoverable on next sync.
		s.logger.WithError(err).WithField("order", o.OrderNumber).
			Warn("Failed to clear cart after order placement")
	}

	s.logger.WithFields(logrus.Fields{
		"order":    o.OrderNumber,
		"cart":     key.String(),
		"total":    o.TotalAmount,
		"quantity": o.TotalQuantity,
	}).Info("Order placed")

	return o, nil
}

// GetOrder returns an order by ID, scoped to its owner
func (s *Service) GetOrder(ctx context.Context, id uint, userID uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetOrderByNumber returns an order by its public order number
func (s *Service) GetOrderByNumber(ctx context.Context, number string, userID uint) (*Order, error) {
	o, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListOrders returns a page of the user's orders, most recent first
func (s *Service) ListOrders(ctx context.Context, userID uint, page, limit int) ([]Order, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

// ConfirmOrder moves a pending order to confirmed
func (s *Service) ConfirmOrder(ctx context.Context, id uint, actor *uint) (*Order, error) {
	return s.repo.UpdateStatus(ctx, id, OrderStatusConfirmed, "Order confirmed", actor)
}

// UpdateOrderStatus applies an explicit status transition
func (s *Service) UpdateOrderStatus(ctx context.Context, id uint, status, comment string, actor *uint) (*Order, error) {
	return s.repo.UpdateStatus(ctx, id, status, comment, actor)
}

// CancelOrder cancels an order and restores reserved stock
func (s *Service) CancelOrder(ctx context.Context, id uint, userID uint) (*Order, error) {
	o, err := s.GetOrder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.CancelWithRestock(ctx, o.ID, &userID)
}

func (s *Service) buildOrder(c *cart.Cart, key cart.Key, notes string) *Order {
	o := &Order{
		UserID:         key.UserID,
		SessionID:      key.SessionID,
		Status:         OrderStatusPending,
		Currency:       s.config.Pricing.Currency,
		ItemCount:      c.Totals.ItemCount,
		TotalQuantity:  c.Totals.TotalQuantity,
		SubtotalAmount: c.Totals.Subtotal,
		DiscountCode:   c.DiscountCode,
		DiscountAmount: c.Totals.DiscountAmount,
		TaxAmount:      c.Totals.TaxAmount,
		ShippingAmount: c.Totals.ShippingAmount,
		TotalAmount:    c.Totals.Total,
		Notes:          notes,
	}

	for _, line := range c.Lines {
		o.Items = append(o.Items, OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.Subtotal(),
		})
	}

	return o
}
