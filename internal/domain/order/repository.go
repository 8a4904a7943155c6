// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ErrOrderNotFound is returned when an order does not exist or does not
// belong to the requesting owner.
var ErrOrderNotFound = errors.New("order not found")

// Repository persists orders. CreateWithReservation must atomically create
// the order, its items and the stock reservation; a reservation failure
// rolls back the whole order.
type Repository interface {
	CreateWithReservation(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userID uint, page, limit int) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status, comment string, actor *uint) (*Order, error)
	CancelWithRestock(ctx context.Context, id uint, actor *uint) (*Order, error)
}

// gormRepository is the PostgreSQL-backed order repository
type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWithReservation(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// The order number embeds the database ID, so it can only be
		// assigned after the insert.
		o.OrderNumber = o.GenerateOrderNumber()
		if err := tx.Model(o).UpdateColumn("order_number", o.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to assign order number: %w", err)
		}

		if err := r.reserveStock(tx, o.Items); err != nil {
			return err
		}

		history := OrderStatusHistory{
			OrderID: o.ID,
			Status:  OrderStatusPending,
			Comment: "Order created",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record order status: %w", err)
		}

		return nil
	})
}

// reserveStock decrements product quantities inside the order transaction.
// The WHERE guard makes the decrement conditional on sufficient stock, so
// two concurrent orders cannot both take the last unit.
func (r *gormRepository) reserveStock(tx *gorm.DB, items []OrderItem) error {
	for _, item := range items {
		result := tx.Model(&product.Product{}).
			Where("id = ? AND (track_quantity = ? OR quantity >= ?)", item.ProductID, false, item.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", item.Quantity))

		if result.Error != nil {
			return fmt.Errorf("failed to reserve stock for product %d: %w", item.ProductID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("insufficient stock for product %d", item.ProductID)
		}
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *gormRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory").
		Where("order_number = ?", number).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uint, status, comment string, actor *uint) (*Order, error) {
	var o *Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Order
		if err := tx.First(&cur, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !isValidTransition(cur.Status, status) {
			return fmt.Errorf("cannot transition order from %s to %s", cur.Status, status)
		}

		updates := map[string]interface{}{"status": status}
		if status == OrderStatusConfirmed {
			updates["confirmed_at"] = tx.NowFunc()
		}
		if err := tx.Model(&cur).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := OrderStatusHistory{OrderID: cur.ID, Status: status, Comment: comment, CreatedBy: actor}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record order status: %w", err)
		}

		o = &cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, o.ID)
}

func (r *gormRepository) CancelWithRestock(ctx context.Context, id uint, actor *uint) (*Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Order
		if err := tx.Preload("Items").First(&cur, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !cur.CanBeCancelled() {
			return fmt.Errorf("order %s cannot be cancelled in status %s", cur.OrderNumber, cur.Status)
		}

		updates := map[string]interface{}{
			"status":       OrderStatusCancelled,
			"cancelled_at": tx.NowFunc(),
		}
		if err := tx.Model(&cur).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		for _, item := range cur.Items {
			result := tx.Model(&product.Product{}).
				Where("id = ? AND track_quantity = ?", item.ProductID, true).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to restock product %d: %w", item.ProductID, result.Error)
			}
		}

		history := OrderStatusHistory{OrderID: cur.ID, Status: OrderStatusCancelled, Comment: "Order cancelled", CreatedBy: actor}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record order status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func isValidTransition(from, to string) bool {
	transitions := map[string][]string{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:   {OrderStatusDelivered},
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
