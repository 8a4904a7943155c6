// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order represents a placed order. Line and total amounts are snapshots of
// the cart at placement time; later catalog price changes never affect a
// placed order.
type Order struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrderNumber string `json:"order_number" gorm:"uniqueIndex;not null;size:32"`
	UserID      *uint  `json:"user_id" gorm:"index"`
	SessionID   string `json:"-" gorm:"size:64;index"`
	Status      string `json:"status" gorm:"not null;default:'pending';size:20"`
	Currency    string `json:"currency" gorm:"not null;size:3"`

	ItemCount     int `json:"item_count" gorm:"not null"`
	TotalQuantity int `json:"total_quantity" gorm:"not null"`

	SubtotalAmount int64  `json:"subtotal_amount" gorm:"not null"`
	DiscountCode   string `json:"discount_code,omitempty" gorm:"size:50"`
	DiscountAmount int64  `json:"discount_amount" gorm:"default:0"`
	TaxAmount      int64  `json:"tax_amount" gorm:"default:0"`
	ShippingAmount int64  `json:"shipping_amount" gorm:"default:0"`
	TotalAmount    int64  `json:"total_amount" gorm:"not null"`

	Notes string `json:"notes,omitempty" gorm:"size:500"`

	Items         []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`

	ConfirmedAt *time.Time     `json:"confirmed_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderItem represents a line on a placed order
type OrderItem struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	OrderID   uint  `json:"order_id" gorm:"not null;index"`
	ProductID uint  `json:"product_id" gorm:"not null"`

	Name       string `json:"name" gorm:"not null;size:255"`
	SKU        string `json:"sku" gorm:"size:100"`
	Quantity   int    `json:"quantity" gorm:"not null"`
	UnitPrice  int64  `json:"unit_price" gorm:"not null"`
	TotalPrice int64  `json:"total_price" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	Status    string    `json:"status" gorm:"not null;size:20"`
	Comment   string    `json:"comment" gorm:"size:500"`
	CreatedBy *uint     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName methods for GORM
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// Business methods for Order

// GenerateOrderNumber generates a unique order number
func (o *Order) GenerateOrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), o.ID)
}

// GetFormattedTotal returns total amount as float
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CanBeCancelled reports whether the order may still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// AddStatusHistory appends a status change record
func (o *Order) AddStatusHistory(status, comment string, createdBy *uint) {
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
	})
}
