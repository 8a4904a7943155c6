// internal/domain/inventory/entity.go
package inventory

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NoteType represents the direction of a stock note
type NoteType string

const (
	NoteTypeIngress NoteType = "ingress" // Goods received into stock
	NoteTypeEgress  NoteType = "egress"  // Goods leaving stock outside the order flow
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonPurchase   MovementReason = "purchase"
	ReasonSale       MovementReason = "sale"
	ReasonReturn     MovementReason = "return"
	ReasonDamage     MovementReason = "damage"
	ReasonAdjustment MovementReason = "adjustment"
)

// StockNote is a dated document recording stock entering or leaving the
// store outside the checkout flow: supplier deliveries, returns, damage
// write-offs and manual corrections.
type StockNote struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	NoteNumber string         `gorm:"uniqueIndex;not null;size:32" json:"note_number"`
	Type       NoteType       `gorm:"not null;size:10" json:"type"`
	Reason     MovementReason `gorm:"not null;size:20" json:"reason"`
	Comment    string         `gorm:"size:500" json:"comment"`
	CreatedBy  *uint          `json:"created_by"`

	Lines []StockNoteLine `gorm:"foreignKey:NoteID" json:"lines"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// StockNoteLine is one product line on a stock note. UnitCost is the
// acquisition cost in cents for ingress notes; zero for egress notes.
type StockNoteLine struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	NoteID    uint  `gorm:"not null;index" json:"note_id"`
	ProductID uint  `gorm:"not null;index" json:"product_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	UnitCost  int64 `gorm:"default:0" json:"unit_cost"`

	CreatedAt time.Time `json:"created_at"`
}

// StockMovement is the audit record of a single quantity change on a
// product, whatever triggered it.
type StockMovement struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	Reason           MovementReason `gorm:"not null;size:20" json:"reason"`
	Quantity         int            `gorm:"not null" json:"quantity"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	ReferenceType    string         `gorm:"size:50" json:"reference_type"` // "stock_note", "order"
	ReferenceID      uint           `json:"reference_id"`
	CreatedBy        *uint          `json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName methods for GORM
func (StockNote) TableName() string     { return "stock_notes" }
func (StockNoteLine) TableName() string { return "stock_note_lines" }
func (StockMovement) TableName() string { return "stock_movements" }

// GenerateNoteNumber generates a unique note number
func (n *StockNote) GenerateNoteNumber() string {
	prefix := "ING"
	if n.Type == NoteTypeEgress {
		prefix = "EGR"
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, time.Now().Format("20060102"), n.ID)
}

// Delta returns the signed quantity change a line applies to stock
func (n *StockNote) Delta(line StockNoteLine) int {
	if n.Type == NoteTypeEgress {
		return -line.Quantity
	}
	return line.Quantity
}
