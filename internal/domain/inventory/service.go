// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ErrNoteNotFound is returned when a stock note does not exist
var ErrNoteNotFound = errors.New("stock note not found")

// Service records stock notes and keeps product quantities and the
// movement audit trail consistent with them.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CreateNote persists a stock note and applies its lines to product stock
// in one transaction. An egress line that would drive stock negative fails
// the whole note.
func (s *Service) CreateNote(ctx context.Context, note *StockNote) error {
	if len(note.Lines) == 0 {
		return fmt.Errorf("stock note requires at least one line")
	}
	for _, line := range note.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("stock note line quantity must be positive")
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("failed to create stock note: %w", err)
		}

		note.NoteNumber = note.GenerateNoteNumber()
		if err := tx.Model(note).UpdateColumn("note_number", note.NoteNumber).Error; err != nil {
			return fmt.Errorf("failed to assign note number: %w", err)
		}

		for _, line := range note.Lines {
			if err := s.applyLine(tx, note, line); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"note":  note.NoteNumber,
		"type":  note.Type,
		"lines": len(note.Lines),
	}).Info("Stock note recorded")

	return nil
}

// applyLine adjusts one product's stock and writes the movement record.
// The row is locked for the duration so previous/new quantities in the
// audit trail are exact.
func (s *Service) applyLine(tx *gorm.DB, note *StockNote, line StockNoteLine) error {
	var p product.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, line.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product.ErrNotFound
		}
		return fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
	}

	delta := note.Delta(line)
	newQuantity := p.Quantity + delta
	if p.TrackQuantity && newQuantity < 0 {
		return fmt.Errorf("stock note would drive product %d stock negative (%d available, %d requested)",
			p.ID, p.Quantity, line.Quantity)
	}

	if err := tx.Model(&p).UpdateColumn("quantity", newQuantity).Error; err != nil {
		return fmt.Errorf("failed to adjust stock for product %d: %w", p.ID, err)
	}

	movement := StockMovement{
		ProductID:        p.ID,
		Reason:           note.Reason,
		Quantity:         delta,
		PreviousQuantity: p.Quantity,
		NewQuantity:      newQuantity,
		ReferenceType:    "stock_note",
		ReferenceID:      note.ID,
		CreatedBy:        note.CreatedBy,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}

// GetNote returns a stock note with its lines
func (s *Service) GetNote(ctx context.Context, id uint) (*StockNote, error) {
	var note StockNote
	err := s.db.WithContext(ctx).Preload("Lines").First(&note, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get stock note: %w", err)
	}
	return &note, nil
}

// GetNotes returns a page of stock notes, most recent first
func (s *Service) GetNotes(ctx context.Context, noteType NoteType, page, limit int) ([]StockNote, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&StockNote{})
	if noteType != "" {
		query = query.Where("type = ?", noteType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock notes: %w", err)
	}

	var notes []StockNote
	err := query.
		Preload("Lines").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock notes: %w", err)
	}

	return notes, total, nil
}

// GetMovements returns the movement history for a product, most recent first
func (s *Service) GetMovements(ctx context.Context, productID uint, limit int) ([]StockMovement, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var movements []StockMovement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return movements, nil
}
