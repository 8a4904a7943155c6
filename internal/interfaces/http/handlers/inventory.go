// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock note and movement endpoints
type InventoryHandler struct {
	inventory *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inv *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventory: inv}
}

// StockNoteLineRequest is one line of a stock note payload
type StockNoteLineRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
	UnitCost  int64 `json:"unit_cost"`
}

// CreateStockNoteRequest is the stock note creation payload
type CreateStockNoteRequest struct {
	Type    inventory.NoteType       `json:"type" binding:"required,oneof=ingress egress"`
	Reason  inventory.MovementReason `json:"reason" binding:"required"`
	Comment string                   `json:"comment"`
	Lines   []StockNoteLineRequest   `json:"lines" binding:"required,min=1,dive"`
}

// CreateStockNote handles POST /admin/inventory/notes
func (h *InventoryHandler) CreateStockNote(c *gin.Context) {
	var req CreateStockNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	note := &inventory.StockNote{
		Type:    req.Type,
		Reason:  req.Reason,
		Comment: req.Comment,
	}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		note.CreatedBy = &userID
	}
	for _, line := range req.Lines {
		note.Lines = append(note.Lines, inventory.StockNoteLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
		})
	}

	if err := h.inventory.CreateNote(c.Request.Context(), note); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock note recorded",
		"data":    note,
	})
}

// GetStockNotes handles GET /admin/inventory/notes
func (h *InventoryHandler) GetStockNotes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	noteType := inventory.NoteType(c.Query("type"))

	notes, total, err := h.inventory.GetNotes(c.Request.Context(), noteType, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock notes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": notes,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStockNote handles GET /admin/inventory/notes/:id
func (h *InventoryHandler) GetStockNote(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	note, err := h.inventory.GetNote(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, inventory.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

// GetStockMovements handles GET /admin/inventory/movements/:id for a product
func (h *InventoryHandler) GetStockMovements(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	movements, err := h.inventory.GetMovements(c.Request.Context(), productID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock movements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movements})
}
