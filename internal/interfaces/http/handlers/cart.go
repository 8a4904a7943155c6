// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts    *cart.Service
	store    *cart.DualStore
	shipping *shipping.FlatRatePolicy
	config   *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, store *cart.DualStore, shippingPolicy *shipping.FlatRatePolicy, cfg *config.Config) *CartHandler {
	return &CartHandler{
		carts:    carts,
		store:    store,
		shipping: shippingPolicy,
		config:   cfg,
	}
}

// AddToCartRequest is the add-item payload
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateQuantityRequest is the set-quantity payload
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ApplyDiscountRequest is the apply-discount payload
type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	snapshot, err := h.carts.Get(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

// GetCartTotals handles GET /cart/totals, a lightweight endpoint for badge
// counters and checkout summaries that don't need the full line list.
func (h *CartHandler) GetCartTotals(c *gin.Context) {
	totals, err := h.carts.Totals(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	snapshot, err := h.carts.AddToCart(c.Request.Context(), h.cartKey(c), req.ProductID, req.Quantity)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    snapshot,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	snapshot, err := h.carts.UpdateQuantity(c.Request.Context(), h.cartKey(c), productID, *req.Quantity)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"data":    snapshot,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		return
	}

	snapshot, err := h.carts.RemoveFromCart(c.Request.Context(), h.cartKey(c), productID)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    snapshot,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	snapshot, err := h.carts.ClearCart(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"data":    snapshot,
	})
}

// ApplyDiscount handles POST /cart/discount
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	snapshot, err := h.carts.ApplyDiscount(c.Request.Context(), h.cartKey(c), req.Code)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount applied",
		"data":    snapshot,
	})
}

// RemoveDiscount handles DELETE /cart/discount
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	snapshot, err := h.carts.RemoveDiscount(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount removed",
		"data":    snapshot,
	})
}

// GetShippingMethods handles GET /cart/shipping-methods
func (h *CartHandler) GetShippingMethods(c *gin.Context) {
	snapshot, err := h.carts.Get(c.Request.Context(), h.cartKey(c))
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": h.shipping.Methods(snapshot.Totals.Subtotal),
	})
}

// MergeGuestCart handles POST /cart/merge, called after login to fold the
// guest session cart into the user's cart.
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No guest session to merge"})
		return
	}

	if err := h.store.MergeGuestCart(c.Request.Context(), userID, sessionID); err != nil {
		h.respondCartError(c, err)
		return
	}

	// Both aggregates are stale after the merge.
	userKey := cart.Key{UserID: &userID}
	h.carts.Forget(userKey)
	h.carts.Forget(cart.Key{SessionID: sessionID})

	snapshot, err := h.carts.Get(c.Request.Context(), userKey)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged",
		"data":    snapshot,
	})
}

// cartKey derives the cart identity for the request: the user ID when
// authenticated, otherwise the guest session cookie.
func (h *CartHandler) cartKey(c *gin.Context) cart.Key {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.Key{UserID: &userID}
	}
	return cart.Key{SessionID: h.getOrCreateSessionID(c)}
}

// getOrCreateSessionID gets the session ID from the cookie or creates one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		maxAge := int(h.config.Pricing.GuestCartTTL.Seconds())
		c.SetCookie("session_id", sessionID, maxAge, "/", "", false, true)
	}
	return sessionID
}

// respondCartError maps domain errors to HTTP responses. Stock conflicts
// carry the product ID and quantities so clients can render a precise
// message.
func (h *CartHandler) respondCartError(c *gin.Context, err error) {
	var stockErr *cart.InsufficientStockError
	var persistErr *cart.PersistenceError

	switch {
	case errors.Is(err, product.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
	case errors.Is(err, discount.ErrInvalidCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid discount code"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &persistErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cart storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart operation failed"})
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return uint(id), true
}
