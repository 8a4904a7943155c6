// internal/interfaces/http/handlers/discount.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/discount"
)

// DiscountHandler handles coupon administration endpoints
type DiscountHandler struct {
	discounts *discount.Service
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discounts *discount.Service) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// CreateCoupon handles POST /admin/coupons
func (h *DiscountHandler) CreateCoupon(c *gin.Context) {
	var coupon discount.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.discounts.CreateCoupon(c.Request.Context(), &coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created",
		"data":    coupon,
	})
}

// GetCoupons handles GET /admin/coupons
func (h *DiscountHandler) GetCoupons(c *gin.Context) {
	coupons, err := h.discounts.GetCoupons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve coupons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": coupons})
}

// UpdateCoupon handles PUT /admin/coupons/:id
func (h *DiscountHandler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var coupon discount.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	coupon.ID = id

	if err := h.discounts.UpdateCoupon(c.Request.Context(), &coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated",
		"data":    coupon,
	})
}

// DeleteCoupon handles DELETE /admin/coupons/:id
func (h *DiscountHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.discounts.DeleteCoupon(c.Request.Context(), id); err != nil {
		if errors.Is(err, discount.ErrInvalidCode) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}
