// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Handlers bundles the wired-up HTTP handlers for route registration
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserProfileHandler
	Products  *handlers.ProductHandler
	Cart      *handlers.CartHandler
	Orders    *handlers.OrderHandler
	Discounts *handlers.DiscountHandler
	Inventory *handlers.InventoryHandler
}

// SetupRoutes registers all API routes
func SetupRoutes(rg *gin.RouterGroup, cfg *config.Config, h *Handlers) {
	// Authentication
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// Public catalog
	products := rg.Group("/products")
	{
		products.GET("", h.Products.GetProducts)
		products.GET("/slug/:slug", h.Products.GetProductBySlug)
		products.GET("/:id", h.Products.GetProduct)
	}
	rg.GET("/categories", h.Products.GetCategories)

	// Cart works for guests and authenticated users alike
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", h.Cart.GetCart)
		cart.GET("/totals", h.Cart.GetCartTotals)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:id", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:id", h.Cart.RemoveFromCart)
		cart.POST("/discount", h.Cart.ApplyDiscount)
		cart.DELETE("/discount", h.Cart.RemoveDiscount)
		cart.GET("/shipping-methods", h.Cart.GetShippingMethods)
	}
	rg.POST("/cart/merge", middleware.AuthMiddleware(cfg), h.Cart.MergeGuestCart)

	// Orders require an account
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", h.Orders.PlaceOrder)
		orders.GET("", h.Orders.GetOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.GET("/number/:number", h.Orders.GetOrderByNumber)
		orders.POST("/:id/cancel", h.Orders.CancelOrder)
	}

	// Profile
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/me", h.Users.GetProfile)
		users.PUT("/me", h.Users.UpdateProfile)
		users.PUT("/me/password", h.Users.ChangePassword)
	}

	// Administration
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("/products", h.Products.CreateProduct)
		admin.PUT("/products/:id", h.Products.UpdateProduct)
		admin.DELETE("/products/:id", h.Products.DeleteProduct)
		admin.POST("/categories", h.Products.CreateCategory)

		admin.POST("/coupons", h.Discounts.CreateCoupon)
		admin.GET("/coupons", h.Discounts.GetCoupons)
		admin.PUT("/coupons/:id", h.Discounts.UpdateCoupon)
		admin.DELETE("/coupons/:id", h.Discounts.DeleteCoupon)

		admin.PUT("/orders/:id/status", h.Orders.UpdateOrderStatus)

		admin.POST("/inventory/notes", h.Inventory.CreateStockNote)
		admin.GET("/inventory/notes", h.Inventory.GetStockNotes)
		admin.GET("/inventory/notes/:id", h.Inventory.GetStockNote)
		admin.GET("/inventory/movements/:id", h.Inventory.GetStockMovements)
	}
}
