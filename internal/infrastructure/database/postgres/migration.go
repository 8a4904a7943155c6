// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{db: db, logger: logger}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	// Dependency order: referenced tables first
	models := []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},

		&cart.CartItem{},

		&discount.Coupon{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&inventory.StockNote{},
		&inventory.StockNoteLine{},
		&inventory.StockMovement{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := m.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	m.logger.Info("Database migrations completed")
	return nil
}

// createIndexes adds indexes GORM tags cannot express
func (m *Migration) createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}

	return nil
}

// SeedData inserts development fixtures. Safe to run repeatedly; existing
// rows are left alone.
func (m *Migration) SeedData() error {
	m.logger.Info("Seeding development data")

	if err := m.seedAdminUser(); err != nil {
		return err
	}
	if err := m.seedCatalog(); err != nil {
		return err
	}
	if err := m.seedCoupons(); err != nil {
		return err
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	var count int64
	m.db.Model(&user.User{}).Where("email = ?", "admin@storefront.local").Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.User{
		Email:     "admin@storefront.local",
		Password:  string(hashed),
		FirstName: "Store",
		LastName:  "Admin",
		IsActive:  true,
		IsAdmin:   true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}

func (m *Migration) seedCatalog() error {
	var count int64
	m.db.Model(&product.Category{}).Count(&count)
	if count > 0 {
		return nil
	}

	categories := []product.Category{
		{Name: "Beverages", Slug: "beverages", IsActive: true},
		{Name: "Snacks", Slug: "snacks", IsActive: true},
		{Name: "Household", Slug: "household", IsActive: true},
	}
	if err := m.db.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	products := []product.Product{
		{
			SKU:           "BEV-001",
			Name:          "Sparkling Water 500ml",
			Slug:          "sparkling-water-500ml",
			Price:         2000,
			CategoryID:    categories[0].ID,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      120,
		},
		{
			SKU:           "SNK-001",
			Name:          "Salted Almonds 200g",
			Slug:          "salted-almonds-200g",
			Price:         1500,
			CategoryID:    categories[1].ID,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      60,
		},
		{
			SKU:           "HOU-001",
			Name:          "Dish Soap 1L",
			Slug:          "dish-soap-1l",
			Price:         899,
			CategoryID:    categories[2].ID,
			IsActive:      true,
			TrackQuantity: false,
		},
	}
	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}

func (m *Migration) seedCoupons() error {
	var count int64
	m.db.Model(&discount.Coupon{}).Count(&count)
	if count > 0 {
		return nil
	}

	coupons := []discount.Coupon{
		{
			Code:              "SAVE10",
			Description:       "10% off orders over $20",
			Type:              discount.TypePercentage,
			Value:             10,
			MinOrderAmount:    2000,
			MaxDiscountAmount: 5000,
			IsActive:          true,
		},
		{
			Code:           "FLAT500",
			Description:    "$5 off orders over $30",
			Type:           discount.TypeFixedAmount,
			Value:          500,
			MinOrderAmount: 3000,
			IsActive:       true,
		},
	}
	if err := m.db.Create(&coupons).Error; err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	return nil
}
