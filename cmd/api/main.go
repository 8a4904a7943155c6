// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	logger.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting storefront backend")

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), logger)
	if err := migration.RunAutoMigrations(); err != nil {
		logger.Fatalf("Database migration failed: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedData(); err != nil {
			logger.Warnf("Data seeding failed: %v", err)
		}
	}

	// Wire services explicitly; every dependency is visible here.
	gormDB := db.GetDB()
	rawRedis := redisClient.GetClient()

	products := product.NewService(gormDB, cfg)
	discounts := discount.NewService(gormDB, redisClient, cfg)
	shippingPolicy := shipping.NewFlatRatePolicy(cfg)

	pricing := cart.Pricing{
		TaxRate:  cfg.Pricing.TaxRate,
		Shipping: shippingPolicy,
	}
	cartStore := cart.NewDualStore(gormDB, rawRedis, cfg.Pricing.GuestCartTTL)
	carts := cart.NewService(cartStore, products, discounts, pricing, cfg.Pricing.GuestCartTTL)

	orderRepo := order.NewRepository(gormDB)
	orders := order.NewService(orderRepo, carts, discounts, cfg, logger)

	users := user.NewService(gormDB, cfg)
	stock := inventory.NewService(gormDB, logger)

	h := &routes.Handlers{
		Auth:      handlers.NewAuthHandler(users, logger),
		Users:     handlers.NewUserProfileHandler(users),
		Products:  handlers.NewProductHandler(products),
		Cart:      handlers.NewCartHandler(carts, cartStore, shippingPolicy, cfg),
		Orders:    handlers.NewOrderHandler(orders),
		Discounts: handlers.NewDiscountHandler(discounts),
		Inventory: handlers.NewInventoryHandler(stock),
	}

	server := http.NewServer(cfg, gormDB, rawRedis, h, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
