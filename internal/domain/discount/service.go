// internal/domain/discount/service.go
package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
)

// ErrInvalidCode is returned when a coupon code does not exist, is not
// currently redeemable, or the cart subtotal does not meet its minimum.
var ErrInvalidCode = errors.New("invalid discount code")

// Service handles coupon validation and management
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new discount service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ValidateCode validates a coupon code against a cart subtotal and returns
// the discount amount in cents. All failure modes map to ErrInvalidCode so
// callers cannot distinguish an unknown code from an expired one.
func (s *Service) ValidateCode(ctx context.Context, code string, subtotal int64) (int64, error) {
	coupon, err := s.getByCode(ctx, code)
	if err != nil {
		return 0, err
	}

	if !coupon.IsRedeemable(time.Now()) {
		return 0, ErrInvalidCode
	}
	if subtotal < coupon.MinOrderAmount {
		return 0, ErrInvalidCode
	}

	return coupon.AmountFor(subtotal), nil
}

// Redeem marks a coupon as used. Called once per placed order; the usage
// counter is incremented atomically so the limit holds under concurrency.
func (s *Service) Redeem(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Model(&Coupon{}).
		Where("code = ? AND (usage_limit = 0 OR used_count < usage_limit)", normalizeCode(code)).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidCode
	}

	s.invalidateCache(ctx, code)
	return nil
}

// CreateCoupon creates a new coupon
func (s *Service) CreateCoupon(ctx context.Context, coupon *Coupon) error {
	coupon.Code = normalizeCode(coupon.Code)

	if coupon.Type != TypePercentage && coupon.Type != TypeFixedAmount {
		return fmt.Errorf("unknown coupon type: %s", coupon.Type)
	}
	if coupon.Value <= 0 {
		return fmt.Errorf("coupon value must be positive")
	}
	if coupon.Type == TypePercentage && coupon.Value > 100 {
		return fmt.Errorf("percentage coupon value cannot exceed 100")
	}

	if err := s.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// GetCoupons returns all coupons, most recent first
func (s *Service) GetCoupons(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupons: %w", err)
	}
	return coupons, nil
}

// UpdateCoupon updates an existing coupon
func (s *Service) UpdateCoupon(ctx context.Context, coupon *Coupon) error {
	if err := s.db.WithContext(ctx).Save(coupon).Error; err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	s.invalidateCache(ctx, coupon.Code)
	return nil
}

// DeleteCoupon soft deletes a coupon
func (s *Service) DeleteCoupon(ctx context.Context, id uint) error {
	var coupon Coupon
	if err := s.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&coupon).Error; err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	s.invalidateCache(ctx, coupon.Code)
	return nil
}

// getByCode loads a coupon, consulting the Redis cache first. Cache misses
// and Redis failures both fall through to the database.
func (s *Service) getByCode(ctx context.Context, code string) (*Coupon, error) {
	code = normalizeCode(code)
	cacheKey := fmt.Sprintf("coupon:%s", code)

	if s.redisClient != nil {
		var cached Coupon
		if err := s.redisClient.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var coupon Coupon
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}

	if s.redisClient != nil {
		_ = s.redisClient.SetJSON(ctx, cacheKey, &coupon, 10*time.Minute)
	}

	return &coupon, nil
}

func (s *Service) invalidateCache(ctx context.Context, code string) {
	if s.redisClient == nil {
		return
	}
	_ = s.redisClient.Del(ctx, fmt.Sprintf("coupon:%s", normalizeCode(code)))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
