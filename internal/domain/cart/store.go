// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Store is the cart persistence collaborator. Every mutation returns the
// server's authoritative line set, which callers must adopt in full.
type Store interface {
	Fetch(ctx context.Context, key Key) ([]Line, error)
	AddItem(ctx context.Context, key Key, item Line) ([]Line, error)
	UpdateItemQuantity(ctx context.Context, key Key, productID uint, quantity int) ([]Line, error)
	RemoveItem(ctx context.Context, key Key, productID uint) ([]Line, error)
	Clear(ctx context.Context, key Key) ([]Line, error)
}

// CartItem represents a cart line stored in the database for authenticated
// users
type CartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Name      string         `gorm:"size:255" json:"name"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	Price     int64          `gorm:"not null" json:"price"` // Price at time of adding
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// sessionCart is the Redis representation of a guest cart
type sessionCart struct {
	SessionID string    `json:"session_id"`
	Items     []Line    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DualStore persists user carts as database rows and guest carts as JSON
// blobs in Redis, keyed by session.
type DualStore struct {
	db          *gorm.DB
	redisClient *redis.Client
	guestTTL    time.Duration
}

// NewDualStore creates the cart persistence layer
func NewDualStore(db *gorm.DB, redisClient *redis.Client, guestTTL time.Duration) *DualStore {
	return &DualStore{
		db:          db,
		redisClient: redisClient,
		guestTTL:    guestTTL,
	}
}

// Fetch returns the current authoritative lines for a cart, empty when the
// cart does not exist yet.
func (s *DualStore) Fetch(ctx context.Context, key Key) ([]Line, error) {
	if key.IsGuest() {
		sc, err := s.getGuestCart(ctx, key.SessionID)
		if err != nil {
			return nil, err
		}
		return sc.Items, nil
	}
	return s.fetchUserLines(ctx, *key.UserID)
}

// AddItem adds a line, merging quantities when the product is already
// present. The stored unit price of an existing line is preserved.
func (s *DualStore) AddItem(ctx context.Context, key Key, item Line) ([]Line, error) {
	if key.IsGuest() {
		sc, err := s.getGuestCart(ctx, key.SessionID)
		if err != nil {
			return nil, err
		}

		merged := false
		for i := range sc.Items {
			if sc.Items[i].ProductID == item.ProductID {
				sc.Items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			sc.Items = append(sc.Items, item)
		}

		if err := s.saveGuestCart(ctx, key.SessionID, sc); err != nil {
			return nil, err
		}
		return sc.Items, nil
	}

	var existing CartItem
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", *key.UserID, item.ProductID).
		First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row := CartItem{
			UserID:    *key.UserID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
	} else if result.Error != nil {
		return nil, result.Error
	} else {
		existing.Quantity += item.Quantity
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
	}

	return s.fetchUserLines(ctx, *key.UserID)
}

// UpdateItemQuantity sets the absolute quantity of a line; zero deletes it
func (s *DualStore) UpdateItemQuantity(ctx context.Context, key Key, productID uint, quantity int) ([]Line, error) {
	if key.IsGuest() {
		sc, err := s.getGuestCart(ctx, key.SessionID)
		if err != nil {
			return nil, err
		}

		for i := range sc.Items {
			if sc.Items[i].ProductID == productID {
				if quantity == 0 {
					sc.Items = append(sc.Items[:i], sc.Items[i+1:]...)
				} else {
					sc.Items[i].Quantity = quantity
				}
				if err := s.saveGuestCart(ctx, key.SessionID, sc); err != nil {
					return nil, err
				}
				return sc.Items, nil
			}
		}
		return nil, fmt.Errorf("item not found in cart")
	}

	if quantity == 0 {
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", *key.UserID, productID).
			Delete(&CartItem{}).Error
		if err != nil {
			return nil, err
		}
	} else {
		result := s.db.WithContext(ctx).Model(&CartItem{}).
			Where("user_id = ? AND product_id = ?", *key.UserID, productID).
			Update("quantity", quantity)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("item not found in cart")
		}
	}

	return s.fetchUserLines(ctx, *key.UserID)
}

// RemoveItem deletes a line
func (s *DualStore) RemoveItem(ctx context.Context, key Key, productID uint) ([]Line, error) {
	return s.UpdateItemQuantity(ctx, key, productID, 0)
}

// Clear removes every line for the cart
func (s *DualStore) Clear(ctx context.Context, key Key) ([]Line, error) {
	if key.IsGuest() {
		cartKey := guestCartKey(key.SessionID)
		if err := s.redisClient.Del(ctx, cartKey).Err(); err != nil {
			return nil, err
		}
		return []Line{}, nil
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", *key.UserID).
		Delete(&CartItem{}).Error
	if err != nil {
		return nil, err
	}
	return []Line{}, nil
}

// MergeGuestCart folds a guest session cart into a user cart on login and
// deletes the session cart.
func (s *DualStore) MergeGuestCart(ctx context.Context, userID uint, sessionID string) error {
	sc, err := s.getGuestCart(ctx, sessionID)
	if err != nil || len(sc.Items) == 0 {
		return nil
	}

	userKey := Key{UserID: &userID}
	for _, item := range sc.Items {
		if _, err := s.AddItem(ctx, userKey, item); err != nil {
			return err
		}
	}

	_, err = s.Clear(ctx, Key{SessionID: sessionID})
	return err
}

// Private helpers

func (s *DualStore) fetchUserLines(ctx context.Context, userID uint) ([]Line, error) {
	var rows []CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}

	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = Line{
			ProductID: row.ProductID,
			Name:      row.Name,
			Quantity:  row.Quantity,
			UnitPrice: row.Price,
			AddedAt:   row.CreatedAt,
		}
	}
	return lines, nil
}

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *DualStore) getGuestCart(ctx context.Context, sessionID string) (*sessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	data, err := s.redisClient.Get(ctx, guestCartKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return &sessionCart{
			SessionID: sessionID,
			Items:     []Line{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sc sessionCart
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *DualStore) saveGuestCart(ctx context.Context, sessionID string, sc *sessionCart) error {
	sc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sc)
	if err != nil {
		return err
	}

	return s.redisClient.Set(ctx, guestCartKey(sessionID), data, s.guestTTL).Err()
}
