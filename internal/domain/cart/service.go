// internal/domain/cart/service.go
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ProductResolver resolves a product reference to its current price, stock
// and discount metadata.
type ProductResolver interface {
	Resolve(ctx context.Context, id uint) (*product.Product, error)
}

// DiscountValidator validates a discount code against a cart subtotal and
// returns the discount amount in cents.
type DiscountValidator interface {
	ValidateCode(ctx context.Context, code string, subtotal int64) (int64, error)
}

// cartEntry is a cached aggregate plus its last access time, used for
// TTL eviction.
type cartEntry struct {
	cart *Cart
	seen time.Time
}

// cartLock is a per-cart mutex with a holder count so idle entries can be
// dropped from the lock map once the last holder releases.
type cartLock struct {
	mu   sync.Mutex
	refs int
}

// Service is the cart mutation service. Every mutation validates against the
// local aggregate first, then issues the persistence call, and on success
// replaces the local aggregate with the server's authoritative state. On
// persistence failure the local aggregate is left unchanged.
//
// Mutations against the same cart are serialized through a per-cart mutex so
// two racing calls can never interleave against one aggregate.
//
// Cart keys are partly client-supplied (guest session cookies), so both maps
// are kept bounded: empty carts are never cached, lock entries are dropped
// when the last holder releases, and cached aggregates expire after cacheTTL
// of inactivity.
type Service struct {
	store     Store
	products  ProductResolver
	discounts DiscountValidator
	pricing   Pricing
	cacheTTL  time.Duration

	mu        sync.Mutex
	locks     map[string]*cartLock
	local     map[string]*cartEntry
	lastSweep time.Time
}

// NewService creates a new cart mutation service. cacheTTL bounds how long
// an idle aggregate stays cached; zero disables expiry.
func NewService(store Store, products ProductResolver, discounts DiscountValidator, pricing Pricing, cacheTTL time.Duration) *Service {
	return &Service{
		store:     store,
		products:  products,
		discounts: discounts,
		pricing:   pricing,
		cacheTTL:  cacheTTL,
		locks:     make(map[string]*cartLock),
		local:     make(map[string]*cartEntry),
	}
}

// Get returns a snapshot of the cart, fetching the authoritative state when
// the cart has not been seen by this service instance yet.
func (s *Service) Get(ctx context.Context, key Key) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	cur, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	return cur.Clone(), nil
}

// Totals returns the current derived totals for the cart
func (s *Service) Totals(ctx context.Context, key Key) (Totals, error) {
	c, err := s.Get(ctx, key)
	if err != nil {
		return Totals{}, err
	}
	return c.Totals, nil
}

// AddToCart adds quantity of a product to the cart
func (s *Service) AddToCart(ctx context.Context, key Key, productID uint, quantity int) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	cur, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	prod, err := s.products.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Validate on a clone; a rejected operation must not leave any trace.
	trial := cur.Clone()
	if err := trial.AddLine(prod, quantity); err != nil {
		return nil, err
	}

	lines, err := s.store.AddItem(ctx, key, Line{
		ProductID: prod.ID,
		Name:      prod.Name,
		Quantity:  quantity,
		UnitPrice: prod.Price,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "add", Err: err}
	}

	return s.adoptLocked(ctx, key, lines, cur.DiscountCode).Clone(), nil
}

// UpdateQuantity sets the absolute quantity of a line; zero removes the line
func (s *Service) UpdateQuantity(ctx context.Context, key Key, productID uint, quantity int) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	cur, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	prod, err := s.products.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}

	trial := cur.Clone()
	if err := trial.SetQuantity(prod, quantity); err != nil {
		return nil, err
	}

	lines, err := s.store.UpdateItemQuantity(ctx, key, productID, quantity)
	if err != nil {
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	return s.adoptLocked(ctx, key, lines, cur.DiscountCode).Clone(), nil
}

// RemoveFromCart removes the line for a product. An absent line is a local
// no-op; no persistence call is issued.
func (s *Service) RemoveFromCart(ctx context.Context, key Key, productID uint) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	cur, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	if _, ok := cur.Line(productID); !ok {
		return cur.Clone(), nil
	}

	lines, err := s.store.RemoveItem(ctx, key, productID)
	if err != nil {
		return nil, &PersistenceError{Op: "remove", Err: err}
	}

	return s.adoptLocked(ctx, key, lines, cur.DiscountCode).Clone(), nil
}

// ClearCart removes all lines and the applied discount
func (s *Service) ClearCart(ctx context.Context, key Key) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	lines, err := s.store.Clear(ctx, key)
	if err != nil {
		return nil, &PersistenceError{Op: "clear", Err: err}
	}

	return s.adoptLocked(ctx, key, lines, "").Clone(), nil
}

// ApplyDiscount validates a code against the current subtotal and applies it.
// On validation failure nothing is applied and the aggregate is unchanged.
func (s *Service) ApplyDiscount(ctx context.Context, key Key, code string) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	cur, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	amount, err := s.discounts.ValidateCode(ctx, code, cur.Totals.Subtotal)
	if err != nil {
		return nil, err
	}

	cur.ApplyDiscount(code, amount)
	return cur.Clone(), nil
}

// RemoveDiscount clears any applied discount code
func (s *Service) RemoveDiscount(ctx context.Context, key Key) (*Cart, error) {
	unlock := s.lockCart(key)
	defer unlock()

	cur, err := s.loadLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	cur.RemoveDiscount()
	return cur.Clone(), nil
}

// Forget drops the cached aggregate for a cart, forcing the next operation
// to refetch authoritative state. Used when ownership changes (login merge).
func (s *Service) Forget(key Key) {
	unlock := s.lockCart(key)
	defer unlock()

	s.mu.Lock()
	delete(s.local, key.String())
	s.mu.Unlock()
}

// Private helpers. All of these require the per-cart lock to be held.

// lockCart acquires the per-cart mutex. The returned release drops the lock
// entry once no caller holds or awaits it, so the map only ever contains
// carts with an operation in flight.
func (s *Service) lockCart(key Key) func() {
	k := key.String()

	s.mu.Lock()
	s.evictStaleLocked(time.Now())
	l, ok := s.locks[k]
	if !ok {
		l = &cartLock{}
		s.locks[k] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, k)
		}
		s.mu.Unlock()
	}
}

// evictStaleLocked drops cached aggregates idle for longer than cacheTTL.
// Sweeps at most every cacheTTL/4. Requires s.mu.
func (s *Service) evictStaleLocked(now time.Time) {
	if s.cacheTTL <= 0 || now.Sub(s.lastSweep) < s.cacheTTL/4 {
		return
	}
	s.lastSweep = now
	for k, e := range s.local {
		if now.Sub(e.seen) > s.cacheTTL {
			delete(s.local, k)
		}
	}
}

func (s *Service) loadLocked(ctx context.Context, key Key) (*Cart, error) {
	s.mu.Lock()
	if e, ok := s.local[key.String()]; ok {
		e.seen = time.Now()
		s.mu.Unlock()
		return e.cart, nil
	}
	s.mu.Unlock()

	lines, err := s.store.Fetch(ctx, key)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch", Err: err}
	}

	return s.adoptLocked(ctx, key, lines, ""), nil
}

// adoptLocked replaces the local aggregate with the authoritative line set.
// An applied discount code survives the sync only if it still validates
// against the new subtotal; otherwise it is dropped rather than kept stale.
// Empty carts are not cached, so a flood of fresh session keys leaves no
// residue.
func (s *Service) adoptLocked(ctx context.Context, key Key, lines []Line, discountCode string) *Cart {
	c := New(key, s.pricing)
	c.Lines = make([]Line, len(lines))
	copy(c.Lines, lines)
	c.touch()

	if discountCode != "" && !c.IsEmpty() {
		if amount, err := s.discounts.ValidateCode(ctx, discountCode, c.Totals.Subtotal); err == nil {
			c.ApplyDiscount(discountCode, amount)
		}
	}

	s.mu.Lock()
	if c.IsEmpty() {
		delete(s.local, key.String())
	} else {
		s.local[key.String()] = &cartEntry{cart: c, seen: time.Now()}
	}
	s.mu.Unlock()

	return c
}
