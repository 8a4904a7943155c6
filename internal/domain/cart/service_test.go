package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

type mockStore struct {
	lines      []Line
	err        error
	fetchCalls int
	addCalls   int
	updCalls   int
	remCalls   int
	clrCalls   int
}

func (m *mockStore) Fetch(ctx context.Context, key Key) ([]Line, error) {
	m.fetchCalls++
	return m.result()
}

func (m *mockStore) AddItem(ctx context.Context, key Key, item Line) ([]Line, error) {
	m.addCalls++
	return m.result()
}

func (m *mockStore) UpdateItemQuantity(ctx context.Context, key Key, productID uint, quantity int) ([]Line, error) {
	m.updCalls++
	return m.result()
}

func (m *mockStore) RemoveItem(ctx context.Context, key Key, productID uint) ([]Line, error) {
	m.remCalls++
	return m.result()
}

func (m *mockStore) Clear(ctx context.Context, key Key) ([]Line, error) {
	m.clrCalls++
	if m.err != nil {
		return nil, m.err
	}
	return []Line{}, nil
}

func (m *mockStore) result() ([]Line, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

type mockResolver struct {
	products map[uint]*product.Product
}

func (m *mockResolver) Resolve(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

type mockValidator struct {
	amounts map[string]int64
	calls   []string
}

func (m *mockValidator) ValidateCode(ctx context.Context, code string, subtotal int64) (int64, error) {
	m.calls = append(m.calls, code)
	amount, ok := m.amounts[code]
	if !ok {
		return 0, errors.New("invalid discount code")
	}
	return amount, nil
}

func newTestService(store *mockStore) (*Service, *mockResolver, *mockValidator) {
	resolver := &mockResolver{products: map[uint]*product.Product{
		1: {ID: 1, Name: "Widget", Price: 2000, TrackQuantity: true, Quantity: 10},
		2: {ID: 2, Name: "Gadget", Price: 1500, TrackQuantity: true, Quantity: 5},
	}}
	validator := &mockValidator{amounts: map[string]int64{"SAVE10": 1000}}
	return NewService(store, resolver, validator, testPricing(), time.Hour), resolver, validator
}

func TestServiceAddToCartAdoptsAuthoritativeState(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc, _, _ := newTestService(store)
	key := guestKey()

	// The store returns a different quantity than requested; another
	// device added the same product concurrently.
	store.lines = []Line{{ProductID: 1, Name: "Widget", Quantity: 3, UnitPrice: 2000}}

	c, err := svc.AddToCart(ctx, key, 1, 1)
	require.NoError(t, err)

	line, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, int64(6000), c.Totals.Subtotal)
	assert.Equal(t, 1, store.addCalls)
}

func TestServiceAddToCartUnknownProduct(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc, _, _ := newTestService(store)

	_, err := svc.AddToCart(ctx, guestKey(), 99, 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.Zero(t, store.addCalls)
}

func TestServiceAddToCartInsufficientStockSkipsStore(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc, _, _ := newTestService(store)

	_, err := svc.AddToCart(ctx, guestKey(), 2, 6)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	assert.Zero(t, store.addCalls)
}

func TestServiceStoreFailureLeavesLocalUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000}},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	before, err := svc.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, int64(4000), before.Totals.Subtotal)

	store.err = errors.New("connection reset")
	_, err = svc.AddToCart(ctx, key, 1, 1)

	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "add", persistErr.Op)

	store.err = nil
	after, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before.Totals, after.Totals)
}

func TestServiceUpdateQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000}},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	_, err := svc.Get(ctx, key)
	require.NoError(t, err)

	store.lines = []Line{}
	c, err := svc.UpdateQuantity(ctx, key, 1, 0)
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 1, store.updCalls)
}

func TestServiceRemoveAbsentLineIsLocalNoOp(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc, _, _ := newTestService(store)
	key := guestKey()

	c, err := svc.RemoveFromCart(ctx, key, 42)
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.Zero(t, store.remCalls)
}

func TestServiceClearCart(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000}},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	c, err := svc.ClearCart(ctx, key)
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, Totals{}, c.Totals)
	assert.Equal(t, 1, store.clrCalls)
}

func TestServiceApplyDiscountValidatesAgainstSubtotal(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{
			{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000},
			{ProductID: 2, Name: "Gadget", Quantity: 1, UnitPrice: 1500},
		},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	c, err := svc.ApplyDiscount(ctx, key, "SAVE10")
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", c.DiscountCode)
	assert.Equal(t, int64(1000), c.Totals.DiscountAmount)
	assert.Equal(t, int64(5550), c.Totals.Total)
}

func TestServiceApplyInvalidDiscountLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 1, UnitPrice: 2000}},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	_, err := svc.ApplyDiscount(ctx, key, "NOPE")
	require.Error(t, err)

	c, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, c.DiscountCode)
	assert.Zero(t, c.Totals.DiscountAmount)
}

func TestServiceDiscountRevalidatedAfterSync(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{
			{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000},
		},
	}
	svc, _, validator := newTestService(store)
	key := guestKey()

	_, err := svc.ApplyDiscount(ctx, key, "SAVE10")
	require.NoError(t, err)

	// The code stops validating; the next sync must drop it.
	delete(validator.amounts, "SAVE10")
	store.lines = []Line{
		{ProductID: 1, Name: "Widget", Quantity: 3, UnitPrice: 2000},
	}

	c, err := svc.AddToCart(ctx, key, 1, 1)
	require.NoError(t, err)

	assert.Empty(t, c.DiscountCode)
	assert.Zero(t, c.Totals.DiscountAmount)
}

func TestServiceTotalsMatchCartSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{
			{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000},
			{ProductID: 2, Name: "Gadget", Quantity: 1, UnitPrice: 1500},
		},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	totals, err := svc.Totals(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, int64(5500), totals.Subtotal)
	assert.Equal(t, int64(550), totals.TaxAmount)
	assert.Equal(t, int64(6550), totals.Total)
	assert.Equal(t, 3, totals.TotalQuantity)
}

func TestServiceGetFetchesOnceThenUsesLocalState(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 1, UnitPrice: 2000}},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	_, err := svc.Get(ctx, key)
	require.NoError(t, err)
	_, err = svc.Get(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, 1, store.fetchCalls)
}

func TestServiceForgetForcesRefetch(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 1, UnitPrice: 2000}},
	}
	svc, _, _ := newTestService(store)
	key := guestKey()

	_, err := svc.Get(ctx, key)
	require.NoError(t, err)
	_, err = svc.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 1, store.fetchCalls)

	svc.Forget(key)

	_, err = svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, store.fetchCalls)
}

func TestServiceDistinctSessionsLeaveNoResidue(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc, _, _ := newTestService(store)

	// Guest session IDs come straight from a client cookie; reading a
	// thousand empty carts must not grow the service's internal maps.
	for i := 0; i < 1000; i++ {
		_, err := svc.Get(ctx, Key{SessionID: fmt.Sprintf("sess-%d", i)})
		require.NoError(t, err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.local)
	assert.Empty(t, svc.locks)
}

func TestServiceCachedCartExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		lines: []Line{{ProductID: 1, Name: "Widget", Quantity: 1, UnitPrice: 2000}},
	}
	resolver := &mockResolver{products: map[uint]*product.Product{}}
	validator := &mockValidator{}
	svc := NewService(store, resolver, validator, testPricing(), time.Nanosecond)

	_, err := svc.Get(ctx, Key{SessionID: "a"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	// Any operation on another cart sweeps expired entries.
	_, err = svc.Get(ctx, Key{SessionID: "b"})
	require.NoError(t, err)

	svc.mu.Lock()
	_, ok := svc.local[Key{SessionID: "a"}.String()]
	svc.mu.Unlock()
	assert.False(t, ok)
}
