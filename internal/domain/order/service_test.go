package order

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
)

type mockRepo struct {
	created     *Order
	createErr   error
	createCalls int
}

func (m *mockRepo) CreateWithReservation(ctx context.Context, o *Order) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	o.ID = 1
	o.OrderNumber = o.GenerateOrderNumber()
	m.created = o
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uint) (*Order, error) {
	if m.created != nil && m.created.ID == id {
		return m.created, nil
	}
	return nil, ErrOrderNotFound
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	if m.created != nil && m.created.OrderNumber == number {
		return m.created, nil
	}
	return nil, ErrOrderNotFound
}

func (m *mockRepo) ListByUser(ctx context.Context, userID uint, page, limit int) ([]Order, int64, error) {
	return nil, 0, nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uint, status, comment string, actor *uint) (*Order, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) CancelWithRestock(ctx context.Context, id uint, actor *uint) (*Order, error) {
	return m.GetByID(ctx, id)
}

type mockCarts struct {
	cart       *cart.Cart
	getErr     error
	clearCalls int
}

func (m *mockCarts) Get(ctx context.Context, key cart.Key) (*cart.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart, nil
}

func (m *mockCarts) ClearCart(ctx context.Context, key cart.Key) (*cart.Cart, error) {
	m.clearCalls++
	return cart.New(key, cart.Pricing{}), nil
}

type mockRedeemer struct {
	codes []string
}

func (m *mockRedeemer) Redeem(ctx context.Context, code string) error {
	m.codes = append(m.codes, code)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{Currency: "USD"},
	}
}

func userKey(id uint) cart.Key {
	return cart.Key{UserID: &id}
}

type flatShipping int64

func (f flatShipping) Quote(totalQuantity int, subtotal int64) int64 {
	if totalQuantity == 0 {
		return 0
	}
	return int64(f)
}

func filledCart(t *testing.T, key cart.Key) *cart.Cart {
	t.Helper()
	c := cart.New(key, cart.Pricing{TaxRate: 0.10, Shipping: flatShipping(500)})
	c.Lines = []cart.Line{
		{ProductID: 1, Name: "Widget", Quantity: 2, UnitPrice: 2000},
		{ProductID: 2, Name: "Gadget", Quantity: 1, UnitPrice: 1500},
	}
	// Force totals recomputation through a public mutation.
	c.ApplyDiscount("SAVE10", 1000)
	return c
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	key := userKey(7)
	repo := &mockRepo{}
	carts := &mockCarts{cart: cart.New(key, cart.Pricing{})}
	svc := NewService(repo, carts, &mockRedeemer{}, testConfig(), testLogger())

	_, err := svc.PlaceOrder(context.Background(), key, "")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, repo.createCalls)
	assert.Zero(t, carts.clearCalls)
}

func TestPlaceOrderSnapshotsCart(t *testing.T) {
	key := userKey(7)
	repo := &mockRepo{}
	carts := &mockCarts{cart: filledCart(t, key)}
	redeemer := &mockRedeemer{}
	svc := NewService(repo, carts, redeemer, testConfig(), testLogger())

	o, err := svc.PlaceOrder(context.Background(), key, "leave at door")
	require.NoError(t, err)

	assert.NotEmpty(t, o.OrderNumber)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, "USD", o.Currency)
	assert.Equal(t, int64(5500), o.SubtotalAmount)
	assert.Equal(t, int64(1000), o.DiscountAmount)
	assert.Equal(t, int64(550), o.TaxAmount)
	assert.Equal(t, int64(500), o.ShippingAmount)
	assert.Equal(t, int64(5550), o.TotalAmount)
	assert.Equal(t, "leave at door", o.Notes)

	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(4000), o.Items[0].TotalPrice)
	assert.Equal(t, int64(1500), o.Items[1].TotalPrice)

	assert.Equal(t, []string{"SAVE10"}, redeemer.codes)
	assert.Equal(t, 1, carts.clearCalls)
}

func TestPlaceOrderRepositoryFailureKeepsCart(t *testing.T) {
	key := userKey(7)
	repo := &mockRepo{createErr: errors.New("insufficient stock for product 1")}
	carts := &mockCarts{cart: filledCart(t, key)}
	svc := NewService(repo, carts, &mockRedeemer{}, testConfig(), testLogger())

	_, err := svc.PlaceOrder(context.Background(), key, "")

	var creationErr *CreationError
	require.ErrorAs(t, err, &creationErr)
	assert.Zero(t, carts.clearCalls)
}

func TestGetOrderScopedToOwner(t *testing.T) {
	key := userKey(7)
	repo := &mockRepo{}
	carts := &mockCarts{cart: filledCart(t, key)}
	svc := NewService(repo, carts, &mockRedeemer{}, testConfig(), testLogger())

	o, err := svc.PlaceOrder(context.Background(), key, "")
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), o.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)

	_, err = svc.GetOrder(context.Background(), o.ID, 8)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
