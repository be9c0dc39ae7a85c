package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/verve/internal/models"
)

type fakeCheckoutStore struct {
	cart        *models.Cart
	orders      map[string]*models.Order
	createCalls int
	lookupCalls int
	clearedCart uuid.UUID
	createErr   error
	// orderOnRetry simulates a concurrent writer winning between the key
	// lookup and the insert: absent on the first lookup, present after.
	orderOnRetry *models.Order
}

func newFakeCheckoutStore(cart *models.Cart) *fakeCheckoutStore {
	return &fakeCheckoutStore{cart: cart, orders: map[string]*models.Order{}}
}

func (f *fakeCheckoutStore) CartWithItems(_ context.Context, _ uuid.UUID) (*models.Cart, error) {
	return f.cart, nil
}

func (f *fakeCheckoutStore) OrderByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	f.lookupCalls++
	if order := f.orders[key]; order != nil {
		return order, nil
	}
	if f.lookupCalls > 1 {
		return f.orderOnRetry, nil
	}
	return nil, nil
}

func (f *fakeCheckoutStore) CreateOrderAndClearCart(_ context.Context, order *models.Order, cartID uuid.UUID) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createCalls++
	order.ID = uuid.New()
	if order.IdempotencyKey != nil {
		f.orders[*order.IdempotencyKey] = order
	}
	f.clearedCart = cartID
	f.cart.Items = nil
	return nil
}

func floatptr(v float64) *float64 { return &v }

func testCart(items ...models.CartItem) *models.Cart {
	cart := &models.Cart{Items: items}
	cart.ID = uuid.New()
	cart.UserID = uuid.New()
	return cart
}

func signedResult(secret string) GatewayResult {
	return GatewayResult{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: signResult("order_1", "pay_1", secret),
	}
}

func TestFinalizeComputesSnapshotTotal(t *testing.T) {
	cart := testCart(
		models.CartItem{ProductID: uuid.New(), Quantity: 2, Price: floatptr(500)},
		models.CartItem{ProductID: uuid.New(), Quantity: 1, Price: floatptr(299)},
	)
	store := newFakeCheckoutStore(cart)
	svc := NewCheckoutService(store, "s3cret")

	order, err := svc.Finalize(context.Background(), cart.UserID, signedResult("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, float64(1299), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, "order_1", order.GatewayOrderID)
	assert.Equal(t, "pay_1", order.GatewayPaymentID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, float64(500), order.Items[0].UnitPrice)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Cart is cleared in the same operation.
	assert.Equal(t, cart.ID, store.clearedCart)
	assert.Empty(t, cart.Items)
}

func TestFinalizeFallsBackToDiscountedMRP(t *testing.T) {
	cart := testCart(models.CartItem{
		ProductID: uuid.New(),
		Quantity:  1,
		Product:   &models.Product{Name: "Noir 50ml", MRP: 999, DiscountPercent: 10},
	})
	store := newFakeCheckoutStore(cart)
	svc := NewCheckoutService(store, "s3cret")

	order, err := svc.Finalize(context.Background(), cart.UserID, signedResult("s3cret"))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	// round(999 - 999*10/100) = round(899.1)
	assert.Equal(t, float64(899), order.Items[0].UnitPrice)
	assert.Equal(t, float64(899), order.TotalAmount)
	assert.Equal(t, "Noir 50ml", order.Items[0].Name)
}

func TestFinalizeRejectsMissingFields(t *testing.T) {
	store := newFakeCheckoutStore(testCart())
	svc := NewCheckoutService(store, "s3cret")
	ctx := context.Background()

	base := signedResult("s3cret")
	for _, result := range []GatewayResult{
		{PaymentID: base.PaymentID, Signature: base.Signature},
		{OrderID: base.OrderID, Signature: base.Signature},
		{OrderID: base.OrderID, PaymentID: base.PaymentID},
	} {
		_, err := svc.Finalize(ctx, uuid.New(), result)
		require.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, store.createCalls)
}

func TestFinalizeFailsClosedOnBadSignature(t *testing.T) {
	cart := testCart(models.CartItem{ProductID: uuid.New(), Quantity: 1, Price: floatptr(100)})
	store := newFakeCheckoutStore(cart)
	svc := NewCheckoutService(store, "s3cret")

	result := signedResult("s3cret")
	result.Signature = signResult("order_1", "pay_1", "wrong-secret")

	_, err := svc.Finalize(context.Background(), cart.UserID, result)
	require.ErrorIs(t, err, ErrSignatureInvalid)
	// No order may exist after a signature failure.
	assert.Zero(t, store.createCalls)
	assert.Len(t, cart.Items, 1)
}

func TestFinalizeEmptyCart(t *testing.T) {
	store := newFakeCheckoutStore(testCart())
	svc := NewCheckoutService(store, "s3cret")

	_, err := svc.Finalize(context.Background(), uuid.New(), signedResult("s3cret"))
	require.ErrorIs(t, err, ErrEmptyCart)

	store.cart = nil
	_, err = svc.Finalize(context.Background(), uuid.New(), signedResult("s3cret"))
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestFinalizeSecondCallAfterClearFails(t *testing.T) {
	cart := testCart(models.CartItem{ProductID: uuid.New(), Quantity: 1, Price: floatptr(100)})
	store := newFakeCheckoutStore(cart)
	svc := NewCheckoutService(store, "s3cret")
	ctx := context.Background()

	_, err := svc.Finalize(ctx, cart.UserID, signedResult("s3cret"))
	require.NoError(t, err)

	// The cart was emptied; a rapid retry cannot duplicate the order.
	_, err = svc.Finalize(ctx, cart.UserID, signedResult("s3cret"))
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 1, store.createCalls)
}

func TestFinalizeIdempotencyKeyReplay(t *testing.T) {
	cart := testCart(models.CartItem{ProductID: uuid.New(), Quantity: 1, Price: floatptr(100)})
	store := newFakeCheckoutStore(cart)
	svc := NewCheckoutService(store, "s3cret")
	ctx := context.Background()

	result := signedResult("s3cret")
	result.IdempotencyKey = "ck_1"

	first, err := svc.Finalize(ctx, cart.UserID, result)
	require.NoError(t, err)

	second, err := svc.Finalize(ctx, cart.UserID, result)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.createCalls)
}

func TestFinalizeIdempotencyKeyInsertRace(t *testing.T) {
	cart := testCart(models.CartItem{ProductID: uuid.New(), Quantity: 1, Price: floatptr(100)})
	store := newFakeCheckoutStore(cart)
	svc := NewCheckoutService(store, "s3cret")

	// A concurrent finalize wins the insert between our key lookup and write.
	winner := &models.Order{Status: models.OrderStatusPaid}
	winner.ID = uuid.New()
	store.createErr = gorm.ErrDuplicatedKey
	store.orderOnRetry = winner

	result := signedResult("s3cret")
	result.IdempotencyKey = "ck_1"

	order, err := svc.Finalize(context.Background(), cart.UserID, result)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, order.ID)
	assert.Zero(t, store.createCalls)
}
