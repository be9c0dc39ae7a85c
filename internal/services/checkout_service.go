package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/verve/internal/models"
)

// GatewayResult is the signed callback the gateway redirects back with.
type GatewayResult struct {
	OrderID        string
	PaymentID      string
	Signature      string
	IdempotencyKey string
}

// CheckoutStore is the persistence surface of the orchestrator. Both writes
// of CreateOrderAndClearCart happen in one transaction.
type CheckoutStore interface {
	CartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	CreateOrderAndClearCart(ctx context.Context, order *models.Order, cartID uuid.UUID) error
}

// CheckoutService converts a mutable cart into an immutable, amount-verified
// order exactly once, gated by the gateway signature check.
type CheckoutService struct {
	store  CheckoutStore
	secret string
}

// NewCheckoutService constructs a CheckoutService. secret is the gateway
// signing secret used to validate callbacks.
func NewCheckoutService(store CheckoutStore, secret string) *CheckoutService {
	return &CheckoutService{store: store, secret: secret}
}

// Finalize validates the gateway result, snapshots the cart into an order and
// clears the cart. A retried call carrying the same idempotency key resolves
// to the already-created order instead of duplicating it.
func (s *CheckoutService) Finalize(ctx context.Context, userID uuid.UUID, result GatewayResult) (*models.Order, error) {
	if result.OrderID == "" || result.PaymentID == "" || result.Signature == "" {
		return nil, ErrValidation
	}
	if s.secret == "" {
		return nil, ErrConfiguration
	}

	if !VerifySignature(result.OrderID, result.PaymentID, result.Signature, s.secret) {
		return nil, ErrSignatureInvalid
	}

	if result.IdempotencyKey != "" {
		existing, err := s.store.OrderByIdempotencyKey(ctx, result.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	cart, err := s.store.CartWithItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		UserID:           userID,
		PlacedAt:         time.Now(),
		Currency:         "INR",
		Status:           models.OrderStatusPaid,
		GatewayOrderID:   result.OrderID,
		GatewayPaymentID: result.PaymentID,
		GatewaySignature: result.Signature,
	}
	if result.IdempotencyKey != "" {
		key := result.IdempotencyKey
		order.IdempotencyKey = &key
	}

	var total float64
	for _, item := range cart.Items {
		price, err := frozenUnitPrice(item)
		if err != nil {
			return nil, err
		}

		name := ""
		if item.Product != nil {
			name = item.Product.Name
			if item.Product.Currency != "" {
				order.Currency = item.Product.Currency
			}
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
		total += price * float64(item.Quantity)
	}
	order.TotalAmount = total

	if err := s.store.CreateOrderAndClearCart(ctx, order, cart.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && result.IdempotencyKey != "" {
			existing, readErr := s.store.OrderByIdempotencyKey(ctx, result.IdempotencyKey)
			if readErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	return order, nil
}

// frozenUnitPrice snapshots a cart line's unit price: the cached price when it
// is a usable number, else the catalog's discounted MRP.
func frozenUnitPrice(item models.CartItem) (float64, error) {
	if item.Price != nil && *item.Price > 0 && !math.IsNaN(*item.Price) && !math.IsInf(*item.Price, 0) {
		return *item.Price, nil
	}
	if item.Product == nil {
		return 0, ErrValidation
	}
	mrp := item.Product.MRP
	return math.Round(mrp - mrp*item.Product.DiscountPercent/100), nil
}
