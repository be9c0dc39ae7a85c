package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/verve/internal/models"
)

// Checkout is the GORM-backed store behind the checkout orchestrator.
type Checkout struct {
	db *gorm.DB
}

// NewCheckout constructs a Checkout store.
func NewCheckout(db *gorm.DB) *Checkout {
	return &Checkout{db: db}
}

// CartWithItems loads the user's cart with items and their products, or nil
// when the user has no cart yet.
func (r *Checkout) CartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// OrderByIdempotencyKey returns the order created under the key, or nil.
func (r *Checkout) OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("idempotency_key = ?", key).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrderAndClearCart persists the order and empties the cart in a single
// transaction, so a crash cannot leave the order without the cart cleared.
func (r *Checkout) CreateOrderAndClearCart(ctx context.Context, order *models.Order, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
	})
}
