package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/verve/internal/models"
)

// Users is the GORM-backed user store.
type Users struct {
	db *gorm.DB
}

// NewUsers constructs a Users store.
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user with the given email, or nil.
func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByPhone returns the user with the given phone, or nil.
func (r *Users) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

// FindByProviderID returns the user linked to the OAuth provider id, or nil.
func (r *Users) FindByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	return r.findOne(ctx, "provider_id = ?", providerID)
}

// CreateOrGet inserts the user and reports created=true. When a unique index
// rejects the insert because a concurrent signup won, it re-reads by the new
// user's keys and returns that record with created=false.
func (r *Users) CreateOrGet(ctx context.Context, user *models.User) (*models.User, bool, error) {
	err := r.db.WithContext(ctx).Create(user).Error
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	if user.ProviderID != nil {
		if existing, ferr := r.FindByProviderID(ctx, *user.ProviderID); ferr == nil && existing != nil {
			return existing, false, nil
		}
	}
	if user.Phone != nil {
		if existing, ferr := r.FindByPhone(ctx, *user.Phone); ferr == nil && existing != nil {
			return existing, false, nil
		}
	}
	if user.Email != nil {
		if existing, ferr := r.FindByEmail(ctx, *user.Email); ferr == nil && existing != nil {
			return existing, false, nil
		}
	}

	return nil, false, err
}

// Save persists field updates on an existing user.
func (r *Users) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
