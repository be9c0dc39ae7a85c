package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/verve/internal/models"
	"github.com/example/verve/internal/utils"
)

// ResolveOutcome tags how an auth event mapped to a user record.
type ResolveOutcome int

const (
	// Found means an existing record matched the event's key.
	Found ResolveOutcome = iota
	// CreatedNew means the resolver inserted a fresh record.
	CreatedNew
	// ConflictResolvedToExisting means a concurrent signup won the insert and
	// the resolver returned that record instead.
	ConflictResolvedToExisting
)

// EventKind discriminates auth events.
type EventKind string

const (
	EventPassword EventKind = "password"
	EventOTP      EventKind = "otp"
	EventOAuth    EventKind = "oauth"
)

// AuthEvent is a successful authentication observation: a password match
// candidate, a verified phone, or a trusted OAuth profile.
type AuthEvent struct {
	Kind EventKind

	// password
	Email    string
	Password string

	// otp (already verified by the passcode verifier)
	Phone string

	// oauth
	ProviderID string
	OAuthEmail string
	Name       string
	Avatar     string
}

// UserStore is the identity persistence surface. Find methods return
// (nil, nil) when no record matches. CreateOrGet is insert-or-fetch: on a
// unique-index conflict it re-reads by the new user's keys and reports
// created=false.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByProviderID(ctx context.Context, providerID string) (*models.User, error)
	CreateOrGet(ctx context.Context, user *models.User) (*models.User, bool, error)
	Save(ctx context.Context, user *models.User) error
}

// IdentityService reconciles the three login paths into a single user record.
type IdentityService struct {
	users UserStore
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(users UserStore) *IdentityService {
	return &IdentityService{users: users}
}

// Resolve maps an authentication event to exactly one user, creating the
// record when absent. Creation is idempotent under concurrent duplicates.
func (s *IdentityService) Resolve(ctx context.Context, event AuthEvent) (*models.User, ResolveOutcome, error) {
	switch event.Kind {
	case EventPassword:
		return s.resolvePassword(ctx, event)
	case EventOTP:
		return s.resolveOTP(ctx, event)
	case EventOAuth:
		return s.resolveOAuth(ctx, event)
	default:
		return nil, Found, ErrValidation
	}
}

func (s *IdentityService) resolvePassword(ctx context.Context, event AuthEvent) (*models.User, ResolveOutcome, error) {
	email := strings.ToLower(strings.TrimSpace(event.Email))
	if email == "" || event.Password == "" {
		return nil, Found, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, Found, err
	}
	if user == nil || user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, event.Password) {
		return nil, Found, ErrInvalidCredentials
	}

	return user, Found, nil
}

func (s *IdentityService) resolveOTP(ctx context.Context, event AuthEvent) (*models.User, ResolveOutcome, error) {
	if event.Phone == "" {
		return nil, Found, ErrValidation
	}

	user, err := s.users.FindByPhone(ctx, event.Phone)
	if err != nil {
		return nil, Found, err
	}
	if user != nil {
		if user.Provider != models.ProviderOTP {
			user.Provider = models.ProviderOTP
			if err := s.users.Save(ctx, user); err != nil {
				return nil, Found, err
			}
		}
		return user, Found, nil
	}

	phone := event.Phone
	last4 := phone
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	fresh := &models.User{
		DisplayName: fmt.Sprintf("User %s", last4),
		Phone:       &phone,
		Provider:    models.ProviderOTP,
	}

	created, wasNew, err := s.users.CreateOrGet(ctx, fresh)
	if err != nil {
		return nil, Found, err
	}
	if wasNew {
		return created, CreatedNew, nil
	}
	if created.Provider != models.ProviderOTP {
		created.Provider = models.ProviderOTP
		if err := s.users.Save(ctx, created); err != nil {
			return nil, ConflictResolvedToExisting, err
		}
	}
	return created, ConflictResolvedToExisting, nil
}

func (s *IdentityService) resolveOAuth(ctx context.Context, event AuthEvent) (*models.User, ResolveOutcome, error) {
	if event.ProviderID == "" {
		return nil, Found, ErrValidation
	}

	user, err := s.users.FindByProviderID(ctx, event.ProviderID)
	if err != nil {
		return nil, Found, err
	}
	if user != nil {
		if event.Avatar != "" && user.Avatar != event.Avatar {
			user.Avatar = event.Avatar
			if err := s.users.Save(ctx, user); err != nil {
				return nil, Found, err
			}
		}
		return user, Found, nil
	}

	email := strings.ToLower(strings.TrimSpace(event.OAuthEmail))
	if email != "" {
		user, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, Found, err
		}
		if user != nil {
			// Link the OAuth identity to the pre-existing account.
			providerID := event.ProviderID
			user.ProviderID = &providerID
			user.Provider = models.ProviderGoogle
			if event.Avatar != "" {
				user.Avatar = event.Avatar
			}
			if err := s.users.Save(ctx, user); err != nil {
				return nil, Found, err
			}
			return user, Found, nil
		}
	}

	providerID := event.ProviderID
	fresh := &models.User{
		DisplayName: event.Name,
		ProviderID:  &providerID,
		Provider:    models.ProviderGoogle,
		Avatar:      event.Avatar,
	}
	if email != "" {
		fresh.Email = &email
	}
	if fresh.DisplayName == "" {
		fresh.DisplayName = "Customer"
	}

	created, wasNew, err := s.users.CreateOrGet(ctx, fresh)
	if err != nil {
		return nil, Found, err
	}
	if wasNew {
		return created, CreatedNew, nil
	}
	return created, ConflictResolvedToExisting, nil
}
