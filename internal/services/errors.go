package services

import (
	"errors"
	"fmt"
)

// Sentinel errors produced by the core services. Handlers translate these to
// HTTP statuses; upstream detail stays in server logs.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCodeNotFound       = errors.New("verification code not found")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("verification code mismatch")
	ErrSignatureInvalid   = errors.New("payment signature invalid")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrConfiguration      = errors.New("service not configured")
)

// GatewayError wraps an upstream SMS or payment gateway failure. The detail is
// for diagnostics only and is never sent to clients.
type GatewayError struct {
	Gateway string
	Detail  string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s gateway: %s", e.Gateway, e.Detail)
	}
	return fmt.Sprintf("%s gateway failure", e.Gateway)
}

func (e *GatewayError) Unwrap() error { return e.Err }
