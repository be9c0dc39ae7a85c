package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/verve/internal/services"
)

// ErrorHandler renders every handler failure as a {message} JSON body.
// Unexpected errors are logged and collapsed to a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{"message": message})
}

// httpError maps service failures to HTTP responses. Client messages stay
// generic so they cannot be used to enumerate accounts; upstream detail is
// logged server-side only.
func httpError(err error) error {
	var gwErr *services.GatewayError

	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, "invalid request")
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrCodeNotFound),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrCodeMismatch):
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired code")
	case errors.Is(err, services.ErrSignatureInvalid):
		return fiber.NewError(fiber.StatusBadRequest, "payment verification failed")
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	case errors.Is(err, services.ErrConfiguration):
		log.Printf("[http] configuration error: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "service temporarily unavailable")
	case errors.As(err, &gwErr):
		log.Printf("[http] gateway error: %v", gwErr)
		return fiber.NewError(fiber.StatusInternalServerError, "please try again later")
	default:
		return err
	}
}
