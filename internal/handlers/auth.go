package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/verve/internal/config"
	"github.com/example/verve/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	otp      *services.OTPService
	identity *services.IdentityService
	cfg      *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(otp *services.OTPService, identity *services.IdentityService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{otp: otp, identity: identity, cfg: cfg}
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

// SendOTP issues a one-time passcode to the submitted phone number.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.otp.Issue(c.Context(), req.Phone); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// VerifyOTP validates the passcode, resolves the identity and starts a
// session.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request")
	}

	phone, err := h.otp.Verify(c.Context(), req.Phone, req.OTP)
	if err != nil {
		return httpError(err)
	}

	user, _, err := h.identity.Resolve(c.Context(), services.AuthEvent{
		Kind:  services.EventOTP,
		Phone: phone,
	})
	if err != nil {
		return httpError(err)
	}

	token, err := issueSession(c, h.cfg, user, "otp")
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user.PublicMap(),
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates with email and password.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, _, err := h.identity.Resolve(c.Context(), services.AuthEvent{
		Kind:     services.EventPassword,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return httpError(err)
	}

	token, err := issueSession(c, h.cfg, user, "password")
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user.PublicMap(),
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c, h.cfg)
	return c.JSON(fiber.Map{"success": true})
}
