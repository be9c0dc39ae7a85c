package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/verve/internal/middleware"
	"github.com/example/verve/internal/services"
)

// PaymentHandler manages payment intent and checkout endpoints.
type PaymentHandler struct {
	payments *services.PaymentService
	checkout *services.CheckoutService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService, checkout *services.CheckoutService) *PaymentHandler {
	return &PaymentHandler{payments: payments, checkout: checkout}
}

type createIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

// CreateIntent opens a payment order at the gateway.
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	var req createIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	intent, err := h.payments.OpenIntent(c.Context(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"order": intent,
		"key":   h.payments.KeyID(),
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	IdempotencyKey    string `json:"idempotency_key"`
}

// VerifyPayment validates the gateway's signed result and finalizes the
// authenticated user's checkout.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.checkout.Finalize(c.Context(), userID, services.GatewayResult{
		OrderID:        req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}
