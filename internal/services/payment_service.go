package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const defaultPaymentBaseURL = "https://api.razorpay.com"

var paymentHTTPClient = &http.Client{Timeout: 15 * time.Second}

// PaymentService talks to the payment gateway's REST API and validates its
// callback signatures.
type PaymentService struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

// NewPaymentService constructs a PaymentService from gateway credentials.
func NewPaymentService(keyID, keySecret string) *PaymentService {
	return &PaymentService{
		baseURL:   defaultPaymentBaseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    paymentHTTPClient,
	}
}

// KeyID is the public key identifier clients use to open the gateway widget.
func (s *PaymentService) KeyID() string { return s.keyID }

// Secret exposes the signing secret to the checkout orchestrator.
func (s *PaymentService) Secret() string { return s.keySecret }

// PaymentIntent is the gateway's view of an opened order.
type PaymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type openIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

type gatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// OpenIntent creates a payment order at the gateway. The amount is in major
// currency units and is converted to minor units on the wire.
func (s *PaymentService) OpenIntent(ctx context.Context, amount float64, currency, receipt string) (*PaymentIntent, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrValidation
	}
	if s.keyID == "" || s.keySecret == "" {
		return nil, ErrConfiguration
	}
	if currency == "" {
		currency = "INR"
	}

	payload, err := json.Marshal(openIntentRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &GatewayError{Gateway: "payment", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr gatewayErrorBody
		_ = json.Unmarshal(body, &gwErr)
		detail := gwErr.Error.Description
		if detail == "" {
			detail = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, &GatewayError{Gateway: "payment", Detail: detail}
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, &GatewayError{Gateway: "payment", Detail: "malformed response", Err: err}
	}

	return &intent, nil
}

// VerifySignature reports whether sig matches HMAC-SHA256(orderID|paymentID)
// under the secret. This is the sole trust boundary for "the payment
// actually happened".
func VerifySignature(orderID, paymentID, sig, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
