package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var smsHTTPClient = &http.Client{Timeout: 10 * time.Second}

// SMSService sends transactional messages through the SMS gateway's HTTP API.
type SMSService struct {
	baseURL  string
	apiToken string
	sender   string
	client   *http.Client
}

// NewSMSService constructs an SMSService from gateway credentials.
func NewSMSService(baseURL, apiToken, sender string) *SMSService {
	return &SMSService{
		baseURL:  baseURL,
		apiToken: apiToken,
		sender:   sender,
		client:   smsHTTPClient,
	}
}

type smsSendRequest struct {
	MobilePhone string `json:"mobile_phone"`
	Message     string `json:"message"`
	From        string `json:"from"`
}

// SendSMS dispatches a single message. The call is bounded by the client
// timeout; callers treat any failure as "delivery unconfirmed".
func (s *SMSService) SendSMS(ctx context.Context, phone, message string) error {
	if s.apiToken == "" {
		return ErrConfiguration
	}

	payload, err := json.Marshal(smsSendRequest{
		MobilePhone: phone,
		Message:     message,
		From:        s.sender,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/message/sms/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sms send failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}
