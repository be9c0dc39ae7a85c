package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/example/verve/internal/utils"
)

const (
	passcodeTTL         = 5 * time.Minute
	passcodeMaxAttempts = 5
)

// SMSSender dispatches a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// OTPService issues and verifies one-time passcodes. At most one live
// passcode exists per phone; codes are single-use.
type OTPService struct {
	store  PasscodeStore
	sender SMSSender
	now    func() time.Time
}

// NewOTPService constructs an OTPService over the given store and sender.
func NewOTPService(store PasscodeStore, sender SMSSender) *OTPService {
	return &OTPService{store: store, sender: sender, now: time.Now}
}

// Issue generates a passcode for the phone, stores its hash and dispatches it
// by SMS. A failed dispatch revokes the record so no unverifiable passcode
// stays live.
func (s *OTPService) Issue(ctx context.Context, rawPhone string) error {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return ErrValidation
	}

	code, err := generatePasscode()
	if err != nil {
		return err
	}

	rec := PasscodeRecord{
		CodeHash:  hashPasscode(code),
		ExpiresAt: s.now().Add(passcodeTTL),
	}
	if err := s.store.Put(ctx, phone, rec, passcodeTTL); err != nil {
		return err
	}

	if err := s.sender.SendSMS(ctx, phone, fmt.Sprintf("Your Verve login code is %s. It expires in 5 minutes.", code)); err != nil {
		if delErr := s.store.Delete(ctx, phone); delErr != nil {
			log.Printf("[otp] failed to revoke passcode after send failure for %s: %v", phone, delErr)
		}
		return &GatewayError{Gateway: "sms", Err: err}
	}

	return nil
}

// Verify checks the submitted code against the live record. Success consumes
// the record; a wrong code counts an attempt without touching the expiry, and
// too many wrong codes revoke the record.
func (s *OTPService) Verify(ctx context.Context, rawPhone, code string) (string, error) {
	phone, err := utils.NormalizePhone(rawPhone)
	if err != nil {
		return "", ErrValidation
	}

	rec, err := s.store.Get(ctx, phone)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", ErrCodeNotFound
	}

	if s.now().After(rec.ExpiresAt) {
		if err := s.store.Delete(ctx, phone); err != nil {
			log.Printf("[otp] failed to reap expired passcode for %s: %v", phone, err)
		}
		return "", ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(hashPasscode(code)), []byte(rec.CodeHash)) != 1 {
		rec.Attempts++
		if rec.Attempts >= passcodeMaxAttempts {
			if err := s.store.Delete(ctx, phone); err != nil {
				log.Printf("[otp] failed to revoke passcode after max attempts for %s: %v", phone, err)
			}
			return "", ErrCodeMismatch
		}
		if err := s.store.Put(ctx, phone, *rec, time.Until(rec.ExpiresAt)); err != nil {
			return "", err
		}
		return "", ErrCodeMismatch
	}

	if err := s.store.Delete(ctx, phone); err != nil {
		return "", err
	}

	return phone, nil
}

func generatePasscode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashPasscode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
