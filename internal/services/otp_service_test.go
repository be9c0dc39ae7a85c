package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	lastPhone   string
	lastMessage string
	failWith    error
	sent        int
}

func (f *fakeSender) SendSMS(_ context.Context, phone, message string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.sent++
	f.lastPhone = phone
	f.lastMessage = message
	return nil
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (f *fakeSender) lastCode(t *testing.T) string {
	t.Helper()
	code := codePattern.FindString(f.lastMessage)
	require.Len(t, code, 6)
	return code
}

func newTestOTPService(sender *fakeSender) (*OTPService, *MemoryPasscodeStore, *time.Time) {
	store := NewMemoryPasscodeStore()
	svc := NewOTPService(store, sender)
	now := time.Now()
	svc.now = func() time.Time { return now }
	return svc, store, &now
}

func TestOTPIssueAndVerifyOnce(t *testing.T) {
	sender := &fakeSender{}
	svc, _, _ := newTestOTPService(sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "9876543210"))
	require.Equal(t, "9876543210", sender.lastPhone)

	phone, err := svc.Verify(ctx, "9876543210", sender.lastCode(t))
	require.NoError(t, err)
	require.Equal(t, "9876543210", phone)

	// Single use: the record is consumed.
	_, err = svc.Verify(ctx, "9876543210", sender.lastCode(t))
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestOTPIssueNormalizesPhone(t *testing.T) {
	sender := &fakeSender{}
	svc, _, _ := newTestOTPService(sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "+91 98765-43210"))
	require.Equal(t, "9876543210", sender.lastPhone)

	phone, err := svc.Verify(ctx, "9876543210", sender.lastCode(t))
	require.NoError(t, err)
	require.Equal(t, "9876543210", phone)
}

func TestOTPIssueRejectsInvalidPhones(t *testing.T) {
	sender := &fakeSender{}
	svc, _, _ := newTestOTPService(sender)
	ctx := context.Background()

	for _, phone := range []string{"", "12345", "1234567890", "5876543210", "98765432101", "98765abcde"} {
		require.ErrorIs(t, svc.Issue(ctx, phone), ErrValidation, "phone %q", phone)
	}
	require.Zero(t, sender.sent)
}

func TestOTPVerifyExpired(t *testing.T) {
	sender := &fakeSender{}
	svc, store, now := newTestOTPService(sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "9876543210"))
	code := sender.lastCode(t)

	*now = now.Add(5*time.Minute + time.Second)

	_, err := svc.Verify(ctx, "9876543210", code)
	require.ErrorIs(t, err, ErrCodeExpired)

	// Expiry observation reaps the record.
	rec, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestOTPVerifyMismatchKeepsRecord(t *testing.T) {
	sender := &fakeSender{}
	svc, store, _ := newTestOTPService(sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "9876543210"))
	code := sender.lastCode(t)

	before, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "9876543210", "000000")
	if code == "000000" {
		t.Skip("generated code collided with the guess")
	}
	require.ErrorIs(t, err, ErrCodeMismatch)

	// The wrong guess neither consumed the code nor reset its expiry.
	after, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.NotNil(t, after)
	require.Equal(t, before.ExpiresAt, after.ExpiresAt)
	require.Equal(t, 1, after.Attempts)

	phone, err := svc.Verify(ctx, "9876543210", code)
	require.NoError(t, err)
	require.Equal(t, "9876543210", phone)
}

func TestOTPVerifyAttemptLimit(t *testing.T) {
	sender := &fakeSender{}
	svc, store, _ := newTestOTPService(sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "9876543210"))
	code := sender.lastCode(t)
	if code == "000000" {
		t.Skip("generated code collided with the guess")
	}

	for i := 0; i < passcodeMaxAttempts; i++ {
		_, err := svc.Verify(ctx, "9876543210", "000000")
		require.ErrorIs(t, err, ErrCodeMismatch)
	}

	// The record is revoked; even the correct code no longer works.
	rec, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.Nil(t, rec)

	_, err = svc.Verify(ctx, "9876543210", code)
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestOTPIssueOverwritesPriorCode(t *testing.T) {
	sender := &fakeSender{}
	svc, _, _ := newTestOTPService(sender)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "9876543210"))
	first := sender.lastCode(t)

	require.NoError(t, svc.Issue(ctx, "9876543210"))
	second := sender.lastCode(t)
	if first == second {
		t.Skip("consecutive codes collided")
	}

	_, err := svc.Verify(ctx, "9876543210", first)
	require.ErrorIs(t, err, ErrCodeMismatch)

	phone, err := svc.Verify(ctx, "9876543210", second)
	require.NoError(t, err)
	require.Equal(t, "9876543210", phone)
}

func TestOTPIssueRevokesOnSendFailure(t *testing.T) {
	sender := &fakeSender{failWith: errors.New("gateway down")}
	svc, store, _ := newTestOTPService(sender)
	ctx := context.Background()

	err := svc.Issue(ctx, "9876543210")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)

	// No live passcode survives a failed send.
	rec, err := store.Get(ctx, "9876543210")
	require.NoError(t, err)
	require.Nil(t, rec)

	_, err = svc.Verify(ctx, "9876543210", "123456")
	require.ErrorIs(t, err, ErrCodeNotFound)
}
