package services

import (
	"context"
	"sync"
	"time"
)

// PasscodeRecord is a live one-time passcode for a phone number. Codes are
// stored hashed; Attempts counts failed verifications against this record.
type PasscodeRecord struct {
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// PasscodeStore keeps at most one live passcode per phone. Get returns
// (nil, nil) when no record exists.
type PasscodeStore interface {
	Put(ctx context.Context, phone string, rec PasscodeRecord, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*PasscodeRecord, error)
	Delete(ctx context.Context, phone string) error
}

// MemoryPasscodeStore is the single-process default. Records die with the
// process; expired entries stay until the verifier observes the expiry and
// deletes them.
type MemoryPasscodeStore struct {
	mu      sync.Mutex
	records map[string]PasscodeRecord
}

// NewMemoryPasscodeStore constructs an empty in-memory store.
func NewMemoryPasscodeStore() *MemoryPasscodeStore {
	return &MemoryPasscodeStore{records: make(map[string]PasscodeRecord)}
}

// Put overwrites any prior record for the phone.
func (s *MemoryPasscodeStore) Put(_ context.Context, phone string, rec PasscodeRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[phone] = rec
	return nil
}

// Get returns the record for the phone, expired or not.
func (s *MemoryPasscodeStore) Get(_ context.Context, phone string) (*PasscodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[phone]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Delete removes the record for the phone if present.
func (s *MemoryPasscodeStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, phone)
	return nil
}
