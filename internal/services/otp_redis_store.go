package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const passcodeKeyPrefix = "otp:"

// RedisPasscodeStore keeps passcodes in Redis with a native TTL, so multiple
// processes share state and a restart does not invalidate in-flight logins.
type RedisPasscodeStore struct {
	client *redis.Client
}

// NewRedisPasscodeStore connects to the given Redis address.
func NewRedisPasscodeStore(addr string) *RedisPasscodeStore {
	return &RedisPasscodeStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies the Redis connection.
func (s *RedisPasscodeStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Put overwrites any prior record for the phone and sets the key TTL.
func (s *RedisPasscodeStore) Put(ctx context.Context, phone string, rec PasscodeRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, passcodeKeyPrefix+phone, payload, ttl).Err()
}

// Get returns the live record for the phone. Redis reaps expired keys itself,
// so a timed-out passcode reads back as absent.
func (s *RedisPasscodeStore) Get(ctx context.Context, phone string) (*PasscodeRecord, error) {
	payload, err := s.client.Get(ctx, passcodeKeyPrefix+phone).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec PasscodeRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the record for the phone if present.
func (s *RedisPasscodeStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, passcodeKeyPrefix+phone).Err()
}
