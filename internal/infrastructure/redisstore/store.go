// Package redisstore keeps OTP records in Redis, one JSON value per identity
// with the key expiring at the record's expiry.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campus-otp/internal/domain"
	"github.com/campus-otp/internal/pkg/otpcode"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// consumeScript deletes KEYS[1] only while its code_hash equals ARGV[1].
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return 0
end
local rec = cjson.decode(v)
if rec['code_hash'] ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func key(identity string) string { return keyPrefix + identity }

func (s *Store) FindByIdentity(ctx context.Context, identity string) (*domain.OTPRecord, error) {
	raw, err := s.client.Get(ctx, key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("otp for %s: %w", identity, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func (s *Store) FindByIdentityAndCode(ctx context.Context, identity, code string) (*domain.OTPRecord, error) {
	rec, err := s.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !otpcode.Matches(rec.CodeHash, code) {
		return nil, fmt.Errorf("otp for %s: %w", identity, domain.ErrNotFound)
	}
	return rec, nil
}

func (s *Store) Upsert(ctx context.Context, rec *domain.OTPRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	return s.client.SetArgs(ctx, key(rec.Identity), raw, redis.SetArgs{ExpireAt: time.Unix(rec.ExpiresAt, 0)}).Err()
}

func (s *Store) DeleteByIdentity(ctx context.Context, identity string) error {
	return s.client.Del(ctx, key(identity)).Err()
}

func (s *Store) Consume(ctx context.Context, rec *domain.OTPRecord) error {
	n, err := consumeScript.Run(ctx, s.client, []string{key(rec.Identity)}, rec.CodeHash).Int()
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("otp for %s: %w", rec.Identity, domain.ErrNotFound)
	}
	return nil
}

func decode(raw []byte) (*domain.OTPRecord, error) {
	var rec domain.OTPRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	return &rec, nil
}
