// Package memory is a process-local OTP store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campus-otp/internal/domain"
	"github.com/campus-otp/internal/pkg/otpcode"
)

// Store keeps one record per identity in a map guarded by a mutex.
type Store struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
}

func NewStore() *Store {
	return &Store{records: make(map[string]domain.OTPRecord)}
}

func (s *Store) FindByIdentity(_ context.Context, identity string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	if !ok {
		return nil, fmt.Errorf("otp for %s: %w", identity, domain.ErrNotFound)
	}
	return &rec, nil
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

func (s *Store) Upsert(_ context.Context, rec *domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Identity] = *rec
	return nil
}

func (s *Store) DeleteByIdentity(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identity)
	return nil
}

func (s *Store) Consume(_ context.Context, rec *domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[rec.Identity]
	if !ok || cur.CodeHash != rec.CodeHash {
		return fmt.Errorf("otp for %s: %w", rec.Identity, domain.ErrNotFound)
	}
	delete(s.records, rec.Identity)
	return nil
}

// PurgeExpired removes every record expired at now and returns how many were removed.
func (s *Store) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for identity, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, identity)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
