package otp

import (
	"context"
	"time"

	"github.com/campus-otp/internal/domain"
)

// Store persists at most one OTPRecord per identity.
// Lookups that find nothing return an error wrapping domain.ErrNotFound.
type Store interface {
	FindByIdentity(ctx context.Context, identity string) (*domain.OTPRecord, error)
	// FindByIdentityAndCode returns the record only when code matches its hash.
	FindByIdentityAndCode(ctx context.Context, identity, code string) (*domain.OTPRecord, error)
	// Upsert creates the record or overwrites code and expiry of the existing one.
	Upsert(ctx context.Context, rec *domain.OTPRecord) error
	DeleteByIdentity(ctx context.Context, identity string) error
	// Consume atomically deletes rec if the stored record still carries rec.CodeHash.
	// When another caller consumed or replaced it first, it returns domain.ErrNotFound.
	Consume(ctx context.Context, rec *domain.OTPRecord) error
}

// Purger is implemented by stores that can sweep expired records on demand.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// Mailer delivers a rendered message to a single recipient.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// TokenSigner issues a token attesting that identity was verified.
type TokenSigner interface {
	Sign(identity string) (string, error)
}

// CodeGenerator produces plaintext one-time codes.
type CodeGenerator interface {
	Generate() (string, error)
}
