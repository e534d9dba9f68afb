package domain

import (
	"strings"
	"time"
)

// OTPRecord is the single live one-time password for an identity.
// PK: email. ExpiresAt is a Unix timestamp used as DynamoDB TTL; validity is
// decided by ExpiresAtMs.
type OTPRecord struct {
	Identity    string `json:"email" dynamodbav:"email"`
	CodeHash    string `json:"code_hash" dynamodbav:"code_hash"` // bcrypt, never the plaintext code
	IssuedAt    int64  `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt   int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds, rounded up)
	ExpiresAtMs int64  `json:"expires_at_ms" dynamodbav:"expires_at_ms"`
}

// SetExpiry records exp in milliseconds. The seconds TTL is rounded up so
// storage never drops a record before it is logically expired.
func (r *OTPRecord) SetExpiry(exp time.Time) {
	r.ExpiresAtMs = exp.UnixMilli()
	r.ExpiresAt = exp.Add(time.Second - time.Nanosecond).Unix()
}

// Expired reports whether the record is no longer valid at now.
// Records without ExpiresAtMs fall back to the seconds TTL.
func (r *OTPRecord) Expired(now time.Time) bool {
	if r.ExpiresAtMs > 0 {
		return now.UnixMilli() >= r.ExpiresAtMs
	}
	return now.Unix() >= r.ExpiresAt
}

// ExpiresTime returns the expiry as a time.Time.
func (r *OTPRecord) ExpiresTime() time.Time {
	if r.ExpiresAtMs > 0 {
		return time.UnixMilli(r.ExpiresAtMs).UTC()
	}
	return time.Unix(r.ExpiresAt, 0).UTC()
}

// NormalizeIdentity trims and lower-cases an email address.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
