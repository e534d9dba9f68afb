package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so transports can map them to status codes without leaking storage details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidRequest   = errors.New("invalid request")
	ErrDomainRejected   = errors.New("email domain not accepted")
	ErrDeliveryFailed   = errors.New("otp delivery failed")
	ErrInvalidOrExpired = errors.New("invalid or expired otp")
)

// Kind is a stable, transport-independent name for an error class.
type Kind string

const (
	KindInvalidRequest   Kind = "INVALID_REQUEST"
	KindDomainRejected   Kind = "DOMAIN_REJECTED"
	KindDeliveryFailed   Kind = "DELIVERY_FAILED"
	KindInvalidOrExpired Kind = "INVALID_OR_EXPIRED"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindInternal         Kind = "INTERNAL"
)

// KindOf classifies err. Anything not wrapping a known sentinel is KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrDomainRejected):
		return KindDomainRejected
	case errors.Is(err, ErrDeliveryFailed):
		return KindDeliveryFailed
	case errors.Is(err, ErrInvalidOrExpired):
		return KindInvalidOrExpired
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// IsClientError reports whether the kind is caused by the caller's input.
func (k Kind) IsClientError() bool {
	switch k {
	case KindInvalidRequest, KindDomainRejected, KindInvalidOrExpired, KindUnauthorized:
		return true
	}
	return false
}
