package handler

import (
	"net/http"

	"github.com/campus-otp/internal/domain"
)

// httpError maps a service error to a status, a caller-safe message and its kind.
// Server-side failures never expose the underlying cause.
func httpError(err error) (int, string, domain.Kind) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindInvalidRequest, domain.KindDomainRejected:
		return http.StatusBadRequest, err.Error(), kind
	case domain.KindInvalidOrExpired:
		return http.StatusBadRequest, "Invalid or expired OTP", kind
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, "unauthorized", kind
	case domain.KindDeliveryFailed:
		return http.StatusInternalServerError, "Failed to send OTP email", kind
	default:
		return http.StatusInternalServerError, "internal server error", domain.KindInternal
	}
}
