package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campus-otp/internal/domain"
	jwtinfra "github.com/campus-otp/internal/infrastructure/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenVerifier validates a verification token.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that validates the Bearer JWT and injects claims into context.
func Auth(verifier TokenVerifier, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header", domain.KindUnauthorized)
				return
			}
			claims, err := verifier.Verify(strings.TrimSpace(tokenStr))
			if err != nil {
				log.WithError(err).Debug("token verification failed")
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token", domain.KindUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
