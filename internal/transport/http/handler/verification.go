package handler

import (
	"net/http"

	"github.com/campus-otp/internal/domain"
	"github.com/campus-otp/internal/transport/http/middleware"
)

// VerificationHandler reports the identity proven by a verification token.
type VerificationHandler struct{}

func NewVerificationHandler() *VerificationHandler { return &VerificationHandler{} }

func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", domain.KindUnauthorized)
		return
	}
	env := VerificationEnvelope{Success: true, Email: claims.Subject, VerifiedAt: claims.VerifiedAt()}
	if claims.ExpiresAt != nil {
		env.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	writeJSON(w, http.StatusOK, env)
}
