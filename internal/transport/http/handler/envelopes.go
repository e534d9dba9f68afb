package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campus-otp/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Token     string      `json:"token,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorCode domain.Kind `json:"error_code,omitempty"`
}

// VerificationEnvelope describes the identity carried by a verification token.
type VerificationEnvelope struct {
	Success    bool      `json:"success"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, kind domain.Kind) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: kind})
}
