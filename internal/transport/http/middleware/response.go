package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/campus-otp/internal/domain"
)

// writeJSONError writes the same failure envelope the handlers use.
func writeJSONError(w http.ResponseWriter, status int, msg string, kind domain.Kind) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"error":      msg,
		"error_code": kind,
	})
}
