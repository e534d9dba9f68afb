package otp

import (
	"fmt"
	"time"
)

const messageSubject = "Verify Email"

// renderMessage builds the email sent on issuance.
func renderMessage(code string, ttl time.Duration) (subject, body string) {
	return messageSubject, fmt.Sprintf("Your OTP code is %s. It will expire in %s.", code, describeTTL(ttl))
}

func describeTTL(ttl time.Duration) string {
	if ttl > 0 && ttl%time.Minute == 0 {
		if m := int(ttl / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	}
	return ttl.String()
}
