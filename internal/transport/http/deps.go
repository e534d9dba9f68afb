package http

import (
	"github.com/campus-otp/internal/application/otp"
	"github.com/campus-otp/internal/transport/http/middleware"
	"github.com/sirupsen/logrus"
)

// Deps holds the services the router exposes.
type Deps struct {
	OTPService otp.Service
	// Verifier enables GET /v1/verification; nil leaves the route unmounted.
	Verifier middleware.TokenVerifier
	Logger   *logrus.Logger
}
