package http

import (
	"net/http"

	"github.com/campus-otp/internal/config"
	"github.com/campus-otp/internal/transport/http/handler"
	appmiddleware "github.com/campus-otp/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(deps.OTPService, deps.Logger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Post("/otp/request", otpH.Request)
		r.Post("/otp/verify", otpH.Verify)

		if deps.Verifier != nil {
			verificationH := handler.NewVerificationHandler()
			r.With(appmiddleware.Auth(deps.Verifier, deps.Logger)).Get("/verification", verificationH.Get)
		}
	})

	return r
}
