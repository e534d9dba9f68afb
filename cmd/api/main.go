package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-otp/internal/application/otp"
	"github.com/campus-otp/internal/config"
	"github.com/campus-otp/internal/infrastructure/dynamo"
	jwtinfra "github.com/campus-otp/internal/infrastructure/jwt"
	"github.com/campus-otp/internal/infrastructure/memory"
	"github.com/campus-otp/internal/infrastructure/reaper"
	"github.com/campus-otp/internal/infrastructure/redisstore"
	"github.com/campus-otp/internal/infrastructure/ses"
	"github.com/campus-otp/internal/infrastructure/smtp"
	transporthttp "github.com/campus-otp/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize otp store")
	}
	defer closeStore()

	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize mailer")
	}

	// JWT provider (optional; verification tokens are skipped without keys).
	var tokens *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		tokens = p
	} else {
		logger.WithError(err).Warn("JWT provider not available, verification tokens disabled")
	}

	deps := otp.ServiceDeps{
		Store:  store,
		Mailer: mailer,
		Logger: logger,
		Policy: otp.Policy{
			AllowedDomain: cfg.OTPAllowedDomain,
			TTL:           cfg.OTPTTL,
			CodeLength:    cfg.OTPLength,
			HashCost:      cfg.OTPHashCost,
			SendTimeout:   cfg.MailSendTimeout,
		},
	}
	routerDeps := &transporthttp.Deps{Logger: logger}
	if tokens != nil {
		deps.Tokens = tokens
		routerDeps.Verifier = tokens
	}
	svc, err := otp.NewService(deps)
	if err != nil {
		logger.WithError(err).Fatal("failed to build otp service")
	}
	routerDeps.OTPService = svc

	if cfg.OTPReaperInterval > 0 {
		if purger, ok := store.(otp.Purger); ok {
			rp, err := reaper.New(purger, cfg.OTPReaperInterval, logger)
			if err != nil {
				logger.WithError(err).Fatal("failed to start otp reaper")
			}
			rp.Start()
			defer func() { _ = rp.Shutdown() }()
		} else {
			logger.WithField("store", cfg.StoreDriver).Warn("store expires records itself, OTP_REAPER_INTERVAL ignored")
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, routerDeps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.MailSendTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.AppPort,
			"env":    cfg.AppEnv,
			"store":  cfg.StoreDriver,
			"mail":   cfg.MailProvider,
			"domain": cfg.OTPAllowedDomain,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
		return
	}
	logger.Info("server stopped")
}

// newStore selects the OTP store named by STORE_DRIVER.
func newStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (otp.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory otp store; records are lost on restart")
		return memory.NewStore(), func() {}, nil
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewStore(client), func() { _ = client.Close() }, nil
	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Create the OTP table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, logger)
		return dynamo.NewOTPRepo(client, cfg.DynamoTables.OTPs), func() {}, nil
	}
}

func newMailer(ctx context.Context, cfg *config.Config) (otp.Mailer, error) {
	if cfg.MailProvider == config.MailSES {
		m, err := ses.NewMailer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	m, err := smtp.NewMailer(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}
