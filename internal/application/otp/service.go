package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus-otp/internal/domain"
	"github.com/campus-otp/internal/pkg/otpcode"
	"github.com/campus-otp/internal/pkg/validate"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAllowedDomain = "sggs.ac.in"
	DefaultTTL           = 10 * time.Minute
)

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

type RequestOTPResult struct {
	Accepted  bool
	Identity  string
	ExpiresAt time.Time
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type VerifyOTPResult struct {
	Verified bool
	Identity string
	// Token is empty when no TokenSigner is configured.
	Token string
}

// Service issues and verifies email one-time passwords.
type Service interface {
	RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResult, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error)
}

// Policy is the injected configuration of the OTP lifecycle.
type Policy struct {
	AllowedDomain string
	TTL           time.Duration
	CodeLength    int
	HashCost      int
	// SendTimeout bounds a single delivery attempt; zero means no extra bound.
	SendTimeout time.Duration
}

type ServiceDeps struct {
	Store  Store
	Mailer Mailer
	// Tokens is optional.
	Tokens TokenSigner
	// Codes defaults to a crypto/rand generator of Policy.CodeLength digits.
	Codes  CodeGenerator
	Now    func() time.Time
	Logger *logrus.Logger
	Policy Policy
}

type service struct {
	store  Store
	mailer Mailer
	tokens TokenSigner
	codes  CodeGenerator
	now    func() time.Time
	log    *logrus.Logger
	policy Policy
	suffix string
}

func NewService(deps ServiceDeps) (Service, error) {
	if deps.Store == nil || deps.Mailer == nil {
		return nil, errors.New("otp service requires a store and a mailer")
	}
	p := deps.Policy
	if p.AllowedDomain == "" {
		p.AllowedDomain = DefaultAllowedDomain
	}
	if p.TTL <= 0 {
		p.TTL = DefaultTTL
	}
	if p.CodeLength == 0 {
		p.CodeLength = otpcode.DefaultDigits
	}
	if err := otpcode.CheckCost(p.HashCost); err != nil {
		return nil, fmt.Errorf("otp policy: %w", err)
	}
	codes := deps.Codes
	if codes == nil {
		g, err := otpcode.NewGenerator(p.CodeLength)
		if err != nil {
			return nil, err
		}
		codes = g
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		store:  deps.Store,
		mailer: deps.Mailer,
		tokens: deps.Tokens,
		codes:  codes,
		now:    now,
		log:    log,
		policy: p,
		suffix: "@" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(p.AllowedDomain)), "@"),
	}, nil
}

func (s *service) RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	identity, err := s.identity(req.Email)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.Generate()
	if err != nil {
		return nil, err
	}
	hash, err := otpcode.Hash(code, s.policy.HashCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rec := &domain.OTPRecord{
		Identity: identity,
		CodeHash: hash,
		IssuedAt: now.Unix(),
	}
	rec.SetExpiry(now.Add(s.policy.TTL))
	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist otp: %w", err)
	}

	subject, body := renderMessage(code, s.policy.TTL)
	sendCtx := ctx
	if s.policy.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.policy.SendTimeout)
		defer cancel()
	}
	if err := s.mailer.SendEmail(sendCtx, identity, subject, body); err != nil {
		// The record stays persisted; callers may retry the request wholesale.
		s.log.WithError(err).WithField("email", identity).Error("failed to send otp email")
		return nil, fmt.Errorf("send otp: %w: %w", domain.ErrDeliveryFailed, err)
	}

	s.log.WithFields(logrus.Fields{
		"email":      identity,
		"expires_at": rec.ExpiresTime().Format(time.RFC3339),
	}).Info("otp issued")
	return &RequestOTPResult{Accepted: true, Identity: identity, ExpiresAt: rec.ExpiresTime()}, nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	identity, err := s.identity(req.Email)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.OTP)
	if code == "" {
		return nil, fmt.Errorf("otp is required: %w", domain.ErrInvalidRequest)
	}
	entry := s.log.WithField("email", identity)

	if !otpcode.Valid(code, s.policy.CodeLength) {
		entry.Debug("otp rejected: malformed code")
		return nil, domain.ErrInvalidOrExpired
	}
	rec, err := s.store.FindByIdentityAndCode(ctx, identity, code)
	if errors.Is(err, domain.ErrNotFound) {
		entry.Debug("otp rejected: no matching record")
		return nil, domain.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("lookup otp: %w", err)
	}
	if rec.Expired(s.now()) {
		entry.Debug("otp rejected: expired")
		return nil, domain.ErrInvalidOrExpired
	}
	if err := s.store.Consume(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			entry.Debug("otp rejected: consumed concurrently")
			return nil, domain.ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("consume otp: %w", err)
	}

	res := &VerifyOTPResult{Verified: true, Identity: identity}
	if s.tokens != nil {
		token, err := s.tokens.Sign(identity)
		if err != nil {
			// The code is already consumed; verification still stands.
			entry.WithError(err).Error("failed to sign verification token")
		} else {
			res.Token = token
		}
	}
	entry.Info("otp verified")
	return res, nil
}

// identity normalizes email and enforces the accepted domain suffix.
func (s *service) identity(email string) (string, error) {
	identity := domain.NormalizeIdentity(email)
	if identity == "" {
		return "", fmt.Errorf("email is required: %w", domain.ErrInvalidRequest)
	}
	if !strings.HasSuffix(identity, s.suffix) {
		return "", fmt.Errorf("only %s addresses are accepted: %w", s.suffix, domain.ErrDomainRejected)
	}
	if len(identity) == len(s.suffix) {
		return "", fmt.Errorf("email local part is missing: %w", domain.ErrInvalidRequest)
	}
	return identity, nil
}
