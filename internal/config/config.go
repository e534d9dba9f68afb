package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/campus-otp/internal/pkg/otpcode"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDynamo = "dynamo"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Mail providers accepted by MAIL_PROVIDER.
const (
	MailSMTP = "smtp"
	MailSES  = "ses"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	AllowedOrigins []string // CORS allowed origins

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	StoreDriver string
	RedisURL    string

	MailProvider    string
	SMTPHost        string
	SMTPPort        int
	SMTPFrom        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPTLSPolicy   string
	SESRegion       string
	MailSendTimeout time.Duration

	OTPAllowedDomain  string
	OTPTTL            time.Duration
	OTPLength         int
	OTPHashCost       int
	OTPReaperInterval time.Duration // zero disables the sweep

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	JWTIssuer         string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	OTPs string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	region := getEnv("AWS_REGION", "ap-south-1")
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		AWSRegion:      region,
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			OTPs: getEnv("DYNAMO_TABLE_OTPS", "otps"),
		},

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDynamo)),
		RedisURL:    getEnv("REDIS_URL", ""),

		MailProvider:    strings.ToLower(getEnv("MAIL_PROVIDER", MailSMTP)),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@sggs.ac.in"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPTLSPolicy:   strings.ToLower(getEnv("SMTP_TLS_POLICY", "mandatory")),
		SESRegion:       getEnv("SES_REGION", region),
		MailSendTimeout: getEnvDuration("MAIL_SEND_TIMEOUT", 15*time.Second),

		OTPAllowedDomain:  getEnv("OTP_ALLOWED_DOMAIN", "sggs.ac.in"),
		OTPTTL:            getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPLength:         getEnvInt("OTP_LENGTH", 6),
		OTPHashCost:       getEnvInt("OTP_HASH_COST", 10),
		OTPReaperInterval: getEnvDuration("OTP_REAPER_INTERVAL", 0),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		JWTIssuer:         getEnv("JWT_ISSUER", "campus-otp"),
	}
}

// Validate reports every invalid combination at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDynamo, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORE_DRIVER=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.MailProvider {
	case MailSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when MAIL_PROVIDER=smtp"))
		}
		switch c.SMTPTLSPolicy {
		case "mandatory", "opportunistic", "none":
		default:
			errs = append(errs, fmt.Errorf("unknown SMTP_TLS_POLICY %q", c.SMTPTLSPolicy))
		}
	case MailSES:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider))
	}
	if c.SMTPFrom == "" {
		errs = append(errs, errors.New("SMTP_FROM is required"))
	}

	if strings.Trim(c.OTPAllowedDomain, "@ ") == "" {
		errs = append(errs, errors.New("OTP_ALLOWED_DOMAIN must not be empty"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if c.OTPLength < 1 || c.OTPLength > 18 {
		errs = append(errs, errors.New("OTP_LENGTH must be between 1 and 18"))
	}
	if err := otpcode.CheckCost(c.OTPHashCost); err != nil {
		errs = append(errs, fmt.Errorf("OTP_HASH_COST: %w", err))
	}
	if c.OTPReaperInterval < 0 {
		errs = append(errs, errors.New("OTP_REAPER_INTERVAL must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("10m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
