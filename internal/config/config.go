// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	API         APIConfig
	Store       StoreConfig
	Session     SessionConfig
	Payment     PaymentConfig
	Chat        ChatConfig
	AWS         AWSConfig
	Log         LogConfig
	I18n        I18nConfig
}

type APIConfig struct {
	BaseURL   string
	Timeout   int // in seconds
	RateLimit float64
	RateBurst int
}

type StoreConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type SessionConfig struct {
	Secret        string
	RefreshWindow int // in minutes
}

type PaymentConfig struct {
	Provider         string
	CheckoutURL      string
	CallbackHost     string
	CallbackPort     string
	CallbackTimeout  int // in seconds
	StripeSecretKey  string
	StripeMethod     string
	Currency         string
	USDToKRWRate     float64
	ProcessingFeeKRW int64
}

type ChatConfig struct {
	PollInterval   int // in milliseconds
	ReconcileDelay int // in milliseconds
	AutoPoll       bool
}

type AWSConfig struct {
	Sink            string
	ArchiveDir      string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
}

type LogConfig struct {
	Level  string
	Format string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		API: APIConfig{
			BaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
			Timeout:   getEnvAsInt("API_TIMEOUT", 30),
			RateLimit: getEnvAsFloat("API_RATE_LIMIT", 10),
			RateBurst: getEnvAsInt("API_RATE_BURST", 20),
		},
		Store: StoreConfig{
			Driver:       getEnv("STORE_DRIVER", "sqlite"),
			DSN:          getEnv("STORE_DSN", "vibing.db"),
			MaxOpenConns: getEnvAsInt("STORE_MAX_OPEN_CONNS", 5),
			MaxIdleConns: getEnvAsInt("STORE_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsInt("STORE_MAX_LIFETIME", 300),
			LogLevel:     getEnv("STORE_LOG_LEVEL", "silent"),
		},
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", ""),
			RefreshWindow: getEnvAsInt("SESSION_REFRESH_WINDOW", 5),
		},
		Payment: PaymentConfig{
			Provider:         getEnv("PAYMENT_PROVIDER", "redirect"),
			CheckoutURL:      getEnv("PAYMENT_CHECKOUT_URL", "http://localhost:5173/checkout"),
			CallbackHost:     getEnv("PAYMENT_CALLBACK_HOST", "127.0.0.1"),
			CallbackPort:     getEnv("PAYMENT_CALLBACK_PORT", "8787"),
			CallbackTimeout:  getEnvAsInt("PAYMENT_CALLBACK_TIMEOUT", 900),
			StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
			StripeMethod:     getEnv("STRIPE_PAYMENT_METHOD", "pm_card_visa"),
			Currency:         getEnv("PAYMENT_CURRENCY", "KRW"),
			USDToKRWRate:     getEnvAsFloat("USD_TO_KRW_RATE", 1300),
			ProcessingFeeKRW: int64(getEnvAsInt("PROCESSING_FEE_KRW", 1290)),
		},
		Chat: ChatConfig{
			PollInterval:   getEnvAsInt("CHAT_POLL_INTERVAL", 5000),
			ReconcileDelay: getEnvAsInt("CHAT_RECONCILE_DELAY", 500),
			AutoPoll:       getEnvAsBool("CHAT_AUTO_POLL", true),
		},
		AWS: AWSConfig{
			Sink:            getEnv("ARCHIVE_SINK", "file"),
			ArchiveDir:      getEnv("ARCHIVE_DIR", "./downloads"),
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			S3Prefix:        getEnv("AWS_S3_PREFIX", "purchases"),
			S3Endpoint:      getEnv("AWS_S3_ENDPOINT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "ko"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}

	if c.Session.Secret == "" && c.Environment == "production" {
		return fmt.Errorf("session secret is required in production")
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	switch c.Payment.Provider {
	case "redirect":
	case "stripe":
		if c.Payment.StripeSecretKey == "" {
			return fmt.Errorf("stripe secret key is required for the stripe payment provider")
		}
	default:
		return fmt.Errorf("unsupported payment provider %q", c.Payment.Provider)
	}

	switch c.AWS.Sink {
	case "file":
	case "s3":
		if c.AWS.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for the s3 archive sink")
		}
	default:
		return fmt.Errorf("unsupported archive sink %q", c.AWS.Sink)
	}

	return nil
}

func (a APIConfig) RequestTimeout() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

func (s SessionConfig) RefreshBefore() time.Duration {
	return time.Duration(s.RefreshWindow) * time.Minute
}

func (p PaymentConfig) CallbackAddr() string {
	return fmt.Sprintf("%s:%s", p.CallbackHost, p.CallbackPort)
}

func (p PaymentConfig) CallbackBaseURL() string {
	return fmt.Sprintf("http://%s", p.CallbackAddr())
}

func (p PaymentConfig) CallbackWait() time.Duration {
	return time.Duration(p.CallbackTimeout) * time.Second
}

func (c ChatConfig) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

func (c ChatConfig) ReconcileAfter() time.Duration {
	return time.Duration(c.ReconcileDelay) * time.Millisecond
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
