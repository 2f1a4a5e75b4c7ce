package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string

	ProviderBaseURL         string
	ProviderAccessToken     string
	ProviderAccessTokenFile string
	ProviderTimeout         time.Duration

	WebhookCallbackURL     string
	WebhookSecret          string
	WebhookRateLimitPerMin int
	WebhookRateLimitWindow time.Duration
	WebhookTrustedCIDRs    []string

	RedisURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		ProviderBaseURL:         getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
		ProviderAccessToken:     os.Getenv("MP_ACCESS_TOKEN"),
		ProviderAccessTokenFile: getEnv("MP_ACCESS_TOKEN_FILE", "/run/secrets/mp_access_token"),
		WebhookCallbackURL:      os.Getenv("WEBHOOK_CALLBACK_URL"),
		WebhookSecret:           os.Getenv("WEBHOOK_SECRET"),
		WebhookRateLimitPerMin:  getEnvInt("WEBHOOK_RATE_LIMIT_PER_MIN", 60),
		WebhookTrustedCIDRs:     splitCSV(os.Getenv("WEBHOOK_TRUSTED_CIDRS")),
		RedisURL:                os.Getenv("REDIS_URL"),
	}

	timeout, err := time.ParseDuration(getEnv("MP_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("parse MP_TIMEOUT: %w", err)
	}
	cfg.ProviderTimeout = timeout

	window, err := time.ParseDuration(getEnv("WEBHOOK_RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("parse WEBHOOK_RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.WebhookRateLimitWindow = window

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.ProviderBaseURL == "" {
		errs = append(errs, "MP_BASE_URL is required")
	}
	if c.ProviderAccessToken == "" && c.ProviderAccessTokenFile == "" {
		errs = append(errs, "MP_ACCESS_TOKEN or MP_ACCESS_TOKEN_FILE is required")
	}
	if c.ProviderTimeout <= 0 || c.ProviderTimeout > time.Minute {
		errs = append(errs, "MP_TIMEOUT must be between 1s and 1m")
	}
	if c.WebhookRateLimitPerMin <= 0 {
		errs = append(errs, "WEBHOOK_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.WebhookRateLimitWindow <= 0 {
		errs = append(errs, "WEBHOOK_RATE_LIMIT_WINDOW must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ResolveProviderToken resolves the provider credential: an explicit token
// takes precedence, otherwise the mounted secret file is read.
func (c *Config) ResolveProviderToken() (string, error) {
	if c.ProviderAccessToken != "" {
		return c.ProviderAccessToken, nil
	}
	if c.ProviderAccessTokenFile != "" {
		raw, err := os.ReadFile(c.ProviderAccessTokenFile)
		if err != nil {
			return "", fmt.Errorf("read provider token file: %w", err)
		}
		token := strings.TrimSpace(string(raw))
		if token != "" {
			return token, nil
		}
	}
	return "", errors.New("provider access token is not configured")
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
