package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		DatabaseURL:            "postgres://localhost/fluxtotem",
		ProviderBaseURL:        "https://api.mercadopago.com",
		ProviderAccessToken:    "APP_USR-test",
		ProviderTimeout:        15 * time.Second,
		WebhookRateLimitPerMin: 60,
		WebhookRateLimitWindow: time.Minute,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "missingDatabaseURL", mutate: func(c *Config) { c.DatabaseURL = "" }, want: "DATABASE_URL"},
		{name: "missingCredential", mutate: func(c *Config) { c.ProviderAccessToken = ""; c.ProviderAccessTokenFile = "" }, want: "MP_ACCESS_TOKEN"},
		{name: "zeroTimeout", mutate: func(c *Config) { c.ProviderTimeout = 0 }, want: "MP_TIMEOUT"},
		{name: "zeroRateLimit", mutate: func(c *Config) { c.WebhookRateLimitPerMin = 0 }, want: "WEBHOOK_RATE_LIMIT_PER_MIN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestResolveProviderTokenPrefersExplicitValue(t *testing.T) {
	cfg := baseConfig()
	cfg.ProviderAccessToken = "explicit-token"
	cfg.ProviderAccessTokenFile = "/does/not/exist"
	token, err := cfg.ResolveProviderToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "explicit-token" {
		t.Fatalf("got %q, want explicit-token", token)
	}
}

func TestResolveProviderTokenFallsBackToSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mp_access_token")
	if err := os.WriteFile(path, []byte("file-token\n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}
	cfg := baseConfig()
	cfg.ProviderAccessToken = ""
	cfg.ProviderAccessTokenFile = path
	token, err := cfg.ResolveProviderToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "file-token" {
		t.Fatalf("got %q, want file-token", token)
	}
}

func TestResolveProviderTokenFailsWhenAbsent(t *testing.T) {
	cfg := baseConfig()
	cfg.ProviderAccessToken = ""
	cfg.ProviderAccessTokenFile = filepath.Join(t.TempDir(), "missing")
	if _, err := cfg.ResolveProviderToken(); err == nil {
		t.Fatal("expected error when no credential source is available")
	}
}
