package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL == "" {
		t.Fatal("expected a default API base URL")
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("unexpected API timeout: %v", cfg.API.Timeout)
	}
	if cfg.Checkout.PaymentDelay != 2*time.Second {
		t.Fatalf("unexpected payment delay: %v", cfg.Checkout.PaymentDelay)
	}
	if cfg.Checkout.DefaultSellerID != 1 {
		t.Fatalf("unexpected default seller id: %d", cfg.Checkout.DefaultSellerID)
	}
	if cfg.Redis.Configured() {
		t.Fatal("redis should not be configured by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "http://localhost:4000")
	t.Setenv(EnvCheckoutPaymentDelay, "50ms")
	t.Setenv(EnvRedisAddr, "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:4000" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.Checkout.PaymentDelay != 50*time.Millisecond {
		t.Fatalf("unexpected payment delay: %v", cfg.Checkout.PaymentDelay)
	}
	if !cfg.Redis.Configured() {
		t.Fatal("expected redis to be configured")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
