package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("CART_TTL", "")

	cfg := Load()
	if cfg.Port != "8080" || cfg.DBDSN != "joyeria.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PaymentProvider != "sandbox" {
		t.Fatalf("want sandbox provider, got %q", cfg.PaymentProvider)
	}
	if cfg.CartTTL != 72*time.Hour {
		t.Fatalf("want 72h cart ttl, got %s", cfg.CartTTL)
	}
}

func TestLoadStripeWithoutKeyFallsBack(t *testing.T) {
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("STRIPE_SECRET_KEY", "")
	if got := Load().PaymentProvider; got != "sandbox" {
		t.Fatalf("want sandbox fallback, got %q", got)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("CART_TTL", "36h")
	if d := getDuration("CART_TTL", time.Hour); d != 36*time.Hour {
		t.Fatalf("want 36h, got %s", d)
	}
	t.Setenv("CART_TTL", "12")
	if d := getDuration("CART_TTL", time.Hour); d != 12*time.Hour {
		t.Fatalf("want 12h, got %s", d)
	}
	t.Setenv("CART_TTL", "soon")
	if d := getDuration("CART_TTL", time.Hour); d != time.Hour {
		t.Fatalf("want fallback, got %s", d)
	}
}

func TestMask(t *testing.T) {
	if mask("") != "" || mask("short") != "****" || mask("sk_test_abcdef") != "sk_t****" {
		t.Fatal("unexpected masking")
	}
}
