package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEFAULT_FUNNEL_WINDOW", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DefaultFunnelWindow != 72*time.Hour {
		t.Fatalf("expected default funnel window 72h, got %s", cfg.DefaultFunnelWindow)
	}
	if cfg.OutboxPollInterval != 2*time.Second {
		t.Fatalf("expected default outbox poll interval, got %s", cfg.OutboxPollInterval)
	}
	if cfg.EmailProvider != "none" {
		t.Fatalf("expected email provider disabled by default, got %s", cfg.EmailProvider)
	}
	if cfg.NotifyRecipients != nil {
		t.Fatalf("expected no notify recipients by default, got %v", cfg.NotifyRecipients)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("DEFAULT_FUNNEL_WINDOW", "48h")
	t.Setenv("AUTOMATION_WEBHOOK_URL", "https://hooks.example.com/catch/1")
	t.Setenv("OUTBOX_BATCH_SIZE", "50")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("NOTIFY_RECIPIENTS", "owner@example.com, ops@example.com,")
	t.Setenv("CAPTURE_RATE_LIMIT", "2.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.DefaultFunnelWindow != 48*time.Hour {
		t.Fatalf("expected funnel window override, got %s", cfg.DefaultFunnelWindow)
	}
	if cfg.AutomationWebhookURL != "https://hooks.example.com/catch/1" {
		t.Fatalf("expected webhook override, got %s", cfg.AutomationWebhookURL)
	}
	if cfg.OutboxBatchSize != 50 {
		t.Fatalf("expected batch size override, got %d", cfg.OutboxBatchSize)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected provider lowercased, got %s", cfg.EmailProvider)
	}
	if len(cfg.NotifyRecipients) != 2 || cfg.NotifyRecipients[1] != "ops@example.com" {
		t.Fatalf("expected trimmed recipient list, got %v", cfg.NotifyRecipients)
	}
	if cfg.CaptureRateLimit != 2.5 {
		t.Fatalf("expected rate limit override, got %f", cfg.CaptureRateLimit)
	}
}
