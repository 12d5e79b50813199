package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected 30s read timeout, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Tax.DefaultRate != 19.0 {
		t.Errorf("expected default tax rate 19.0, got %f", cfg.Tax.DefaultRate)
	}
	if cfg.Tax.ReducedRate != 7.0 {
		t.Errorf("expected reduced tax rate 7.0, got %f", cfg.Tax.ReducedRate)
	}
	if cfg.Quote.NumberPrefix != "Q" || cfg.Quote.NumberPadding != 4 {
		t.Errorf("unexpected quote numbering config: %+v", cfg.Quote)
	}
	if cfg.Quote.DefaultValidityDays != 30 {
		t.Errorf("expected 30 validity days, got %d", cfg.Quote.DefaultValidityDays)
	}
	if cfg.Invoice.NumberPrefix != "INV" {
		t.Errorf("expected invoice prefix INV, got %q", cfg.Invoice.NumberPrefix)
	}
	if cfg.Locale.Currency != "EUR" {
		t.Errorf("expected currency EUR, got %q", cfg.Locale.Currency)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis to be disabled by default")
	}
	if !cfg.Database.AutoMigrate {
		t.Error("expected auto migrate to be enabled by default")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "crm",
		Password: "secret",
		Database: "clientdesk",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5432 user=crm password=secret dbname=clientdesk sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
