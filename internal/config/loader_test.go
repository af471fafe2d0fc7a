package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"ROOMBOOK_HTTP_PORT",
			"ROOMBOOK_DB_PATH",
			"ROOMBOOK_DB_BUSY_TIMEOUT",
			"ROOMBOOK_SESSION_TTL",
			"ROOMBOOK_SESSION_PURGE_INTERVAL",
			"ROOMBOOK_LOG_LEVEL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.DatabasePath != "roombook.db" {
			t.Fatalf("unexpected default database path: %q", cfg.DatabasePath)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected default session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected default log level info, got %s", cfg.LogLevel)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("ROOMBOOK_HTTP_PORT", "9090")
		t.Setenv("ROOMBOOK_DB_PATH", "/tmp/roombook.db")
		t.Setenv("ROOMBOOK_DB_BUSY_TIMEOUT", "10s")
		t.Setenv("ROOMBOOK_SESSION_TTL", "24h")
		t.Setenv("ROOMBOOK_SESSION_PURGE_INTERVAL", "30m")
		t.Setenv("ROOMBOOK_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.DatabasePath != "/tmp/roombook.db" {
			t.Fatalf("unexpected database path: %q", cfg.DatabasePath)
		}
		if cfg.DatabaseBusyTimeout != 10*time.Second {
			t.Fatalf("expected busy timeout 10s, got %s", cfg.DatabaseBusyTimeout)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.SessionPurgeInterval != 30*time.Minute {
			t.Fatalf("expected purge interval 30m, got %s", cfg.SessionPurgeInterval)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected log level debug, got %s", cfg.LogLevel)
		}
	})

	t.Run("collects every invalid value into one error", func(t *testing.T) {
		t.Setenv("ROOMBOOK_HTTP_PORT", "-1")
		t.Setenv("ROOMBOOK_SESSION_TTL", "soon")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment variable values: ROOMBOOK_HTTP_PORT, ROOMBOOK_SESSION_TTL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects unknown log levels", func(t *testing.T) {
		t.Setenv("ROOMBOOK_LOG_LEVEL", "loud")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for unknown log level")
		}
	})
}
