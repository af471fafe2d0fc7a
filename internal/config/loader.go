package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort             int
	DatabasePath         string
	DatabaseBusyTimeout  time.Duration
	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	LogLevel             slog.Level
}

// Load parses configuration values from the current process environment.
//
// Every field has a default, so an empty environment yields a working
// configuration. Invalid values are reported together rather than one
// at a time.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:             8080,
		DatabasePath:         "roombook.db",
		DatabaseBusyTimeout:  5 * time.Second,
		SessionTTL:           12 * time.Hour,
		SessionPurgeInterval: time.Hour,
		LogLevel:             slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := strings.TrimSpace(os.Getenv("ROOMBOOK_DB_PATH")); path != "" {
		cfg.DatabasePath = path
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("ROOMBOOK_DB_BUSY_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "ROOMBOOK_DB_BUSY_TIMEOUT")
		} else {
			cfg.DatabaseBusyTimeout = timeout
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("ROOMBOOK_SESSION_PURGE_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "ROOMBOOK_SESSION_PURGE_INTERVAL")
		} else {
			cfg.SessionPurgeInterval = interval
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("ROOMBOOK_LOG_LEVEL")); levelValue != "" {
		level, ok := parseLogLevel(levelValue)
		if !ok {
			invalid = append(invalid, "ROOMBOOK_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func parseLogLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
