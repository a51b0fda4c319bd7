package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Alert sink names accepted in ALERT_SINKS.
const (
	SinkLog       = "log"
	SinkAMQP      = "amqp"
	SinkWebsocket = "websocket"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	// Writes per client per minute; 0 disables the limit
	WriteRateLimit int
	// Proxies whose forwarding headers are trusted, as IPs or CIDRs
	TrustedProxies []string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Alerts
	AlertSinks          []string
	AlertExpenseTypeID  int
	AlertPublishTimeout time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Users created at startup, for backends without user management
	SeedUsers []string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		WriteRateLimit:  getEnvInt("WRITE_RATE_LIMIT", 60),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES", nil),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/mywallet.db"),

		AlertSinks:          getEnvList("ALERT_SINKS", []string{SinkLog}),
		AlertExpenseTypeID:  getEnvInt("ALERT_EXPENSE_TYPE_ID", 1),
		AlertPublishTimeout: getEnvDuration("ALERT_PUBLISH_TIMEOUT", 2*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "mywallet"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		SeedUsers: getEnvList("SEED_USERS", nil),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// HasSink reports whether name is among the configured alert sinks.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.AlertSinks, name)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.WriteRateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid write rate limit %d: must not be negative", c.WriteRateLimit))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate alert sinks
	validSinks := []string{SinkLog, SinkAMQP, SinkWebsocket}
	for _, s := range c.AlertSinks {
		if !slices.Contains(validSinks, s) {
			errors = append(errors, fmt.Sprintf("invalid alert sink '%s': must be one of %v", s, validSinks))
		}
	}
	if c.AlertExpenseTypeID < 1 {
		errors = append(errors, fmt.Sprintf("invalid expense transaction type id %d: must be positive", c.AlertExpenseTypeID))
	}
	if c.AlertPublishTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid alert publish timeout %v: must be positive", c.AlertPublishTimeout))
	} else if c.AlertPublishTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid alert publish timeout %v: must be at most 1 minute", c.AlertPublishTimeout))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
	}
	if c.HasSink(SinkAMQP) {
		if c.AMQPURL == "" {
			errors = append(errors, "AMQP URL is required when the amqp alert sink is enabled")
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when the amqp alert sink is enabled")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when the amqp alert sink is enabled")
		}
	}

	for _, email := range c.SeedUsers {
		if !strings.Contains(email, "@") {
			errors = append(errors, fmt.Sprintf("invalid seed user '%s': must be an email address", email))
		}
	}

	// Validate logging
	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
