package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

type Config struct {
	// Storage
	DataDir            string
	NamespaceCacheSize int
	NamespaceCacheTTL  time.Duration

	// Currency
	BaseCurrency string
	RatesFile    string

	// Logging
	LogLevel string

	// AMQP; an empty URL disables ledger events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Recurring worker
	RecurringInterval    time.Duration
	RecurringConcurrency int
}

func Load() *Config {
	return &Config{
		DataDir:            getEnv("DATA_DIR", "./data"),
		NamespaceCacheSize: getEnvInt("NAMESPACE_CACHE_SIZE", 128),
		NamespaceCacheTTL:  getEnvDuration("NAMESPACE_CACHE_TTL", 10*time.Minute),

		BaseCurrency: strings.ToUpper(getEnv("BASE_CURRENCY", "INR")),
		RatesFile:    getEnv("RATES_FILE", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		RecurringInterval:    getEnvDuration("RECURRING_INTERVAL", time.Hour),
		RecurringConcurrency: getEnvInt("RECURRING_CONCURRENCY", 4),
	}
}

// EventsEnabled reports whether an AMQP broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether records should be exported to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty")
	} else if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create data directory '%s': %v", c.DataDir, err))
	}

	if c.NamespaceCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid namespace cache size %d: must be at least 1", c.NamespaceCacheSize))
	}
	if c.NamespaceCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid namespace cache TTL %v: must be at least 1 second", c.NamespaceCacheTTL))
	}

	if !currencyCode.MatchString(c.BaseCurrency) {
		errors = append(errors, fmt.Sprintf("invalid base currency '%s': must be a 3-letter code", c.BaseCurrency))
	}
	if c.RatesFile != "" {
		if _, err := os.Stat(c.RatesFile); err != nil {
			errors = append(errors, fmt.Sprintf("rates file not readable: %s", c.RatesFile))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
	}

	if c.RecurringInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at least 1 second", c.RecurringInterval))
	} else if c.RecurringInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at most 24 hours", c.RecurringInterval))
	}
	if c.RecurringConcurrency < 1 || c.RecurringConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid recurring concurrency %d: must be between 1 and 64", c.RecurringConcurrency))
	}

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
