package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

// Backend and cache kinds accepted by Validate.
var (
	ValidBackends   = []string{"memory", "sqlite", "bolt"}
	ValidCacheKinds = []string{"lru", "ristretto", "none"}
)

type Config struct {
	// HTTP Server
	Port string
	// RateLimit caps mutating requests per client per minute; 0 disables it
	RateLimit int

	// Storage
	DataBackend   string
	DataDirectory string
	SQLiteDBPath  string
	BoltDBPath    string

	// Ledger
	DefaultBudget string
	PageSize      int

	// View cache
	CacheKind string
	CacheSize int
	CacheTTL  time.Duration

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Backup worker
	BackupDirectory string
	BackupInterval  time.Duration

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8081"),
		RateLimit: getEnvInt("RATE_LIMIT", 60),

		DataBackend:   getEnv("DATA_BACKEND", "memory"),
		DataDirectory: getEnv("DATA_DIRECTORY", "data"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/kharcha.db"),
		BoltDBPath:    getEnv("BOLT_DB_PATH", "./data/kharcha.bolt"),

		DefaultBudget: getEnv("DEFAULT_BUDGET", "30000"),
		PageSize:      getEnvInt("PAGE_SIZE", 5),

		CacheKind: getEnv("CACHE_KIND", "lru"),
		CacheSize: getEnvInt("CACHE_SIZE", 64),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kharcha"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		BackupDirectory: getEnv("BACKUP_DIRECTORY", "./data/backups"),
		BackupInterval:  getEnvDuration("BACKUP_INTERVAL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Budget returns the configured default budget, or 30000 when it does not parse.
func (c *Config) Budget() core.Money {
	if m, err := core.ParseMoney(c.DefaultBudget); err == nil {
		return m
	}
	return core.Units(30000)
}

// Level returns the slog level for LogLevel, info when unknown.
func (c *Config) Level() slog.Level {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be 0 or more", c.RateLimit))
	}

	if !slices.Contains(ValidBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		errors = append(errors, checkFilePath("SQLite database", c.SQLiteDBPath)...)
	case "bolt":
		errors = append(errors, checkFilePath("bolt database", c.BoltDBPath)...)
	}

	if _, err := core.ParseMoney(c.DefaultBudget); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default budget '%s': must be a positive amount", c.DefaultBudget))
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be between 1 and 100", c.PageSize))
	}

	if !slices.Contains(ValidCacheKinds, c.CacheKind) {
		errors = append(errors, fmt.Sprintf("invalid cache kind '%s': must be one of %v", c.CacheKind, ValidCacheKinds))
	} else if c.CacheKind != "none" {
		if c.CacheSize < 1 {
			errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
		}
		if c.CacheTTL < time.Second {
			errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
		}
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

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks what the backup worker needs on top of Validate: a
// broker to consume from, a store shared with the server and a backup
// directory.
func (c *Config) ValidateWorker() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the backup worker")
	}
	if c.DataBackend != "sqlite" {
		errors = append(errors, fmt.Sprintf("backup worker needs the sqlite backend, got '%s'", c.DataBackend))
	}
	if c.BackupDirectory == "" {
		errors = append(errors, "backup directory cannot be empty")
	} else if err := os.MkdirAll(c.BackupDirectory, 0755); err != nil {
		errors = append(errors, fmt.Sprintf("cannot create backup directory '%s': %v", c.BackupDirectory, err))
	}
	if c.BackupInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid backup interval %v: must be at least 1 minute", c.BackupInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// checkFilePath requires a non-empty path whose directory exists or can be created.
func checkFilePath(what, path string) []string {
	if path == "" {
		return []string{fmt.Sprintf("%s path cannot be empty", what)}
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return []string{fmt.Sprintf("cannot create %s directory '%s': %v", what, dir, err)}
		}
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
