// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read from the environment. Commands
// import github.com/joho/godotenv/autoload so a local .env file is honored.
type Config struct {
	Port     string
	LogLevel logrus.Level
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string

	// AdjustmentTimeout abandons an open round after this much inactivity.
	AdjustmentTimeout time.Duration
	// RandomSeed fixes allocation shuffles; 0 seeds from the clock.
	RandomSeed int64

	// RedisAddr enables the sealed-round archive when set.
	RedisAddr    string
	RedisDB      int
	ArchiveQueue string

	// TokenExpiry is the session token lifetime; 0 means tokens never expire.
	TokenExpiry     time.Duration
	OperatorKeyHash string

	DatabaseURL        string
	HistorianBatchSize int
	HistorianFlush     time.Duration
}

// Load reads the configuration. Malformed values are reported rather than
// silently replaced by defaults.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		ArchiveQueue:       getEnv("ARCHIVE_QUEUE_NAME", "debate_rounds"),
		OperatorKeyHash:    os.Getenv("OPERATOR_KEY_HASH"),
		DatabaseURL:        databaseURL(),
		RedisDB:            getEnvInt("REDIS_DB", 0, &errs),
		RandomSeed:         int64(getEnvInt("RANDOM_SEED", 0, &errs)),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20, &errs),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500, &errs)) * time.Millisecond,
		AdjustmentTimeout:  getEnvDuration("ADJUSTMENT_TIMEOUT", 10*time.Minute, &errs),
		TokenExpiry:        getEnvDuration("TOKEN_EXPIRE_TIME", 0, &errs),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	if cfg.HistorianBatchSize < 1 {
		errs = append(errs, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", cfg.HistorianBatchSize))
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// NewLogger returns a logrus logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the
// individual POSTGRES_* / PG_* variables.
func databaseURL() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	if os.Getenv("PG_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

func getEnvInt(key string, defVal int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defVal
	}
	return i
}

// getEnvDuration accepts Go durations ("90s", "10m"). "never" and "0" mean zero.
func getEnvDuration(key string, defVal time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	switch v {
	case "":
		return defVal
	case "never", "0":
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defVal
	}
	return d
}

// splitList splits a comma separated value, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
