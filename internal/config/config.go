package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Storage drivers understood by STORAGE_DRIVER.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

const defaultCurrencies = "USD:$,EUR:€,GBP:£,INR:₹,JPY:¥"

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv               string
	Port                 string
	CORSAllowedOrigins   []string
	StorageDriver        string
	StorageDir           string
	StorageKeyPrefix     string
	RedisURL             string
	StorageRetryAttempts int
	StorageBreakerOpen   time.Duration
	HistoryCapacity      int
	DefaultCurrency      string
	Currencies           Currencies
	RateLimitWindow      time.Duration
	RateLimitMax         int
	BodyLimitBytes       int64
	IdempotencyTTL       time.Duration
	SecurityHeaders      bool
	HealthStorageTimeout time.Duration
	LogFormat            string
	LogLevel             string
	MetricsNamespace     string
	MetricsEnabled       bool
	MetricsBucketsMS     string
	TracingEnabled       bool
	TracingEndpoint      string
	TracingExporter      string
	TracingSampling      float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	currencies, err := ParseCurrencies(valueOrDefault(k.String("CURRENCIES"), defaultCurrencies))
	if err != nil {
		return nil, fmt.Errorf("CURRENCIES: %w", err)
	}

	cfg := &Config{
		AppEnv:               valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                 valueOrDefault(k.String("PORT"), "8080"),
		CORSAllowedOrigins:   splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		StorageDriver:        strings.ToLower(valueOrDefault(k.String("STORAGE_DRIVER"), DriverFile)),
		StorageDir:           valueOrDefault(k.String("STORAGE_DIR"), ".profitpro"),
		StorageKeyPrefix:     valueOrDefault(k.String("STORAGE_KEY_PREFIX"), "profitpro:"),
		RedisURL:             strings.TrimSpace(k.String("REDIS_URL")),
		StorageRetryAttempts: parsePositiveInt(k.String("STORAGE_RETRY_ATTEMPTS"), 2),
		StorageBreakerOpen:   parseDuration(k.String("STORAGE_BREAKER_OPEN_FOR"), "30s"),
		HistoryCapacity:      parsePositiveInt(k.String("HISTORY_CAPACITY"), 20),
		DefaultCurrency:      strings.ToUpper(valueOrDefault(k.String("DEFAULT_CURRENCY"), "USD")),
		Currencies:           currencies,
		RateLimitWindow:      parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:         parsePositiveInt(k.String("RATE_LIMIT_MAX"), 120),
		BodyLimitBytes:       int64(parsePositiveInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),
		IdempotencyTTL:       parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),
		SecurityHeaders:      parseBoolDefault(k.String("SECURITY_HEADERS"), true),
		HealthStorageTimeout: parseDuration(k.String("HEALTH_STORAGE_TIMEOUT"), "300ms"),
		LogFormat:            valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:             valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace:     valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "profitpro"),
		MetricsEnabled:       parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsBucketsMS:     k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:       parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
		TracingEndpoint:      k.String("OBS_OTLP_ENDPOINT"),
		TracingExporter:      valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		TracingSampling:      parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
	}

	switch cfg.StorageDriver {
	case DriverFile, DriverMemory:
	case DriverRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when STORAGE_DRIVER=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if _, ok := cfg.Currencies.Symbol(cfg.DefaultCurrency); !ok {
		return nil, fmt.Errorf("DEFAULT_CURRENCY %s is not in CURRENCIES", cfg.DefaultCurrency)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parsePositiveInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
