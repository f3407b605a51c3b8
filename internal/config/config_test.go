package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"STORAGE_DRIVER":   "",
		"HISTORY_CAPACITY": "",
		"CURRENCIES":       "",
		"DEFAULT_CURRENCY": "",
		"PORT":             "",
	})
	require.NoError(t, err)
	require.Equal(t, DriverFile, cfg.StorageDriver)
	require.Equal(t, 20, cfg.HistoryCapacity)
	require.Equal(t, "USD", cfg.DefaultCurrency)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	symbol, ok := cfg.Currencies.Symbol("eur")
	require.True(t, ok)
	require.Equal(t, "€", symbol)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"STORAGE_DRIVER":    "REDIS",
		"REDIS_URL":         "redis://localhost:6379/0",
		"HISTORY_CAPACITY":  "0",
		"CURRENCIES":        "IDR:Rp, usd:$",
		"DEFAULT_CURRENCY":  "idr",
		"RATE_LIMIT_WINDOW": "30s",
		"PORT":              ":9090",
	})
	require.NoError(t, err)
	require.Equal(t, DriverRedis, cfg.StorageDriver)
	require.Equal(t, 20, cfg.HistoryCapacity)
	require.Equal(t, "IDR", cfg.DefaultCurrency)
	require.Equal(t, Currencies{"IDR": "Rp", "USD": "$"}, cfg.Currencies)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.Equal(t, ":9090", cfg.HTTPAddr())
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := LoadForTests(map[string]string{"STORAGE_DRIVER": "redis", "REDIS_URL": ""})
	require.Error(t, err)

	_, err = LoadForTests(map[string]string{"STORAGE_DRIVER": "s3"})
	require.Error(t, err)

	_, err = LoadForTests(map[string]string{"STORAGE_DRIVER": "memory", "CURRENCIES": "USD"})
	require.Error(t, err)

	_, err = LoadForTests(map[string]string{"STORAGE_DRIVER": "memory", "CURRENCIES": "USD:$", "DEFAULT_CURRENCY": "EUR"})
	require.Error(t, err)
}
