package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/config"
	"github.com/noah-isme/profitpro/internal/storage"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	currencies, err := config.ParseCurrencies("USD:$,EUR:€")
	require.NoError(t, err)
	return &config.Config{
		StorageDriver:    driver,
		StorageDir:       filepath.Join(t.TempDir(), "data"),
		StorageKeyPrefix: "profitpro:",
		HistoryCapacity:  20,
		DefaultCurrency:  "USD",
		Currencies:       currencies,
	}
}

var fixed = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

func TestBuildFileDriverPersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	ctx := context.Background()

	deps, err := Build(ctx, cfg, zerolog.Nop(), Options{Now: fixed})
	require.NoError(t, err)
	calc, err := deps.Profit.Calculate(ctx, calculator.Inputs{CostPrice: 10, SellingPrice: 20, Quantity: 5, VATPercent: 10, DiscountPercent: 5, Shipping: 2, CurrencyCode: "EUR"})
	require.NoError(t, err)
	require.Equal(t, "€", calc.CurrencySymbol)
	require.NoError(t, deps.Close())

	_, err = os.Stat(filepath.Join(cfg.StorageDir, storage.SlotHistory+".json"))
	require.NoError(t, err)

	restarted, err := Build(ctx, cfg, zerolog.Nop(), Options{Now: fixed})
	require.NoError(t, err)
	require.Equal(t, []calculator.Calculation{calc}, restarted.History.Entries())

	next, err := restarted.Profit.Calculate(ctx, calc.Inputs)
	require.NoError(t, err)
	require.Greater(t, next.ID, calc.ID, "ids continue past persisted entries")
}

func TestBuildCorruptLedgerStartsEmpty(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	require.NoError(t, os.MkdirAll(cfg.StorageDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StorageDir, "history.json"), []byte("{not json"), 0o600))

	deps, err := Build(context.Background(), cfg, zerolog.Nop(), Options{})
	require.NoError(t, err)
	require.Zero(t, deps.History.Len())
}

func TestBuildRedisDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, config.DriverRedis)
	cfg.RedisURL = "redis://" + mr.Addr()

	deps, err := Build(context.Background(), cfg, zerolog.Nop(), Options{Now: fixed})
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })
	require.NotNil(t, deps.Redis)
	_, guarded := deps.Storage.(storage.Guarded)
	require.True(t, guarded)

	_, err = deps.Profit.Calculate(context.Background(), calculator.Inputs{CostPrice: 1, SellingPrice: 2, Quantity: 1})
	require.NoError(t, err)
	require.True(t, mr.Exists("profitpro:history"))
}

func TestBuildRedisUnavailable(t *testing.T) {
	cfg := testConfig(t, config.DriverRedis)
	cfg.RedisURL = "redis://127.0.0.1:1"
	_, err := Build(context.Background(), cfg, zerolog.Nop(), Options{})
	require.Error(t, err)
}
