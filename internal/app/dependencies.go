package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profitpro/internal/calculator"
	"github.com/noah-isme/profitpro/internal/config"
	"github.com/noah-isme/profitpro/internal/history"
	"github.com/noah-isme/profitpro/internal/preferences"
	"github.com/noah-isme/profitpro/internal/profit"
	"github.com/noah-isme/profitpro/internal/ratelimit"
	"github.com/noah-isme/profitpro/internal/resilience"
	"github.com/noah-isme/profitpro/internal/storage"
)

// Dependencies holds the services shared by the API server and the CLI.
type Dependencies struct {
	Config  *config.Config
	Redis   *redis.Client
	Storage storage.Storage
	History *history.Store
	Themes  preferences.Themes
	Profit  *profit.Service
	Limiter ratelimit.Allower
}

// Options tweaks Build for a particular entrypoint.
type Options struct {
	// InstrumentRedis enables redisotel tracing and, with Metrics, metrics.
	InstrumentRedis bool
	Metrics         bool
	// Now overrides the clock used for ids and timestamps.
	Now func() time.Time
}

// Build wires storage, the history ledger and the calculation service from
// cfg, then loads the persisted ledger. Load never fails; a corrupt ledger
// only shows up in logs and metrics.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}

	switch cfg.StorageDriver {
	case config.DriverRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL, logger, opts)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
		deps.Storage = storage.NewRedisStore(client, cfg.StorageKeyPrefix)
		deps.Limiter = ratelimit.SlidingWindow{Client: client, Prefix: cfg.StorageKeyPrefix + "ratelimit:"}
	case config.DriverMemory:
		deps.Storage = storage.NewMemoryStore()
		deps.Limiter = ratelimit.NewMemoryLimiter(cfg.StorageKeyPrefix + "ratelimit")
	default:
		deps.Storage = storage.NewFileStore(cfg.StorageDir)
		deps.Limiter = ratelimit.NewMemoryLimiter(cfg.StorageKeyPrefix + "ratelimit")
	}
	if cfg.StorageDriver != config.DriverMemory {
		deps.Storage = storage.Guarded{
			Storage: deps.Storage,
			Breaker: resilience.NewBreaker(5, 0.5, cfg.StorageBreakerOpen).
				WithTarget(cfg.StorageDriver).
				WithLogger(logger),
			Attempts: cfg.StorageRetryAttempts,
			Backoff:  50 * time.Millisecond,
		}
	}

	ledger, err := history.NewStore(history.Config{
		Storage:  deps.Storage,
		Capacity: cfg.HistoryCapacity,
		IDs:      history.NewIDSequence(opts.Now),
		Logger:   &logger,
	})
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("initialise history: %w", err)
	}
	loaded := ledger.Load(ctx)
	logger.Info().Str("driver", cfg.StorageDriver).Int("entries", len(loaded)).Msg("history loaded")

	deps.History = ledger
	deps.Themes = preferences.Themes{Storage: deps.Storage}
	deps.Profit = &profit.Service{
		Calc:            calculator.Calculator{Now: opts.Now},
		History:         ledger,
		Currencies:      cfg.Currencies,
		DefaultCurrency: cfg.DefaultCurrency,
	}
	return deps, nil
}

// NewRedisClient parses url, optionally instruments the client and checks connectivity.
func NewRedisClient(ctx context.Context, url string, logger zerolog.Logger, opts Options) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if opts.InstrumentRedis {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if opts.Metrics {
			if err := redisotel.InstrumentMetrics(client); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Close releases external connections.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
