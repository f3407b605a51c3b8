package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/profitpro/internal/app"
	"github.com/noah-isme/profitpro/internal/common"
	"github.com/noah-isme/profitpro/internal/config"
	"github.com/noah-isme/profitpro/internal/contact"
	"github.com/noah-isme/profitpro/internal/health"
	"github.com/noah-isme/profitpro/internal/obs"
	"github.com/noah-isme/profitpro/internal/profit"
	"github.com/noah-isme/profitpro/internal/ratelimit"
	"github.com/noah-isme/profitpro/internal/resilience"
	"github.com/noah-isme/profitpro/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	if cfg.MetricsEnabled {
		resilience.MustRegisterMetrics(cfg.MetricsNamespace, nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "profitpro-api",
			Endpoint:      cfg.TracingEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := app.Build(ctx, cfg, logger, app.Options{
		InstrumentRedis: tracingEnabled,
		Metrics:         cfg.MetricsEnabled,
	})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error().Err(err).Msg("close dependencies")
		}
	}()

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsMS), nil)
	}

	r := newRouter(cfg, deps, logger, httpMetrics, tracingEnabled)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		health.SetReady(false)
		logger.Info().Msg("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageDriver).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func newRouter(cfg *config.Config, deps *app.Dependencies, logger zerolog.Logger, httpMetrics *obs.HTTPMetrics, tracingEnabled bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.CORS(cfg.CORSAllowedOrigins))
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.AppEnv == "production"}.Middleware)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), os.Getenv("SECURE_PPROF_BASIC_AUTH_USER"), os.Getenv("SECURE_PPROF_BASIC_AUTH_PASS")))
	}

	healthHandler := health.Handler{
		Checker:        health.StorageChecker{Storage: deps.Storage},
		StorageTimeout: cfg.HealthStorageTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	profitHandler := &profit.Handler{Svc: deps.Profit, Themes: deps.Themes, Logger: logger}
	contactHandler := &contact.Handler{Svc: contact.NewService(logger)}

	limits := ratelimit.Handler{
		Limiter: deps.Limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	idem := common.Idem{Prefix: cfg.StorageKeyPrefix, TTL: cfg.IdempotencyTTL}
	if deps.Redis != nil {
		idem.R = deps.Redis
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(limits.Middleware)
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		v.Use(idem.Middleware)
		profitHandler.Routes(v)
		v.Post("/contact", contactHandler.Submit)
	})
	return r
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		mux.Handle("/"+name, pprof.Handler(name))
	}
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
