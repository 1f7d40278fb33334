package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucera/minicheck/internal/audit"
	"github.com/lucera/minicheck/internal/interpret"
	"github.com/lucera/minicheck/internal/minicheck"
	"github.com/lucera/minicheck/internal/platform/config"
	"github.com/lucera/minicheck/internal/platform/logger"
	"github.com/lucera/minicheck/internal/platform/metrics"
	"github.com/lucera/minicheck/internal/platform/middleware"
	"github.com/lucera/minicheck/internal/ratelimit"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	interpreter := interpret.NewOpenAI(interpret.Config{
		APIKey: cfg.OpenAI.APIKey,
		APIURL: cfg.OpenAI.APIURL,
		Model:  cfg.OpenAI.Model,
	})

	guard := minicheck.NewGuard(nil)
	fetcher := minicheck.NewFetcher(guard, minicheck.FetchConfig{
		Timeout:      cfg.FetchTimeout,
		MaxRedirects: cfg.MaxRedirects,
		MaxChars:     cfg.MaxPageChars,
	})
	engine := minicheck.NewEngine(guard, fetcher,
		minicheck.WithInterpreter(interpreter),
		minicheck.WithMetrics(m),
		minicheck.WithLogger(log),
	)

	transport := audit.NewTransport(audit.NewService(engine, log), log,
		audit.WithRequestTimeout(cfg.RequestTimeout),
		audit.WithInterpretation(interpreter.Enabled()),
		audit.WithCheckMiddleware(middleware.RateLimit(limiter, m, log)),
	)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	var handler http.Handler = mux
	handler = m.HTTPMiddleware(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.ClientIdentity(cfg.TrustForwardedFor)(handler)
	handler = middleware.RequestID(handler)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "llm", interpreter.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLimiter returns a Redis-backed limiter when REDIS_URL is set and an
// in-memory one otherwise.
func newLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("rate limiting in memory", "per_hour", cfg.RateLimitPerHour)
		return ratelimit.NewMemoryStore(cfg.RateLimitPerHour, time.Hour), func() {}, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := ratelimit.Dial(dialCtx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	log.Info("rate limiting in redis", "per_hour", cfg.RateLimitPerHour)
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("closing redis client", "error", err)
		}
	}
	return ratelimit.NewRedisStore(client, cfg.RateLimitPerHour, time.Hour), closeFn, nil
}
