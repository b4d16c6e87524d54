package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mlagarde/colloscope/internal/analytics"
	"github.com/mlagarde/colloscope/internal/lookup/cache"
	"github.com/mlagarde/colloscope/internal/lookup/handler"
	"github.com/mlagarde/colloscope/internal/roster/store"
	"github.com/mlagarde/colloscope/pkg/config"
	"github.com/mlagarde/colloscope/pkg/health"
	"github.com/mlagarde/colloscope/pkg/kafka"
	"github.com/mlagarde/colloscope/pkg/logger"
	"github.com/mlagarde/colloscope/pkg/metrics"
	"github.com/mlagarde/colloscope/pkg/middleware"
	"github.com/mlagarde/colloscope/pkg/postgres"
	pkgredis "github.com/mlagarde/colloscope/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting roster lookup service", "port", cfg.Server.Port)

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rosterStore := store.New(db)

	var lookupCache *cache.LookupCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, lookup caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		lookupCache = cache.New(redisClient, cfg.Redis)
		slog.Info("lookup cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Roster.PreloadIDs) > 0 {
		preload(ctx, cfg, rosterStore, m)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.LookupEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	// Roster re-imports invalidate the snapshot and any cached lookups.
	refreshConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RosterUpdated, onRosterUpdated(rosterStore, lookupCache, m))
	go func() {
		if err := refreshConsumer.Start(ctx); err != nil {
			slog.Error("roster refresh consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := rosterStore.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d rosters loaded", rosterStore.LoadedCount())}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(rosterStore, lookupCache, collector, m, cfg.Lookup)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/rosters/{id}/lookup", h.Lookup)
	mux.HandleFunc("GET /api/v1/rosters/{id}/groups/{group}/agenda", h.Agenda)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("DELETE /api/v1/rosters/{id}/cache", h.InvalidateCache)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	limiter := middleware.NewLimiter(cfg.Lookup.RateLimitWindow)

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RateLimit(limiter, cfg.Lookup.RateLimitPerWindow)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("roster lookup service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("roster lookup service stopped")
}

// preload warms the snapshot store with the configured rosters so the
// first lookup does not pay the load cost. Failures are logged, not
// fatal: a missing roster loads lazily later.
func preload(ctx context.Context, cfg *config.Config, st *store.Store, m *metrics.Metrics) {
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Roster.LoadTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(loadCtx)
	g.SetLimit(4)
	for _, id := range cfg.Roster.PreloadIDs {
		g.Go(func() error {
			snap, err := st.Load(gctx, id)
			if err != nil {
				m.RosterLoadsTotal.WithLabelValues("error").Inc()
				slog.Warn("roster preload failed", "roster_id", id, "error", err)
				return nil
			}
			m.RosterLoadsTotal.WithLabelValues("ok").Inc()
			m.RosterStudents.WithLabelValues(strconv.FormatInt(id, 10)).Set(float64(snap.Index.Len()))
			return nil
		})
	}
	g.Wait()
	m.LoadedRosters.Set(float64(st.LoadedCount()))
	slog.Info("roster preload complete", "loaded", st.LoadedCount())
}

// onRosterUpdated refreshes the in-memory snapshot and flushes cached
// lookups when a roster document changes.
func onRosterUpdated(st *store.Store, lc *cache.LookupCache, m *metrics.Metrics) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[analytics.RosterEvent](value)
		if err != nil {
			slog.Error("failed to decode roster update", "error", err)
			return nil
		}
		snap, err := st.Refresh(ctx, event.RosterID)
		if err != nil {
			m.RosterLoadsTotal.WithLabelValues("error").Inc()
			slog.Error("roster refresh failed", "roster_id", event.RosterID, "error", err)
			return nil
		}
		m.RosterLoadsTotal.WithLabelValues("refresh").Inc()
		m.RosterStudents.WithLabelValues(strconv.FormatInt(event.RosterID, 10)).Set(float64(snap.Index.Len()))
		m.LoadedRosters.Set(float64(st.LoadedCount()))
		if lc != nil {
			if err := lc.InvalidateRoster(ctx, event.RosterID); err != nil {
				slog.Error("cache invalidation failed", "roster_id", event.RosterID, "error", err)
			}
		}
		slog.Info("roster refreshed", "roster_id", event.RosterID, "students", snap.Index.Len())
		return nil
	}
}
