package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dossier/internal/auth"
	"dossier/internal/governor"
	governormetrics "dossier/internal/governor/metrics"
	"dossier/internal/governor/store/window"
	"dossier/internal/platform/config"
	"dossier/internal/platform/httpserver"
	"dossier/internal/platform/logger"
	"dossier/internal/platform/middleware"
	platformredis "dossier/internal/platform/redis"
	"dossier/internal/search/handler"
	searchmetrics "dossier/internal/search/metrics"
	"dossier/internal/search/service"
	"dossier/internal/source"
	"dossier/internal/source/feed"
	"dossier/internal/source/profile"
	"dossier/pkg/platform/audit"
	auditkafka "dossier/pkg/platform/audit/kafka"
	auditmemory "dossier/pkg/platform/audit/store/memory"
	auditpostgres "dossier/pkg/platform/audit/store/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	// Audit trail: durable store when Postgres is configured, plus an
	// optional Kafka sink for downstream consumers.
	var sinks []audit.Sink
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return err
		}
		if _, err := db.Exec(auditpostgres.Schema); err != nil {
			return err
		}
		sinks = append(sinks, auditpostgres.New(db))
		log.Info("audit events persisted to postgres")
	} else {
		sinks = append(sinks, auditmemory.NewStore())
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("audit events shipped to kafka", "topic", cfg.KafkaTopic)
	}
	var sink audit.Sink = sinks[0]
	if len(sinks) > 1 {
		sink = audit.Fanout(sinks...)
	}
	publisher := audit.NewPublisher(sink, audit.WithAsyncBuffer(256))
	defer publisher.Close()

	// Admission governor. With Redis configured, replicas share one polite
	// budget; otherwise the window lives in process memory.
	govOpts := []governor.Option{
		governor.WithLogger(log),
		governor.WithMetrics(governormetrics.New()),
		governor.WithAudit(publisher),
	}
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		govOpts = append(govOpts, governor.WithWindowStore(
			window.NewRedis(redisClient.Client, "dossier:governor:window"),
		))
		log.Info("governor window backed by redis")
	}
	gov := governor.New(governor.Config{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		MaxConcurrent:     cfg.MaxConcurrent,
	}, govOpts...)

	// Source adapters.
	registry := source.NewRegistry()
	for _, adapter := range profile.ForPlatforms(profile.DefaultPlatforms(), profile.WithLogger(log)) {
		if err := registry.Register(adapter); err != nil {
			return err
		}
	}
	for _, adapter := range feed.ForFeeds(cfg.Feeds, feed.WithLogger(log)) {
		if err := registry.Register(adapter); err != nil {
			return err
		}
	}
	log.Info("source adapters registered", "count", len(registry.All()))

	// Search orchestrator.
	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(searchmetrics.New()),
		service.WithAudit(publisher),
	}
	if cfg.SearchTimeout > 0 {
		svcOpts = append(svcOpts, service.WithTimeout(cfg.SearchTimeout))
	}
	svc, err := service.New(registry, gov, svcOpts...)
	if err != nil {
		return err
	}

	// HTTP surface.
	var validator middleware.JWTValidator
	if cfg.APISigningKey != "" {
		validator = auth.NewService(cfg.APISigningKey, "dossier")
	} else {
		log.Warn("DOSSIER_API_SIGNING_KEY not set, search endpoint is unauthenticated")
	}

	router := chi.NewRouter()
	router.Get("/healthz", healthz(redisClient))
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log, validator).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting dossier", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// healthz reports process liveness and, when configured, Redis health.
func healthz(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
