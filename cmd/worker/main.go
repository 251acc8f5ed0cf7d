package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/passwordguard/internal/config"
	"github.com/jwalitptl/passwordguard/internal/repository"
	"github.com/jwalitptl/passwordguard/internal/repository/postgres"
	"github.com/jwalitptl/passwordguard/pkg/logger"
	"github.com/jwalitptl/passwordguard/pkg/messaging/redis"
	"github.com/jwalitptl/passwordguard/pkg/metrics"
	"github.com/jwalitptl/passwordguard/pkg/worker"
)

// workerEnv holds the worker-only knobs that have no place in the shared
// config file.
type workerEnv struct {
	HealthPort      int           `envconfig:"HEALTH_PORT" default:"8081"`
	RetentionPeriod time.Duration `envconfig:"RETENTION_PERIOD" default:"168h"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
}

func setupHealthCheck(port int, l *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			l.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	l := logger.NewLogger(nil)
	log.Logger = l.ZL

	cfg, _, err := config.Load()
	if err != nil {
		l.Fatal(err, "failed to load configuration")
	}

	var env workerEnv
	if err := envconfig.Process("passwordguard_worker", &env); err != nil {
		l.Fatal(err, "failed to process worker environment")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		l.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		l.WithFields(map[string]interface{}{"component": "outbox_processor"}),
		metrics.NewMetrics("passwordguard", "worker"),
	)

	setupHealthCheck(env.HealthPort, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runOutboxCleanup(ctx, outboxRepo, env.RetentionPeriod, env.CleanupInterval, l)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		l.Info("shutting down worker")
		cancel()
	}()

	processor.Start(ctx)
}

// runOutboxCleanup drops processed events past the retention period so the
// outbox table stays bounded.
func runOutboxCleanup(ctx context.Context, repo repository.OutboxRepository, retention, interval time.Duration, l *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rows, err := repo.DeleteProcessedBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				l.Error(err, "failed to clean up processed outbox events")
				continue
			}
			if rows > 0 {
				l.Info("cleaned up processed outbox events", "rows", rows)
			}
		}
	}
}
