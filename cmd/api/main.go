package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/passwordguard/internal/config"
	"github.com/jwalitptl/passwordguard/internal/email"
	"github.com/jwalitptl/passwordguard/internal/handler"
	adminHandler "github.com/jwalitptl/passwordguard/internal/handler/admin"
	passwordHandler "github.com/jwalitptl/passwordguard/internal/handler/password"
	policyHandler "github.com/jwalitptl/passwordguard/internal/handler/policy"
	"github.com/jwalitptl/passwordguard/internal/middleware"
	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/policy"
	"github.com/jwalitptl/passwordguard/internal/repository/postgres"
	"github.com/jwalitptl/passwordguard/internal/router"
	"github.com/jwalitptl/passwordguard/internal/service/audit"
	passwordService "github.com/jwalitptl/passwordguard/internal/service/password"
	cleanupWorker "github.com/jwalitptl/passwordguard/internal/worker"
	"github.com/jwalitptl/passwordguard/pkg/auth"
	"github.com/jwalitptl/passwordguard/pkg/metrics"
	"github.com/jwalitptl/passwordguard/pkg/security"
)

func main() {
	cfg, loader, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	decisionRepo := postgres.NewDecisionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.NewMetrics("passwordguard", "api")

	provider := policy.NewProvider(cfg.PolicySnapshot())
	m.PolicyGeneration.Set(float64(provider.Snapshot().Generation))

	// Config-file edits install a new snapshot without a restart; the reload
	// endpoint does the same on demand.
	loader.WatchPolicy(func(snap model.PolicySnapshot) {
		if snap.MinLength < 0 {
			log.Warn().Int("min_length", snap.MinLength).Msg("ignoring reloaded policy with negative min_length")
			return
		}
		gen := provider.Replace(snap)
		m.PolicyReloads.Inc()
		m.PolicyGeneration.Set(float64(gen))
		log.Info().Int64("generation", gen).Msg("policy reloaded from config file")
	})

	auditSvc := audit.NewService(decisionRepo)

	var mailer email.Service
	if cfg.Advisory.ReportingEnabled {
		mailer = email.NewService(cfg.SMTP)
	}

	checkSvc := passwordService.NewService(
		provider,
		auditSvc,
		outboxRepo,
		mailer,
		passwordService.AdvisoryReporting{
			Enabled:  cfg.Advisory.ReportingEnabled,
			To:       cfg.Advisory.ReportEmail,
			Cooldown: cfg.Advisory.ReportCooldown,
		},
		m,
		log.Logger,
	)

	jwtSvc := auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry)
	adminAuth := middleware.NewAdminAuthMiddleware(jwtSvc, security.NewBcryptVerifier(cfg.Admin.APIKeyHash))

	r := router.NewRouter(
		adminAuth,
		passwordHandler.NewHandler(checkSvc),
		policyHandler.NewHandler(provider, loader, m, log.Logger),
		adminHandler.NewHandler(jwtSvc, auditSvc, log.Logger),
		handler.NewHandler(db),
		router.Config{
			RateLimitEnabled:  cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			RequestTimeout:    cfg.Server.RequestTimeout,
			MetricsPrefix:     "passwordguard_http",
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup := cleanupWorker.NewDecisionCleanupWorker(auditSvc, 90, 24*time.Hour, log.Logger)
	go cleanup.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
