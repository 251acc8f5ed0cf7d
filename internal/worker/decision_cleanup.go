package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/passwordguard/internal/service/audit"
)

// DecisionCleanupWorker trims old rows from the decision audit trail so the
// table does not grow without bound.
type DecisionCleanupWorker struct {
	auditor         *audit.Service
	retentionDays   int
	cleanupInterval time.Duration
	logger          zerolog.Logger
}

func NewDecisionCleanupWorker(auditor *audit.Service, retentionDays int, cleanupInterval time.Duration, logger zerolog.Logger) *DecisionCleanupWorker {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	return &DecisionCleanupWorker{
		auditor:         auditor,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

func (w *DecisionCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *DecisionCleanupWorker) cleanup(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.auditor.Cleanup(ctx, cutoff)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to clean up decision records")
		return
	}

	w.logger.Info().
		Int64("rows", rows).
		Time("cutoff", cutoff).
		Msg("cleaned up old decision records")
}
