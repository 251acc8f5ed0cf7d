package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/passwordguard/internal/model"
)

// DecisionRepository stores the audit trail of password-check verdicts.
type DecisionRepository interface {
	Create(ctx context.Context, record *model.DecisionRecord) error
	List(ctx context.Context, username string, limit int) ([]*model.DecisionRecord, error)
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

// OutboxRepository stores pending decision events for asynchronous publishing.
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
