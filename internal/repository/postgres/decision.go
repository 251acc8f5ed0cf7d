package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/repository"
)

type decisionRepository struct {
	db *sqlx.DB
}

func NewDecisionRepository(db *sqlx.DB) repository.DecisionRepository {
	return &decisionRepository{db: db}
}

func (r *decisionRepository) Create(ctx context.Context, record *model.DecisionRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.ViolationsJoined = strings.Join(record.ViolationCodes, ",")

	query := `
		INSERT INTO password_check_decisions (
			id, username, decision, advisory, violations, policy_generation, source_ip, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Username,
		record.Decision,
		record.Advisory,
		record.ViolationsJoined,
		record.PolicyGeneration,
		record.SourceIP,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create decision record: %w", err)
	}
	return nil
}

func (r *decisionRepository) List(ctx context.Context, username string, limit int) ([]*model.DecisionRecord, error) {
	query := `
		SELECT id, username, decision, advisory, violations, policy_generation, source_ip, created_at
		FROM password_check_decisions
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var records []*model.DecisionRecord
	err := r.db.SelectContext(ctx, &records, query, username, limit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list decision records: %w", err)
	}

	for _, rec := range records {
		if rec.ViolationsJoined != "" {
			rec.ViolationCodes = strings.Split(rec.ViolationsJoined, ",")
		}
	}
	return records, nil
}

func (r *decisionRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM password_check_decisions WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup decision records: %w", err)
	}
	return result.RowsAffected()
}
