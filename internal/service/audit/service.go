package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/repository"
)

// Service records password-check decisions. Records carry the username,
// verdict and violation codes only; candidate passwords never reach this
// layer.
type Service struct {
	repo repository.DecisionRepository
}

func NewService(repo repository.DecisionRepository) *Service {
	return &Service{repo: repo}
}

type RecordOptions struct {
	ViolationCodes   []string
	PolicyGeneration int64
	SourceIP         string
}

// Record writes one decision row and returns its ID.
func (s *Service) Record(ctx context.Context, username string, decision model.Decision, advisory bool, opts *RecordOptions) (uuid.UUID, error) {
	record := &model.DecisionRecord{
		ID:        uuid.New(),
		Username:  username,
		Decision:  decision,
		Advisory:  advisory,
		CreatedAt: time.Now(),
	}
	if opts != nil {
		record.ViolationCodes = opts.ViolationCodes
		record.PolicyGeneration = opts.PolicyGeneration
		record.SourceIP = opts.SourceIP
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// History returns recent decisions for one account.
func (s *Service) History(ctx context.Context, username string, limit int) ([]*model.DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, username, limit)
}

// Cleanup drops decision rows older than the retention cutoff.
func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.Cleanup(ctx, before)
}
