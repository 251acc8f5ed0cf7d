// Package password is the integration layer around the policy evaluator:
// it chains externally registered checks, gates on password type, translates
// advisory versus enforcing outcomes, and records decisions. The evaluator
// itself stays pure; everything with a side effect lives here.
package password

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/passwordguard/internal/email"
	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/policy"
	"github.com/jwalitptl/passwordguard/internal/repository"
	"github.com/jwalitptl/passwordguard/internal/service/audit"
	"github.com/jwalitptl/passwordguard/pkg/metrics"
)

// CheckRequest describes one password-change attempt. Password is a pointer
// so a cleared password (nil) is distinguishable from an empty one.
type CheckRequest struct {
	Username     string
	Password     *string
	PasswordType model.PasswordType
	SourceIP     string
}

// CheckResponse carries the verdict back to the caller. Message is set for
// hard rejections only.
type CheckResponse struct {
	Decision   model.Decision     `json:"decision"`
	Result     model.PolicyResult `json:"result"`
	Message    string             `json:"message,omitempty"`
	Generation int64              `json:"policy_generation"`
}

// AdvisoryReporting configures the throttled advisory-mode email reports.
type AdvisoryReporting struct {
	Enabled  bool
	To       string
	Cooldown time.Duration
}

type Service struct {
	provider *policy.Provider
	chain    checkerChain
	auditor  *audit.Service
	outbox   repository.OutboxRepository
	emailSvc email.Service
	advisory AdvisoryReporting
	reported *gocache.Cache
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(
	provider *policy.Provider,
	auditor *audit.Service,
	outbox repository.OutboxRepository,
	emailSvc email.Service,
	advisory AdvisoryReporting,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	cooldown := advisory.Cooldown
	if cooldown <= 0 {
		cooldown = time.Hour
	}
	return &Service{
		provider: provider,
		auditor:  auditor,
		outbox:   outbox,
		emailSvc: emailSvc,
		advisory: advisory,
		reported: gocache.New(cooldown, 10*time.Minute),
		metrics:  m,
		logger:   logger,
	}
}

// RegisterChecker appends an external check that runs before the built-in
// policy, in registration order.
func (s *Service) RegisterChecker(c Checker) {
	s.chain.register(c)
}

// Check runs one password-change attempt through the chain and the policy.
//
// Non-plaintext input and cleared passwords skip the rules entirely: there
// is nothing meaningful to evaluate, and existing credentials are never
// re-checked. The raw password is confined to this call; it is never
// logged, stored, or attached to the response.
func (s *Service) Check(ctx context.Context, req CheckRequest) (*CheckResponse, error) {
	snap := s.provider.Snapshot()

	cand := model.PasswordCandidate{Username: req.Username}
	if req.Password != nil {
		cand.Password = *req.Password
	}

	// Registered checks see every change attempt, including pre-hashed and
	// cleared passwords the built-in rules will not inspect. They run before
	// any gating so checks registered earlier always get their say first.
	if err := s.chain.run(ctx, cand); err != nil {
		s.metrics.ChecksTotal.WithLabelValues(string(model.DecisionRejected)).Inc()
		s.record(ctx, req, snap, model.DecisionRejected, nil)
		return &CheckResponse{
			Decision:   model.DecisionRejected,
			Result:     model.PolicyResult{},
			Message:    err.Error(),
			Generation: snap.Generation,
		}, nil
	}

	if req.PasswordType != model.PasswordTypePlaintext {
		s.logger.Debug().Str("username", req.Username).Msg("skipping non-plaintext password")
		return s.skip(ctx, req, snap)
	}
	if req.Password == nil {
		s.logger.Debug().Str("username", req.Username).Msg("password cleared, nothing to check")
		return s.skip(ctx, req, snap)
	}

	timer := prometheus.NewTimer(s.metrics.EvaluationDuration)
	result, err := policy.Evaluate(snap, cand)
	timer.ObserveDuration()
	if err != nil {
		return nil, err
	}

	if result.Accepted() {
		s.metrics.ChecksTotal.WithLabelValues(string(model.DecisionAccepted)).Inc()
		s.record(ctx, req, snap, model.DecisionAccepted, nil)
		return &CheckResponse{
			Decision:   model.DecisionAccepted,
			Result:     result,
			Generation: snap.Generation,
		}, nil
	}

	for _, code := range result.Codes() {
		s.metrics.ViolationsTotal.WithLabelValues(code).Inc()
	}

	if result.Advisory {
		s.logViolations(req.Username, result)
		s.metrics.ChecksTotal.WithLabelValues(string(model.DecisionFlagged)).Inc()
		s.record(ctx, req, snap, model.DecisionFlagged, &result)
		s.maybeSendAdvisoryReport(ctx, req.Username, result)
		return &CheckResponse{
			Decision:   model.DecisionFlagged,
			Result:     result,
			Generation: snap.Generation,
		}, nil
	}

	s.metrics.ChecksTotal.WithLabelValues(string(model.DecisionRejected)).Inc()
	s.record(ctx, req, snap, model.DecisionRejected, &result)
	return &CheckResponse{
		Decision:   model.DecisionRejected,
		Result:     result,
		Message:    model.RejectionMessage,
		Generation: snap.Generation,
	}, nil
}

func (s *Service) skip(ctx context.Context, req CheckRequest, snap model.PolicySnapshot) (*CheckResponse, error) {
	s.metrics.ChecksTotal.WithLabelValues(string(model.DecisionSkipped)).Inc()
	s.record(ctx, req, snap, model.DecisionSkipped, nil)
	return &CheckResponse{
		Decision:   model.DecisionSkipped,
		Generation: snap.Generation,
	}, nil
}

func (s *Service) logViolations(username string, result model.PolicyResult) {
	for _, v := range result.Violations {
		s.logger.Warn().
			Str("username", username).
			Str("violation", string(v.Code)).
			Msg("password policy violation (advisory mode)")
	}
}

func (s *Service) record(ctx context.Context, req CheckRequest, snap model.PolicySnapshot, decision model.Decision, result *model.PolicyResult) {
	opts := &audit.RecordOptions{
		PolicyGeneration: snap.Generation,
		SourceIP:         req.SourceIP,
	}
	advisory := false
	if result != nil {
		opts.ViolationCodes = result.Codes()
		advisory = result.Advisory
	}

	decisionID, err := s.auditor.Record(ctx, req.Username, decision, advisory, opts)
	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("failed to record decision")
		return
	}

	if decision != model.DecisionRejected && decision != model.DecisionFlagged {
		return
	}

	eventType := model.EventTypeCheckRejected
	if decision == model.DecisionFlagged {
		eventType = model.EventTypeCheckFlagged
	}
	payload, err := json.Marshal(model.CheckEvent{
		DecisionID:       decisionID,
		Username:         req.Username,
		Decision:         decision,
		ViolationCodes:   opts.ViolationCodes,
		PolicyGeneration: snap.Generation,
		OccurredAt:       time.Now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal check event")
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{EventType: eventType, Payload: payload}); err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("failed to enqueue check event")
	}
}

// maybeSendAdvisoryReport emails the security contact at most once per
// cooldown window per account, so a user retrying a weak password does not
// flood the inbox. The throttle key is set only after a successful send; a
// failed send leaves the next advisory hit free to try again.
func (s *Service) maybeSendAdvisoryReport(ctx context.Context, username string, result model.PolicyResult) {
	if !s.advisory.Enabled || s.advisory.To == "" || s.emailSvc == nil {
		return
	}
	if _, recently := s.reported.Get(username); recently {
		return
	}

	if err := s.emailSvc.SendAdvisoryReport(ctx, s.advisory.To, username, result.Violations); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to send advisory report")
		return
	}
	s.reported.SetDefault(username, struct{}{})
}
