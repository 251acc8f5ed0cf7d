package model

import (
	"time"

	"github.com/google/uuid"
)

type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
	DecisionFlagged  Decision = "flagged" // advisory mode: violations reported, operation not blocked
	DecisionSkipped  Decision = "skipped" // non-plaintext or cleared password, rules not applied
)

// DecisionRecord is the audit row written for every password check. It
// deliberately holds only the username, verdict and violation codes; the
// candidate password never reaches this type.
type DecisionRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	Decision         Decision  `db:"decision" json:"decision"`
	Advisory         bool      `db:"advisory" json:"advisory"`
	ViolationCodes   []string  `db:"-" json:"violation_codes,omitempty"`
	ViolationsJoined string    `db:"violations" json:"-"`
	PolicyGeneration int64     `db:"policy_generation" json:"policy_generation"`
	SourceIP         string    `db:"source_ip" json:"source_ip,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// CheckEvent is the outbox payload published for rejected or flagged checks.
type CheckEvent struct {
	DecisionID       uuid.UUID `json:"decision_id"`
	Username         string    `json:"username"`
	Decision         Decision  `json:"decision"`
	ViolationCodes   []string  `json:"violation_codes"`
	PolicyGeneration int64     `json:"policy_generation"`
	OccurredAt       time.Time `json:"occurred_at"`
}

const (
	EventTypeCheckRejected = "password.check.rejected"
	EventTypeCheckFlagged  = "password.check.flagged"
)
