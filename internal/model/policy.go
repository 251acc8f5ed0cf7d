package model

import "fmt"

// PasswordType mirrors how a candidate password arrives at the service.
// Complexity rules only apply to plaintext; pre-hashed values pass through
// untouched because there is nothing meaningful to inspect.
type PasswordType string

const (
	PasswordTypePlaintext PasswordType = "plaintext"
	PasswordTypeMD5       PasswordType = "md5"
	PasswordTypeSCRAM     PasswordType = "scram-sha-256"
)

// PolicySnapshot is the immutable bundle of complexity settings active for
// one evaluation. Configuration changes produce a new snapshot; an existing
// snapshot is never mutated, so concurrent evaluations can share one freely.
type PolicySnapshot struct {
	MinLength      int  `json:"min_length"`
	RequireUpper   bool `json:"require_upper"`
	RequireLower   bool `json:"require_lower"`
	RequireDigit   bool `json:"require_digit"`
	RequireSpecial bool `json:"require_special"`
	RejectUsername bool `json:"reject_username"`
	AdvisoryMode   bool `json:"advisory_mode"`

	// Generation increments on every snapshot replacement so decisions can
	// be traced back to the policy revision that produced them.
	Generation int64 `json:"generation"`
}

// DefaultPolicySnapshot returns the out-of-the-box policy.
func DefaultPolicySnapshot() PolicySnapshot {
	return PolicySnapshot{
		MinLength:      12,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
		RejectUsername: true,
		AdvisoryMode:   false,
	}
}

// PasswordCandidate is the ephemeral input to one evaluation: the raw
// plaintext and the account it is being set for. It exists only for the
// duration of the call and must never be persisted or logged.
type PasswordCandidate struct {
	Password string
	Username string
}

// ViolationCode identifies one specific rule a candidate failed.
type ViolationCode string

const (
	ViolationTooShort         ViolationCode = "too_short"
	ViolationMissingUppercase ViolationCode = "missing_uppercase"
	ViolationMissingLowercase ViolationCode = "missing_lowercase"
	ViolationMissingDigit     ViolationCode = "missing_digit"
	ViolationMissingSpecial   ViolationCode = "missing_special"
	ViolationContainsUsername ViolationCode = "contains_username"
)

// Violation is a single classified policy failure. Actual and Minimum are
// populated for too_short only. Violations carry no secret material.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Actual  int           `json:"actual,omitempty"`
	Minimum int           `json:"minimum,omitempty"`
}

// Detail returns the human-readable explanation for the violation.
func (v Violation) Detail() string {
	switch v.Code {
	case ViolationTooShort:
		return fmt.Sprintf("Password must be at least %d characters long.", v.Minimum)
	case ViolationMissingUppercase:
		return "Password must contain at least one uppercase letter."
	case ViolationMissingLowercase:
		return "Password must contain at least one lowercase letter."
	case ViolationMissingDigit:
		return "Password must contain at least one digit."
	case ViolationMissingSpecial:
		return "Password must contain at least one special character."
	case ViolationContainsUsername:
		return "Password must not contain the username."
	}
	return "Password does not meet complexity requirements."
}

// RejectionMessage is the umbrella message returned for a hard rejection.
const RejectionMessage = "password does not meet complexity requirements"

// PolicyResult is the outcome of one evaluation. An empty Violations slice
// means the candidate was accepted; a non-empty slice is ordered by the
// fixed rule order (length, upper, lower, digit, special, username).
type PolicyResult struct {
	Violations []Violation `json:"violations,omitempty"`
	Advisory   bool        `json:"advisory"`
}

// Accepted reports whether every enabled rule passed.
func (r PolicyResult) Accepted() bool {
	return len(r.Violations) == 0
}

// Codes returns the violation codes in order, for logging and audit rows.
func (r PolicyResult) Codes() []string {
	codes := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		codes = append(codes, string(v.Code))
	}
	return codes
}
