// Package policy implements the password-complexity evaluator and the
// snapshot provider that feeds it.
//
// Evaluate is a pure function: no I/O, no logging, no shared state. All
// integration concerns (hook chaining, advisory handling, auditing) live in
// the service layer.
package policy

import (
	"errors"
	"strings"

	"github.com/jwalitptl/passwordguard/internal/model"
)

// ErrInvalidSnapshot signals caller misuse (a snapshot that the
// configuration layer should never have produced), not a policy outcome.
var ErrInvalidSnapshot = errors.New("policy snapshot has negative minimum length")

// Evaluate classifies one candidate against one policy snapshot.
//
// Rules run in a fixed order for reproducible violation ordering:
//
//  1. Minimum length. A failure returns immediately with exactly one
//     too_short violation; the remaining rules are not evaluated.
//  2. A single pass over the password bytes classifying each into upper,
//     lower, digit or special. Any byte outside the ASCII letter/digit
//     ranges counts as special, non-ASCII included. Missing required
//     classes are reported in upper, lower, digit, special order.
//  3. Case-insensitive username containment, when enabled and a username
//     is present.
//
// Policy failure is a value, never an error; the error return fires only
// for contract violations by the caller.
func Evaluate(snap model.PolicySnapshot, cand model.PasswordCandidate) (model.PolicyResult, error) {
	if snap.MinLength < 0 {
		return model.PolicyResult{}, ErrInvalidSnapshot
	}

	result := model.PolicyResult{Advisory: snap.AdvisoryMode}

	if len(cand.Password) < snap.MinLength {
		result.Violations = []model.Violation{{
			Code:    model.ViolationTooShort,
			Actual:  len(cand.Password),
			Minimum: snap.MinLength,
		}}
		return result, nil
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for i := 0; i < len(cand.Password); i++ {
		switch c := cand.Password[i]; {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if snap.RequireUpper && !hasUpper {
		result.Violations = append(result.Violations, model.Violation{Code: model.ViolationMissingUppercase})
	}
	if snap.RequireLower && !hasLower {
		result.Violations = append(result.Violations, model.Violation{Code: model.ViolationMissingLowercase})
	}
	if snap.RequireDigit && !hasDigit {
		result.Violations = append(result.Violations, model.Violation{Code: model.ViolationMissingDigit})
	}
	if snap.RequireSpecial && !hasSpecial {
		result.Violations = append(result.Violations, model.Violation{Code: model.ViolationMissingSpecial})
	}

	if snap.RejectUsername && cand.Username != "" {
		if strings.Contains(asciiLower(cand.Password), asciiLower(cand.Username)) {
			result.Violations = append(result.Violations, model.Violation{Code: model.ViolationContainsUsername})
		}
	}

	return result, nil
}

// asciiLower lowers A-Z only, leaving every other byte untouched. The
// containment rule uses the same locale-independent classification as the
// character scan, so Unicode case folding is deliberately not applied.
func asciiLower(s string) string {
	lowered := []byte(s)
	for i, c := range lowered {
		if c >= 'A' && c <= 'Z' {
			lowered[i] = c + ('a' - 'A')
		}
	}
	return string(lowered)
}
