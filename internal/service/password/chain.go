package password

import (
	"context"

	"github.com/jwalitptl/passwordguard/internal/model"
)

// Checker is an externally supplied password check that runs before the
// built-in policy evaluation, in registration order. A non-nil error
// rejects the change request outright. This preserves the semantics of
// chaining onto a previously installed check hook: earlier checks always
// get their say first.
type Checker interface {
	CheckPassword(ctx context.Context, cand model.PasswordCandidate) error
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(ctx context.Context, cand model.PasswordCandidate) error

func (f CheckerFunc) CheckPassword(ctx context.Context, cand model.PasswordCandidate) error {
	return f(ctx, cand)
}

type checkerChain struct {
	checkers []Checker
}

// register appends a checker; order of registration is order of execution.
func (c *checkerChain) register(checker Checker) {
	c.checkers = append(c.checkers, checker)
}

// run invokes every registered checker and stops at the first rejection.
func (c *checkerChain) run(ctx context.Context, cand model.PasswordCandidate) error {
	for _, checker := range c.checkers {
		if err := checker.CheckPassword(ctx, cand); err != nil {
			return err
		}
	}
	return nil
}
