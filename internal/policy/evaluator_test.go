package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/passwordguard/internal/model"
)

func defaults() model.PolicySnapshot {
	return model.DefaultPolicySnapshot()
}

func TestEvaluateTooShortReturnsOnlyLengthViolation(t *testing.T) {
	// A short password missing every class still reports too_short alone.
	result, err := Evaluate(defaults(), model.PasswordCandidate{Password: "Sh0rt!", Username: "bob"})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, model.ViolationTooShort, result.Violations[0].Code)
	assert.Equal(t, 6, result.Violations[0].Actual)
	assert.Equal(t, 12, result.Violations[0].Minimum)
	assert.False(t, result.Advisory)
}

func TestEvaluateAcceptsStrongPassword(t *testing.T) {
	result, err := Evaluate(defaults(), model.PasswordCandidate{Password: "Str0ngP@ssw0rd", Username: "bob"})
	require.NoError(t, err)
	assert.True(t, result.Accepted())
	assert.Empty(t, result.Violations)
}

func TestEvaluateExactMinimumLengthPasses(t *testing.T) {
	snap := defaults()
	snap.MinLength = 12

	result, err := Evaluate(snap, model.PasswordCandidate{Password: "Abcdefgh1!xy"})
	require.NoError(t, err)
	assert.True(t, result.Accepted())
}

func TestEvaluateReportsOnlyRequiredMissingClasses(t *testing.T) {
	snap := defaults()
	snap.RequireUpper = true
	snap.RequireSpecial = false

	// Length 12, no uppercase, no special. Special is not required so only
	// the uppercase violation may appear.
	result, err := Evaluate(snap, model.PasswordCandidate{Password: "abcdefgh1234"})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, model.ViolationMissingUppercase, result.Violations[0].Code)
}

func TestEvaluateMissingClassOrderIsFixed(t *testing.T) {
	snap := defaults()
	snap.RejectUsername = false

	result, err := Evaluate(snap, model.PasswordCandidate{Password: "............"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		string(model.ViolationMissingUppercase),
		string(model.ViolationMissingLowercase),
		string(model.ViolationMissingDigit),
	}, result.Codes())
}

func TestEvaluateUsernameContainmentIsCaseInsensitive(t *testing.T) {
	result, err := Evaluate(defaults(), model.PasswordCandidate{Password: "myAlicePass1!", Username: "Alice"})
	require.NoError(t, err)

	assert.Contains(t, result.Codes(), string(model.ViolationContainsUsername))
}

func TestEvaluateSkipsContainmentWithoutUsername(t *testing.T) {
	result, err := Evaluate(defaults(), model.PasswordCandidate{Password: "Str0ngP@ssw0rd"})
	require.NoError(t, err)
	assert.True(t, result.Accepted())
}

func TestEvaluateSkipsContainmentWhenDisabled(t *testing.T) {
	snap := defaults()
	snap.RejectUsername = false

	result, err := Evaluate(snap, model.PasswordCandidate{Password: "bobSecure#2024", Username: "bob"})
	require.NoError(t, err)
	assert.True(t, result.Accepted())
}

func TestEvaluateAdvisoryModeFlagsResult(t *testing.T) {
	snap := defaults()
	snap.AdvisoryMode = true

	result, err := Evaluate(snap, model.PasswordCandidate{Password: "short"})
	require.NoError(t, err)

	assert.False(t, result.Accepted())
	assert.True(t, result.Advisory)
}

func TestEvaluateNonASCIIBytesCountAsSpecial(t *testing.T) {
	snap := defaults()
	snap.RejectUsername = false

	// "Pässword2024" carries no ASCII special, but the UTF-8 bytes of the
	// umlaut satisfy the special-character requirement.
	result, err := Evaluate(snap, model.PasswordCandidate{Password: "Pässword2024"})
	require.NoError(t, err)
	assert.True(t, result.Accepted())
}

func TestEvaluateEmptyPasswordWithZeroMinimum(t *testing.T) {
	snap := model.PolicySnapshot{MinLength: 0}

	// Empty is a valid candidate; with every rule disabled it passes.
	result, err := Evaluate(snap, model.PasswordCandidate{Password: ""})
	require.NoError(t, err)
	assert.True(t, result.Accepted())
}

func TestEvaluateRejectsNegativeMinLength(t *testing.T) {
	snap := defaults()
	snap.MinLength = -1

	_, err := Evaluate(snap, model.PasswordCandidate{Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	snap := defaults()
	cand := model.PasswordCandidate{Password: "abcdefgh", Username: "carol"}

	first, err := Evaluate(snap, cand)
	require.NoError(t, err)
	second, err := Evaluate(snap, cand)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestViolationDetails(t *testing.T) {
	tooShort := model.Violation{Code: model.ViolationTooShort, Actual: 6, Minimum: 12}
	assert.Equal(t, "Password must be at least 12 characters long.", tooShort.Detail())

	assert.Equal(t, "Password must not contain the username.",
		model.Violation{Code: model.ViolationContainsUsername}.Detail())
}
