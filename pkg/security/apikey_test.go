package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashAPIKey("s3cret-admin-key")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	v := NewBcryptVerifier(hash)
	assert.NoError(t, v.Verify("s3cret-admin-key"))
	assert.ErrorIs(t, v.Verify("wrong-key"), ErrKeyMismatch)
}

func TestVerifierRejectsEmptyHash(t *testing.T) {
	v := NewBcryptVerifier("")
	assert.ErrorIs(t, v.Verify("anything"), ErrKeyMismatch)
}
