package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, loader, err := Load()
	require.NoError(t, err)
	require.NotNil(t, loader)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Policy.MinLength)
	assert.True(t, cfg.Policy.RequireSpecial)
	assert.True(t, cfg.Policy.RejectUsername)
	assert.False(t, cfg.Policy.AdvisoryMode)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("policy:\n  min_length: 8\n  advisory_mode: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))
	chdir(t, dir)

	cfg, _, err := Load()
	require.NoError(t, err)

	snap := cfg.PolicySnapshot()
	assert.Equal(t, 8, snap.MinLength)
	assert.True(t, snap.AdvisoryMode)
	assert.True(t, snap.RequireUpper, "unset fields keep their defaults")
}

func TestLoadRejectsNegativeMinLength(t *testing.T) {
	dir := t.TempDir()
	content := []byte("policy:\n  min_length: -1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))
	chdir(t, dir)

	_, _, err := Load()
	assert.Error(t, err)
}

func TestReloadPolicyPicksUpFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy:\n  min_length: 12\n"), 0o600))
	chdir(t, dir)

	cfg, loader, err := Load()
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Policy.MinLength)

	require.NoError(t, os.WriteFile(path, []byte("policy:\n  min_length: 16\n"), 0o600))

	snap, err := loader.ReloadPolicy()
	require.NoError(t, err)
	assert.Equal(t, 16, snap.MinLength)
}
