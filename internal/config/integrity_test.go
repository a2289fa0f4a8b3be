package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockAndVerify(t *testing.T) {
	path := writeConfig(t, validYAML)

	require.NoError(t, Lock(path))
	assert.NoError(t, Verify(path))

	// Loading a locked, unmodified config succeeds.
	_, err := Load(path)
	assert.NoError(t, err)
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := writeConfig(t, validYAML)
	require.NoError(t, Lock(path))

	require.NoError(t, os.WriteFile(path, []byte(validYAML+"\ndispatch:\n  max_in_flight: 4\n"), 0644))

	err := Verify(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")

	// Load refuses a tampered locked config too.
	_, err = Load(path)
	assert.Error(t, err)
}

func TestVerifyWithoutManifest(t *testing.T) {
	path := writeConfig(t, validYAML)

	err := Verify(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksums file not found")

	// An unlocked config still loads.
	_, err = Load(path)
	assert.NoError(t, err)
}

func TestComputeBlake3HashStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	h1, err := ComputeBlake3Hash(path)
	require.NoError(t, err)
	h2, err := ComputeBlake3Hash(path)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}
