package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAndVerifyHash(t *testing.T) {
	path := writeConfig(t, validConfig)

	hash, err := ComputeBlake3Hash(path)
	require.NoError(t, err)
	assert.Len(t, hash, 64) // hex-encoded 256-bit digest

	assert.NoError(t, VerifyFileHash(path, hash))
	assert.Error(t, VerifyFileHash(path, "deadbeef"))
}

func TestLoad_ChecksumVerification(t *testing.T) {
	path := writeConfig(t, validConfig)

	// Lock the config, then loading succeeds.
	require.NoError(t, GenerateChecksums(path))
	_, err := Load(path)
	require.NoError(t, err)

	// Tamper with the file: loading must fail.
	require.NoError(t, os.WriteFile(path, []byte(validConfig+"\n# edited\n"), 0644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tampering")
}

func TestLoad_NoChecksumsIsFine(t *testing.T) {
	path := writeConfig(t, validConfig)

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestGenerateChecksums_WritesManifest(t *testing.T) {
	path := writeConfig(t, validConfig)
	require.NoError(t, GenerateChecksums(path))

	manifest, err := LoadChecksums(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Version)
	assert.Contains(t, manifest.Hashes, "config.yaml")
}
