package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("STORE_TEST_DOTENV=local\n"), 0o600))
	require.NoError(t, os.WriteFile(shared, []byte("STORE_TEST_DOTENV=shared\nSTORE_TEST_DOTENV_ONLY=yes\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STORE_TEST_DOTENV")
		os.Unsetenv("STORE_TEST_DOTENV_ONLY")
	})

	loaded, err := LoadEnvFiles(local, filepath.Join(dir, "missing.env"), shared)

	require.NoError(t, err)
	assert.Equal(t, []string{local, shared}, loaded)
	assert.Equal(t, "local", os.Getenv("STORE_TEST_DOTENV"))
	assert.Equal(t, "yes", os.Getenv("STORE_TEST_DOTENV_ONLY"))
}
