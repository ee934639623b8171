package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
	assert.Equal(t, "assets", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "database", cfg.Binding.Backend)
	assert.Equal(t, "imports", cfg.Binding.Prefix)
	assert.Equal(t, 300, cfg.Binding.PreviewTTLSeconds)
	assert.Equal(t, 100, cfg.Binding.UndoDepth)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("BINDING_BACKEND", "storage")
	t.Setenv("BINDING_UNDO_DEPTH", "5")
	t.Setenv("SERVER_API_KEY", "secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "storage", cfg.Binding.Backend)
	assert.Equal(t, 5, cfg.Binding.UndoDepth)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	// Registered so the value written by the .env file is cleared afterwards.
	t.Setenv("BINDING_PREFIX", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BINDING_PREFIX=studio/imports\n"), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "studio/imports", cfg.Binding.Prefix)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("Backend", func(t *testing.T) {
		t.Setenv("BINDING_BACKEND", "redis")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "invalid binding backend")
	})

	t.Run("Negative Depth", func(t *testing.T) {
		t.Setenv("BINDING_UNDO_DEPTH", "-1")
		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
	})
}
