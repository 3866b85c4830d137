package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasSanePendingQueueCapacity(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 50, cfg.Network.PendingQueueCapacity)
	assert.Equal(t, 10*time.Second, cfg.Network.HealthCheckInterval)
	assert.Equal(t, 5*time.Second, cfg.Network.QueueInfoTimeout)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "backend:\n  base_url: https://backend.example.test\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://backend.example.test", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset fields still come from Default().
	assert.Equal(t, 50, cfg.Network.PendingQueueCapacity)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
