package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no project config is picked up
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "actiond.db", cfg.Database.Path)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scheduler.MaxConcurrentJobs)
	assert.True(t, cfg.Scheduler.RetryFailedJobs)
	assert.Equal(t, 3, cfg.Scheduler.MaxRetries)
	assert.Equal(t, 5, cfg.Scheduler.RetryDelayMinutes)
	assert.True(t, cfg.Scheduler.CleanupCompletedJobs)
	assert.Equal(t, 30, cfg.Scheduler.CleanupAfterDays)
	assert.Equal(t, 60, cfg.Scheduler.SweepIntervalSeconds)
	assert.Equal(t, 3600, cfg.Scheduler.CleanupIntervalSeconds)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actiond.toml")

	content := `
[database]
path = "/tmp/test-actiond.db"

[scheduler]
max_concurrent_jobs = 2
retry_failed_jobs = false
sweep_interval_seconds = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-actiond.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Scheduler.MaxConcurrentJobs)
	assert.False(t, cfg.Scheduler.RetryFailedJobs)
	assert.Equal(t, 5, cfg.Scheduler.SweepIntervalSeconds)
	// Unset keys fall back to defaults
	assert.Equal(t, 3, cfg.Scheduler.MaxRetries)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/actiond.toml")
	assert.Error(t, err)
}
