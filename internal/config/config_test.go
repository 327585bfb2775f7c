package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, "medtrack.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, filepath.Join(dir, "medications.yaml"), cfg.Schedule.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Tracker.GracePeriodMinutes)
	assert.Equal(t, 30, cfg.Tracker.StreakWindowDays)
	assert.Equal(t, 90, cfg.Tracker.RetentionDays)
	assert.NotEmpty(t, cfg.Security.JWTSecret)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "medtrack.yaml")

	content := []byte(`
server:
  port: 9090
tracker:
  grace_period_minutes: 60
  retention_days: 30
`)
	require.NoError(t, os.WriteFile(configPath, content, 0644))

	cfg, err := Load(configPath, dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Tracker.GracePeriodMinutes)
	assert.Equal(t, time.Hour, cfg.Tracker.GracePeriod())
	assert.Equal(t, 30, cfg.Tracker.RetentionDays)
	// Untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Tracker.StreakWindowDays)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("MEDTRACK_TRACKER_STREAK_WINDOW_DAYS", "14")

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Tracker.StreakWindowDays)
}

func TestLoadRejectsInvalidTracker(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("MEDTRACK_TRACKER_RETENTION_DAYS", "0")

	_, err := Load("", dir)
	assert.Error(t, err)
}
