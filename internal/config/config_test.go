package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TIMELOG_DB", "")
	t.Setenv("TIMELOG_RECENT", "")
	t.Setenv("TIMELOG_REMINDER_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "timelog.db", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.RecentLimit)
	assert.Equal(t, time.Duration(0), cfg.ReminderInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TIMELOG_DB", "  /tmp/track.db ")
	t.Setenv("TIMELOG_RECENT", "25")
	t.Setenv("TIMELOG_REMINDER_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/track.db", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.RecentLimit)
	assert.Equal(t, 2*time.Hour, cfg.ReminderInterval)
}

func TestLoadRejectsBadRecentLimit(t *testing.T) {
	t.Setenv("TIMELOG_RECENT", "lots")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TIMELOG_RECENT", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadIgnoresBadReminderInterval(t *testing.T) {
	t.Setenv("TIMELOG_RECENT", "")
	t.Setenv("TIMELOG_REMINDER_HOURS", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.ReminderInterval)
}
