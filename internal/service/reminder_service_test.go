package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timelog/internal/service"
)

func TestIdleNudge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reminder := service.NewReminderService(f.activityRepo)

	t.Run("disabled window stays quiet", func(t *testing.T) {
		msg, err := reminder.IdleNudge(ctx, at(12, 0), 0)
		require.NoError(t, err)
		assert.Empty(t, msg)
	})

	t.Run("empty log prompts for a first entry", func(t *testing.T) {
		msg, err := reminder.IdleNudge(ctx, at(12, 0), time.Hour)
		require.NoError(t, err)
		assert.Contains(t, msg, "No activities logged yet")
	})

	workID := f.category(t, "Work")
	_, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID,
	})
	require.NoError(t, err)

	t.Run("recent entry stays quiet", func(t *testing.T) {
		msg, err := reminder.IdleNudge(ctx, at(10, 30), time.Hour)
		require.NoError(t, err)
		assert.Empty(t, msg)
	})

	t.Run("stale log nudges with the gap", func(t *testing.T) {
		msg, err := reminder.IdleNudge(ctx, at(13, 30), time.Hour)
		require.NoError(t, err)
		assert.Contains(t, msg, "Nothing logged for 3h 30m")
	})
}
