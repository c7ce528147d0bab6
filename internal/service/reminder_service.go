package service

import (
	"context"
	"fmt"
	"time"

	"timelog/internal/repository"
)

// ReminderService builds the idle-logging nudge shown while the
// interactive shell is open.
type ReminderService struct {
	activities *repository.ActivityRepository
}

func NewReminderService(activities *repository.ActivityRepository) *ReminderService {
	return &ReminderService{activities: activities}
}

// IdleNudge returns a message when nothing has been logged for at least
// the given window, or "" when the log is up to date. A window of zero or
// less disables the nudge.
func (s *ReminderService) IdleNudge(ctx context.Context, now time.Time, window time.Duration) (string, error) {
	if window <= 0 {
		return "", nil
	}

	last, err := s.activities.LatestEnd(ctx)
	if err != nil {
		return "", err
	}
	if last == nil {
		return "No activities logged yet. Use 'log' to record your first one.", nil
	}

	gap := now.Sub(*last)
	if gap < window {
		return "", nil
	}
	return fmt.Sprintf("Nothing logged for %s (last entry ended %s).",
		formatGap(gap), last.Format("Mon 3:04pm")), nil
}

func formatGap(gap time.Duration) string {
	hours := int(gap.Hours())
	minutes := int(gap.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
