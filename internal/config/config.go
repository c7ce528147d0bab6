package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	DatabaseURL      string
	RecentLimit      int
	ReminderInterval time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("TIMELOG_DB")),
		ReminderInterval: parseInterval(strings.TrimSpace(os.Getenv("TIMELOG_REMINDER_HOURS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "timelog.db"
	}

	recent := strings.TrimSpace(os.Getenv("TIMELOG_RECENT"))
	if recent == "" {
		cfg.RecentLimit = 10
	} else {
		n, err := strconv.Atoi(recent)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("TIMELOG_RECENT must be a positive number, got %q", recent)
		}
		cfg.RecentLimit = n
	}

	return cfg, nil
}

// parseInterval reads a reminder interval in hours; zero disables it.
func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
