package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func TestClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"9:30", 9, 30},
		{"09:30", 9, 30},
		{"9:30am", 9, 30},
		{"9:30 am", 9, 30},
		{"9:30pm", 21, 30},
		{"9:30 PM", 21, 30},
		{"12:00pm", 12, 0},
		{"12:00am", 0, 0},
		{"14:30", 14, 30},
		{"  2:05pm  ", 14, 5},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Clock(tc.in, base)
			require.NoError(t, err)
			assert.Equal(t, tc.hour, got.Hour())
			assert.Equal(t, tc.minute, got.Minute())
			assert.Equal(t, base.Year(), got.Year())
			assert.Equal(t, base.Month(), got.Month())
			assert.Equal(t, base.Day(), got.Day())
		})
	}
}

func TestClockInvalid(t *testing.T) {
	for _, in := range []string{"", "930", "9", "25:00", "9:60", "14:30pm", "noonish", "9:3"} {
		t.Run(in, func(t *testing.T) {
			_, err := Clock(in, base)
			assert.Error(t, err)
		})
	}
}

func TestDate(t *testing.T) {
	today := time.Date(2026, 9, 1, 15, 42, 0, 0, time.UTC)
	midnight := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want time.Time
	}{
		{"today", midnight},
		{"t", midnight},
		{"TODAY", midnight},
		{"yesterday", midnight.AddDate(0, 0, -1)},
		{"y", midnight.AddDate(0, 0, -1)},
		{"-0", midnight},
		{"-3", midnight.AddDate(0, 0, -3)},
		{"2026-08-15", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Date(tc.in, today)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
		})
	}
}

func TestDateInvalid(t *testing.T) {
	today := time.Now()
	for _, in := range []string{"", "tomorrow", "08/15/2026", "-x", "2026-13-01"} {
		t.Run(in, func(t *testing.T) {
			_, err := Date(in, today)
			assert.Error(t, err)
		})
	}
}
