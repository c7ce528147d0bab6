package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"timelog/internal/model"
	"timelog/internal/repository"
)

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:   "0m",
		-5:  "0m",
		45:  "45m",
		60:  "1h 0m",
		135: "2h 15m",
	}
	for minutes, want := range cases {
		assert.Equal(t, want, FormatDuration(minutes))
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "9:30am", FormatClock(time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2:05pm", FormatClock(time.Date(2026, 9, 1, 14, 5, 0, 0, time.UTC)))
	assert.Equal(t, "12:00am", FormatClock(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
}

func TestColoredPassesThroughWithoutHex(t *testing.T) {
	assert.Equal(t, "Work", Colored("Work", nil))
	bad := "red"
	assert.Equal(t, "Work", Colored("Work", &bad))
}

func TestWriteActivitiesTotals(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	activities := []model.Activity{
		{
			ID:        1,
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Category:  model.Category{Name: "Work"},
			Tags:      []model.Tag{{Name: "email"}},
		},
		{
			ID:        2,
			StartTime: start.Add(time.Hour),
			EndTime:   start.Add(2 * time.Hour),
			Category:  model.Category{Name: "Play"},
		},
	}

	var buf bytes.Buffer
	WriteActivities(&buf, activities, false)
	out := buf.String()
	assert.Contains(t, out, "Work: email")
	assert.Contains(t, out, "Total: 2 activities, 1h 30m")

	buf.Reset()
	WriteActivities(&buf, nil, false)
	assert.Contains(t, buf.String(), "No activities found.")
}

func TestWriteDailyReport(t *testing.T) {
	rows := []repository.DayTotal{
		{Day: "2026-09-02", Count: 1, Minutes: 30},
		{Day: "2026-09-01", Count: 2, Minutes: 90},
	}
	var buf bytes.Buffer
	WriteDailyReport(&buf, rows)
	out := buf.String()
	assert.Contains(t, out, "2026-09-02")
	assert.Contains(t, out, "Total: 2h 0m")
}
