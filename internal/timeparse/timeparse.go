// Package timeparse parses the short clock and date forms the prompts
// accept: "9:30", "2:00pm", "14:30", "2026-09-01", "today", "-3".
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)?$`)

// Clock parses a clock string and combines it with the calendar date of
// base. Accepted forms: "9:30", "09:30", "9:30am", "9:30 pm", "14:30".
// Without am/pm the time is taken as written, so bare "9:30" is 9:30 AM
// and "12:00" is noon; "12am" is midnight, "12pm" is noon.
func Clock(s string, base time.Time) (time.Time, error) {
	m := clockRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use a form like 9:30, 9:30am, 2:00pm", s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}

	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}

	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location()), nil
}

// Date parses "YYYY-MM-DD", "today"/"t", "yesterday"/"y", or "-N" for N
// days before today. The result is midnight in today's location.
func Date(s string, today time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	switch s {
	case "today", "t":
		return midnight, nil
	case "yesterday", "y":
		return midnight.AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(s, "-") {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 0 {
			return midnight.AddDate(0, 0, -n), nil
		}
	}

	parsed, err := time.ParseInLocation(time.DateOnly, s, today.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD, 'today', 'yesterday', or '-N'", s)
	}
	return parsed, nil
}
