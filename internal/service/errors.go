package service

import (
	"errors"
	"fmt"

	"timelog/internal/model"
)

// ErrNameTaken is returned by rename when another category or tag
// already uses the requested name.
var ErrNameTaken = errors.New("name already in use")

// OverlapError reports that a candidate interval intersects existing
// activities. It carries every conflicting record so the caller can show
// the user what is in the way; the expected recovery is asking for
// different times.
type OverlapError struct {
	Conflicts []model.Activity
}

func (e *OverlapError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		return fmt.Sprintf("overlaps activity %d (%s - %s)",
			c.ID, c.StartTime.Format("2006-01-02 15:04"), c.EndTime.Format("15:04"))
	}
	return fmt.Sprintf("overlaps %d existing activities", len(e.Conflicts))
}
