package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"timelog/internal/model"
	"timelog/internal/repository"
)

// ActivityInput carries the fields required to log a new activity.
type ActivityInput struct {
	Start      time.Time
	End        time.Time
	CategoryID uint
	TagIDs     []uint
	Notes      string
}

// ActivityUpdate carries optional replacement fields for an edit; nil
// means "leave unchanged". Setting Notes to an empty string clears them.
type ActivityUpdate struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *uint
	Notes      *string
}

// ActivityDetail is the read projection used by show and edit flows.
type ActivityDetail struct {
	ID              uint
	Start           time.Time
	End             time.Time
	CategoryID      uint
	CategoryName    string
	CategoryColor   *string
	Notes           string
	DurationMinutes int
	TagNames        string // comma-joined for display
	TagIDs          []uint
}

// ActivityService is the activity lifecycle manager. Every mutation runs
// inside one transaction and re-validates the no-overlap invariant before
// anything is written.
type ActivityService struct {
	db         *gorm.DB
	activities *repository.ActivityRepository
}

func NewActivityService(db *gorm.DB, activities *repository.ActivityRepository) *ActivityService {
	return &ActivityService{db: db, activities: activities}
}

// Log records a new activity and its tag associations, failing with an
// *OverlapError when the interval intersects an existing one. Returns the
// fresh id and the derived duration in whole minutes.
func (s *ActivityService) Log(ctx context.Context, input ActivityInput) (uint, int, error) {
	if !input.End.After(input.Start) {
		return 0, 0, fmt.Errorf("end time must be after start time")
	}

	var created model.Activity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.activities.WithTx(tx)
		conflicts, err := repo.FindOverlapping(ctx, input.Start, input.End, 0, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &OverlapError{Conflicts: conflicts}
		}
		created = model.Activity{
			StartTime:  input.Start,
			EndTime:    input.End,
			CategoryID: input.CategoryID,
			Notes:      normalizeNotes(input.Notes),
		}
		if err := repo.Create(ctx, &created); err != nil {
			return err
		}
		return repo.AddTags(ctx, created.ID, input.TagIDs)
	})
	if err != nil {
		return 0, 0, err
	}
	return created.ID, created.DurationMinutes(), nil
}

// Update applies the provided fields. When either time bound changes, the
// effective interval is re-checked for overlaps with the activity itself
// excluded; any conflict aborts the whole update. Returns false without
// error when no field was provided or the id does not exist.
func (s *ActivityService) Update(ctx context.Context, id uint, update ActivityUpdate) (bool, error) {
	fields := map[string]any{}
	if update.Start != nil {
		fields["start_time"] = *update.Start
	}
	if update.End != nil {
		fields["end_time"] = *update.End
	}
	if update.CategoryID != nil {
		fields["category_id"] = *update.CategoryID
	}
	if update.Notes != nil {
		fields["notes"] = normalizeNotes(*update.Notes)
	}
	if len(fields) == 0 {
		return false, nil
	}

	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.activities.WithTx(tx)

		if update.Start != nil || update.End != nil {
			current, err := repo.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if current == nil {
				return nil
			}
			start, end := current.StartTime, current.EndTime
			if update.Start != nil {
				start = *update.Start
			}
			if update.End != nil {
				end = *update.End
			}
			if !end.After(start) {
				return fmt.Errorf("end time must be after start time")
			}
			conflicts, err := repo.FindOverlapping(ctx, start, end, id, 0)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return &OverlapError{Conflicts: conflicts}
			}
		}

		n, err := repo.UpdateFields(ctx, id, fields)
		if err != nil {
			return err
		}
		changed = n > 0
		return nil
	})
	return changed, err
}

// SetCategory reassigns the activity to another category. No overlap
// implications. Returns false when the id does not exist.
func (s *ActivityService) SetCategory(ctx context.Context, id, categoryID uint) (bool, error) {
	n, err := s.activities.UpdateFields(ctx, id, map[string]any{"category_id": categoryID})
	return n > 0, err
}

// SetTags replaces the whole association set: every existing association
// is removed, then the new set is inserted. Always a full replace, never
// a merge.
func (s *ActivityService) SetTags(ctx context.Context, id uint, tagIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.activities.WithTx(tx)
		if err := repo.ClearTags(ctx, id); err != nil {
			return err
		}
		return repo.AddTags(ctx, id, tagIDs)
	})
}

// Delete removes the activity and its associations, returning the removed
// record for confirmation messaging, or nil when the id does not exist.
func (s *ActivityService) Delete(ctx context.Context, id uint) (*model.Activity, error) {
	var removed *model.Activity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.activities.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if err := repo.ClearTags(ctx, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		removed = current
		return nil
	})
	return removed, err
}

// Get returns the full detail record for display and editing, or nil when
// the id does not exist.
func (s *ActivityService) Get(ctx context.Context, id uint) (*ActivityDetail, error) {
	activity, err := s.activities.Detail(ctx, id)
	if err != nil || activity == nil {
		return nil, err
	}

	names := make([]string, 0, len(activity.Tags))
	ids := make([]uint, 0, len(activity.Tags))
	for _, tag := range activity.Tags {
		names = append(names, tag.Name)
		ids = append(ids, tag.ID)
	}

	notes := ""
	if activity.Notes != nil {
		notes = *activity.Notes
	}

	return &ActivityDetail{
		ID:              activity.ID,
		Start:           activity.StartTime,
		End:             activity.EndTime,
		CategoryID:      activity.CategoryID,
		CategoryName:    activity.Category.Name,
		CategoryColor:   activity.Category.Color,
		Notes:           notes,
		DurationMinutes: activity.DurationMinutes(),
		TagNames:        strings.Join(names, ", "),
		TagIDs:          ids,
	}, nil
}

// ByDate lists activities starting on the given calendar date, earliest
// first.
func (s *ActivityService) ByDate(ctx context.Context, day time.Time) ([]model.Activity, error) {
	return s.activities.ByDate(ctx, day)
}

// InRange lists activities starting within the closed date range,
// earliest first.
func (s *ActivityService) InRange(ctx context.Context, startDate, endDate time.Time) ([]model.Activity, error) {
	return s.activities.InRange(ctx, startDate, endDate)
}

// Recent lists the most recently started activities, newest first.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	return s.activities.Recent(ctx, limit)
}

// normalizeNotes trims the text and maps the empty string to NULL.
func normalizeNotes(notes string) *string {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
