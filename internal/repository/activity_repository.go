package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timelog/internal/model"
)

// ActivityRepository handles CRUD and read projections for activities,
// including the interval-overlap query the lifecycle checks run on.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ActivityRepository) WithTx(tx *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

// activityTag is a row of the many-to-many join table.
type activityTag struct {
	ActivityID uint
	TagID      uint
}

// FindOverlapping returns activities whose stored interval intersects the
// half-open candidate [start, end): stored.start < end AND stored.end > start.
// Touching endpoints do not count. excludeID (when non-zero) skips that
// record, limit (when positive) caps the result. Ordered by start time
// ascending. The caller is responsible for start < end.
func (r *ActivityRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID uint, limit int) ([]model.Activity, error) {
	q := r.db.WithContext(ctx).Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var overlaps []model.Activity
	if err := q.Order("start_time ASC").Find(&overlaps).Error; err != nil {
		return nil, fmt.Errorf("find overlaps: %w", err)
	}
	return overlaps, nil
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error; err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// AddTags inserts one association row per tag id. Inserting an existing
// pair is a no-op, not an error.
func (r *ActivityRepository) AddTags(ctx context.Context, activityID uint, tagIDs []uint) error {
	for _, tagID := range tagIDs {
		row := activityTag{ActivityID: activityID, TagID: tagID}
		if err := r.db.WithContext(ctx).Table("activity_tags").
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&row).Error; err != nil {
			return fmt.Errorf("add tag %d: %w", tagID, err)
		}
	}
	return nil
}

// ClearTags removes every association for the given activity.
func (r *ActivityRepository) ClearTags(ctx context.Context, activityID uint) error {
	if err := r.db.WithContext(ctx).
		Exec("DELETE FROM activity_tags WHERE activity_id = ?", activityID).Error; err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	return nil
}

// RemoveTag drops every association referencing the given tag, across all
// activities.
func (r *ActivityRepository) RemoveTag(ctx context.Context, tagID uint) error {
	if err := r.db.WithContext(ctx).
		Exec("DELETE FROM activity_tags WHERE tag_id = ?", tagID).Error; err != nil {
		return fmt.Errorf("remove tag associations: %w", err)
	}
	return nil
}

// FindByID returns the bare activity row, or nil when it does not exist.
func (r *ActivityRepository) FindByID(ctx context.Context, id uint) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).First(&activity, id).Error
	switch {
	case err == nil:
		return &activity, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find activity: %w", err)
	}
}

// Detail returns the activity with its category and tags preloaded, or
// nil when it does not exist.
func (r *ActivityRepository) Detail(ctx context.Context, id uint) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).Preload("Category").Preload("Tags").First(&activity, id).Error
	switch {
	case err == nil:
		return &activity, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("load activity: %w", err)
	}
}

// UpdateFields applies a partial column update and reports how many rows
// matched (zero when the id does not exist).
func (r *ActivityRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Activity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update activity: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Activity{}, id).Error; err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

// ByDate lists activities whose start falls on the given calendar date,
// ordered by start time ascending. Timestamps are stored with a UTC
// offset and SQLite's DATE() normalizes them to UTC, so the 'localtime'
// modifier is needed to bucket evenings on their local calendar day.
func (r *ActivityRepository) ByDate(ctx context.Context, day time.Time) ([]model.Activity, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("DATE(start_time, 'localtime') = ?", day.Format(time.DateOnly)).
		Order("start_time ASC"))
}

// InRange lists activities starting within the closed date range
// [startDate, endDate], ordered by start time ascending.
func (r *ActivityRepository) InRange(ctx context.Context, startDate, endDate time.Time) ([]model.Activity, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("DATE(start_time, 'localtime') >= ? AND DATE(start_time, 'localtime') <= ?",
			startDate.Format(time.DateOnly), endDate.Format(time.DateOnly)).
		Order("start_time ASC"))
}

// Recent lists the most recently started activities, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	return r.list(ctx, r.db.WithContext(ctx).Order("start_time DESC").Limit(limit))
}

func (r *ActivityRepository) list(ctx context.Context, q *gorm.DB) ([]model.Activity, error) {
	var activities []model.Activity
	if err := q.Preload("Category").Preload("Tags").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// CountByCategory reports how many activities reference the category.
func (r *ActivityRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Activity{}).
		Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// DeleteByCategory removes every activity in the category together with
// their tag associations.
func (r *ActivityRepository) DeleteByCategory(ctx context.Context, categoryID uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec(
		"DELETE FROM activity_tags WHERE activity_id IN (SELECT id FROM activities WHERE category_id = ?)",
		categoryID).Error; err != nil {
		return fmt.Errorf("clear category associations: %w", err)
	}
	if err := db.Where("category_id = ?", categoryID).Delete(&model.Activity{}).Error; err != nil {
		return fmt.Errorf("delete category activities: %w", err)
	}
	return nil
}

// LatestEnd returns the end time of the most recently finished activity,
// or nil when nothing has been logged.
func (r *ActivityRepository) LatestEnd(ctx context.Context) (*time.Time, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).Order("end_time DESC").First(&activity).Error
	switch {
	case err == nil:
		return &activity.EndTime, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("latest activity: %w", err)
	}
}
