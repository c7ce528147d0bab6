package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"timelog/internal/model"
	"timelog/internal/repository"
	"timelog/internal/service"
	"timelog/internal/testsupport"
)

// Wall-clock times are built in time.Local because the date-bucketing
// queries resolve calendar days in the local zone.
func at(hour, minute int) time.Time {
	return time.Date(2026, 9, 1, hour, minute, 0, 0, time.Local)
}

type fixture struct {
	db           *gorm.DB
	activityRepo *repository.ActivityRepository
	activities   *service.ActivityService
	labels       *service.LabelService
	reports      *service.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewDB(t)
	activityRepo := repository.NewActivityRepository(db)
	return &fixture{
		db:           db,
		activityRepo: activityRepo,
		activities:   service.NewActivityService(db, activityRepo),
		labels: service.NewLabelService(db,
			repository.NewLabelRepository[model.Category](db),
			repository.NewLabelRepository[model.Tag](db),
			activityRepo),
		reports: service.NewReportService(repository.NewReportRepository(db)),
	}
}

func (f *fixture) category(t *testing.T, name string) uint {
	t.Helper()
	id, _, err := f.labels.GetOrCreateCategory(context.Background(), name, nil)
	require.NoError(t, err)
	return id
}

func (f *fixture) tag(t *testing.T, categoryID uint, name string) uint {
	t.Helper()
	id, _, err := f.labels.GetOrCreateTag(context.Background(), categoryID, name)
	require.NoError(t, err)
	return id
}

func TestLogScenario(t *testing.T) {
	// Create category "Work", tag "email", log 9:00-9:30, then try an
	// overlapping 9:15-9:45.
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")
	emailID := f.tag(t, workID, "email")

	id, minutes, err := f.activities.Log(ctx, service.ActivityInput{
		Start:      at(9, 0),
		End:        at(9, 30),
		CategoryID: workID,
		TagIDs:     []uint{emailID},
		Notes:      "",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, minutes)

	_, _, err = f.activities.Log(ctx, service.ActivityInput{
		Start:      at(9, 15),
		End:        at(9, 45),
		CategoryID: workID,
	})
	var overlap *service.OverlapError
	require.ErrorAs(t, err, &overlap)
	require.Len(t, overlap.Conflicts, 1)
	assert.Equal(t, id, overlap.Conflicts[0].ID)
	assert.True(t, overlap.Conflicts[0].StartTime.Equal(at(9, 0)))
	assert.True(t, overlap.Conflicts[0].EndTime.Equal(at(9, 30)))

	// Nothing was written by the failed attempt.
	var n int64
	require.NoError(t, f.db.Model(&model.Activity{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestLogTouchingEndpoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	_, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID,
	})
	require.NoError(t, err)

	// [10:00, 11:00) touches [9:00, 10:00) and must succeed.
	_, _, err = f.activities.Log(ctx, service.ActivityInput{
		Start: at(10, 0), End: at(11, 0), CategoryID: workID,
	})
	require.NoError(t, err)

	// One extra minute makes it a conflict.
	_, _, err = f.activities.Log(ctx, service.ActivityInput{
		Start: at(10, 59), End: at(12, 0), CategoryID: workID,
	})
	var overlap *service.OverlapError
	require.ErrorAs(t, err, &overlap)
}

func TestLogRejectsEmptyInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	_, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(9, 0), CategoryID: workID,
	})
	assert.Error(t, err)
}

func TestLogTruncatesSubMinuteRemainder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	_, minutes, err := f.activities.Log(ctx, service.ActivityInput{
		Start:      at(9, 0),
		End:        at(9, 1).Add(29 * time.Second),
		CategoryID: workID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, minutes)
}

func TestUpdateOwnBoundsDoesNotConflictWithItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID,
	})
	require.NoError(t, err)

	start, end := at(9, 0), at(10, 0)
	changed, err := f.activities.Update(ctx, id, service.ActivityUpdate{Start: &start, End: &end})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestUpdateConflictAbortsWithoutPartialWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	first, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID,
	})
	require.NoError(t, err)
	second, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(11, 0), End: at(12, 0), CategoryID: workID, Notes: "keep me",
	})
	require.NoError(t, err)

	// Move the second on top of the first while also changing notes;
	// neither change may land.
	start := at(9, 30)
	notes := "lost"
	_, err = f.activities.Update(ctx, second, service.ActivityUpdate{Start: &start, Notes: &notes})
	var overlap *service.OverlapError
	require.ErrorAs(t, err, &overlap)
	require.Len(t, overlap.Conflicts, 1)
	assert.Equal(t, first, overlap.Conflicts[0].ID)

	detail, err := f.activities.Get(ctx, second)
	require.NoError(t, err)
	assert.True(t, detail.Start.Equal(at(11, 0)))
	assert.Equal(t, "keep me", detail.Notes)
}

func TestUpdateEffectiveIntervalMixesOldAndNewBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	_, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID,
	})
	require.NoError(t, err)
	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(10, 30), End: at(11, 0), CategoryID: workID,
	})
	require.NoError(t, err)

	// Only the start moves; the effective interval [9:45, 11:00) hits
	// the first activity.
	start := at(9, 45)
	_, err = f.activities.Update(ctx, id, service.ActivityUpdate{Start: &start})
	var overlap *service.OverlapError
	require.ErrorAs(t, err, &overlap)

	// Moving it into the free gap works.
	start = at(10, 0)
	changed, err := f.activities.Update(ctx, id, service.ActivityUpdate{Start: &start})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestUpdateNoFieldsAndMissingID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	changed, err := f.activities.Update(ctx, 1, service.ActivityUpdate{})
	require.NoError(t, err)
	assert.False(t, changed)

	notes := "hello"
	changed, err = f.activities.Update(ctx, 42, service.ActivityUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.False(t, changed)

	start := at(9, 0)
	changed, err = f.activities.Update(ctx, 42, service.ActivityUpdate{Start: &start})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUpdateClearsNotesWithEmptyString(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")

	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID, Notes: "standup",
	})
	require.NoError(t, err)

	empty := "   "
	changed, err := f.activities.Update(ctx, id, service.ActivityUpdate{Notes: &empty})
	require.NoError(t, err)
	assert.True(t, changed)

	var activity model.Activity
	require.NoError(t, f.db.First(&activity, id).Error)
	assert.Nil(t, activity.Notes)
}

func TestSetCategoryReassigns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")
	playID := f.category(t, "Play")

	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID,
	})
	require.NoError(t, err)

	ok, err := f.activities.SetCategory(ctx, id, playID)
	require.NoError(t, err)
	assert.True(t, ok)

	detail, err := f.activities.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, playID, detail.CategoryID)
	assert.Equal(t, "Play", detail.CategoryName)

	ok, err = f.activities.SetCategory(ctx, 999, playID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetTagsReplacesWholeSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")
	email := f.tag(t, workID, "email")
	meetings := f.tag(t, workID, "meetings")
	review := f.tag(t, workID, "review")

	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID, TagIDs: []uint{email, meetings},
	})
	require.NoError(t, err)

	require.NoError(t, f.activities.SetTags(ctx, id, []uint{review}))

	detail, err := f.activities.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint{review}, detail.TagIDs)

	// Replacing with the empty set removes everything.
	require.NoError(t, f.activities.SetTags(ctx, id, nil))
	detail, err = f.activities.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, detail.TagIDs)
}

func TestDeleteReturnsRemovedInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")
	email := f.tag(t, workID, "email")

	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 0), CategoryID: workID, TagIDs: []uint{email},
	})
	require.NoError(t, err)

	removed, err := f.activities.Delete(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.True(t, removed.StartTime.Equal(at(9, 0)))
	assert.True(t, removed.EndTime.Equal(at(10, 0)))

	var joinRows int64
	require.NoError(t, f.db.Table("activity_tags").Count(&joinRows).Error)
	assert.Zero(t, joinRows)

	missing, err := f.activities.Delete(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	workID := f.category(t, "Work")
	email := f.tag(t, workID, "email")
	meetings := f.tag(t, workID, "meetings")

	id, _, err := f.activities.Log(ctx, service.ActivityInput{
		Start: at(9, 0), End: at(10, 30), CategoryID: workID,
		TagIDs: []uint{email, meetings}, Notes: "inbox zero",
	})
	require.NoError(t, err)

	detail, err := f.activities.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Work", detail.CategoryName)
	assert.Equal(t, 90, detail.DurationMinutes)
	assert.Equal(t, "inbox zero", detail.Notes)
	assert.ElementsMatch(t, []uint{email, meetings}, detail.TagIDs)

	gone, err := f.activities.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
