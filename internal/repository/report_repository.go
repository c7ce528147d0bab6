package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// The SUM expressions below divide epoch seconds by 60 with integer
// division, truncating each row to whole minutes before summing: three
// 90-second activities report 3 minutes, not 4.
//
// Date bucketing carries the 'localtime' modifier throughout: timestamps
// are stored with a UTC offset and DATE() normalizes them to UTC first,
// which would push local evenings onto the next calendar day.

// DayTotal is one row of the by-day report.
type DayTotal struct {
	Day     string // YYYY-MM-DD
	Count   int
	Minutes int
}

// CategoryTotal is one row of the by-category report. Percent is filled
// in by the report service from the grand total.
type CategoryTotal struct {
	Name    string
	Color   *string
	Count   int
	Minutes int
	Percent float64 `gorm:"-"`
}

// TagTotal is one row of the by-tag report. Count is the number of
// distinct activities carrying the tag, since one activity may carry
// several tags.
type TagTotal struct {
	Category string
	Color    *string
	Tag      string
	Count    int
	Minutes  int
}

// ReportRepository computes grouped duration sums over a closed date
// range [startDate, endDate], filtering on the calendar date of
// start_time.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Daily groups by calendar date, newest date first.
func (r *ReportRepository) Daily(ctx context.Context, startDate, endDate time.Time) ([]DayTotal, error) {
	var rows []DayTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(start_time, 'localtime') AS day,
		       COUNT(*) AS count,
		       COALESCE(SUM((strftime('%s', end_time) - strftime('%s', start_time)) / 60), 0) AS minutes
		FROM activities
		WHERE DATE(start_time, 'localtime') >= ? AND DATE(start_time, 'localtime') <= ?
		GROUP BY DATE(start_time, 'localtime')
		ORDER BY day DESC`,
		startDate.Format(time.DateOnly), endDate.Format(time.DateOnly)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}
	return rows, nil
}

// ByCategory groups by category, most minutes first. Categories without
// a matching activity in range are omitted.
func (r *ReportRepository) ByCategory(ctx context.Context, startDate, endDate time.Time) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.name AS name,
		       c.color AS color,
		       COUNT(a.id) AS count,
		       COALESCE(SUM((strftime('%s', a.end_time) - strftime('%s', a.start_time)) / 60), 0) AS minutes
		FROM categories c
		JOIN activities a ON a.category_id = c.id
		WHERE DATE(a.start_time, 'localtime') >= ? AND DATE(a.start_time, 'localtime') <= ?
		GROUP BY c.id, c.name, c.color
		ORDER BY minutes DESC`,
		startDate.Format(time.DateOnly), endDate.Format(time.DateOnly)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("category report: %w", err)
	}
	return rows, nil
}

// ByTag groups by (category, tag), ordered by category name then minutes
// descending. Pairs without a matching activity in range are omitted.
func (r *ReportRepository) ByTag(ctx context.Context, startDate, endDate time.Time) ([]TagTotal, error) {
	var rows []TagTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.name AS category,
		       c.color AS color,
		       t.name AS tag,
		       COUNT(DISTINCT a.id) AS count,
		       COALESCE(SUM((strftime('%s', a.end_time) - strftime('%s', a.start_time)) / 60), 0) AS minutes
		FROM tags t
		JOIN categories c ON c.id = t.category_id
		JOIN activity_tags att ON att.tag_id = t.id
		JOIN activities a ON a.id = att.activity_id
		WHERE DATE(a.start_time, 'localtime') >= ? AND DATE(a.start_time, 'localtime') <= ?
		GROUP BY c.id, c.name, c.color, t.id, t.name
		ORDER BY c.name ASC, minutes DESC`,
		startDate.Format(time.DateOnly), endDate.Format(time.DateOnly)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("tag report: %w", err)
	}
	return rows, nil
}
