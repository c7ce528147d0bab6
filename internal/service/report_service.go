package service

import (
	"context"
	"time"

	"timelog/internal/repository"
)

// ReportService computes the three aggregate projections over a closed
// date range. Durations are derived from the stored bounds with per-row
// minute truncation, so by-day and by-category totals always agree.
type ReportService struct {
	reports *repository.ReportRepository
}

func NewReportService(reports *repository.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

// Daily returns per-date counts and minute totals, newest date first.
func (s *ReportService) Daily(ctx context.Context, startDate, endDate time.Time) ([]repository.DayTotal, error) {
	return s.reports.Daily(ctx, startDate, endDate)
}

// ByCategory returns per-category totals, most minutes first, with each
// row's share of the grand total filled in.
func (s *ReportService) ByCategory(ctx context.Context, startDate, endDate time.Time) ([]repository.CategoryTotal, error) {
	rows, err := s.reports.ByCategory(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	grand := 0
	for _, row := range rows {
		grand += row.Minutes
	}
	if grand > 0 {
		for i := range rows {
			rows[i].Percent = float64(rows[i].Minutes) / float64(grand) * 100
		}
	}
	return rows, nil
}

// ByTag returns per-(category, tag) totals, ordered by category name then
// minutes descending.
func (s *ReportService) ByTag(ctx context.Context, startDate, endDate time.Time) ([]repository.TagTotal, error) {
	return s.reports.ByTag(ctx, startDate, endDate)
}
