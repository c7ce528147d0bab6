package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"timelog/internal/model"
	"timelog/internal/repository"
	"timelog/internal/service"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Colored renders text in the category's hex color when one is set.
func Colored(text string, hex *string) string {
	if hex == nil || !strings.HasPrefix(*hex, "#") {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(*hex)).Render(text)
}

// FormatDuration renders minutes as "2h 15m" or "45m".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours, mins := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatClock renders a time as "9:30am".
func FormatClock(t time.Time) string {
	return t.Format("3:04pm")
}

// FormatDateShort renders a date as "09/01".
func FormatDateShort(t time.Time) string {
	return t.Format("01/02")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func tagNames(tags []model.Tag) string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return strings.Join(names, ", ")
}

// table lays rows out with tabwriter, then applies the per-row color
// after layout so the escape codes cannot skew the column widths.
func table(w io.Writer, header []string, rows [][]string, colors []*string) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			fmt.Fprintln(w, headerStyle.Render(line))
		case colors != nil && i-1 < len(colors):
			fmt.Fprintln(w, Colored(line, colors[i-1]))
		default:
			fmt.Fprintln(w, line)
		}
	}
}

// WriteActivities renders an activity table with a trailing total line.
func WriteActivities(w io.Writer, activities []model.Activity, showDate bool) {
	if len(activities) == 0 {
		fmt.Fprintln(w, "No activities found.")
		return
	}

	rows := make([][]string, 0, len(activities))
	colors := make([]*string, 0, len(activities))
	total := 0
	for _, a := range activities {
		start := FormatClock(a.StartTime)
		if showDate {
			start = FormatDateShort(a.StartTime) + " " + start
		}
		label := a.Category.Name
		if names := tagNames(a.Tags); names != "" {
			label += ": " + names
		}
		notes := "-"
		if a.Notes != nil {
			notes = truncate(*a.Notes, 20)
		}
		minutes := a.DurationMinutes()
		total += minutes
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.ID),
			start,
			FormatClock(a.EndTime),
			FormatDuration(minutes),
			truncate(label, 30),
			notes,
		})
		colors = append(colors, a.Category.Color)
	}

	table(w, []string{"ID", "Start", "End", "Duration", "Category/Tags", "Notes"}, rows, colors)
	fmt.Fprintf(w, "\nTotal: %d activities, %s\n", len(activities), FormatDuration(total))
}

// WriteCategories renders the category list with ids and color samples.
func WriteCategories(w io.Writer, categories []model.Category) {
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories yet.")
		return
	}
	for _, c := range categories {
		line := fmt.Sprintf("  [%d] %s", c.ID, c.Name)
		if c.Color != nil {
			line += fmt.Sprintf(" [%s]", *c.Color)
		}
		fmt.Fprintln(w, Colored(line, c.Color))
	}
}

// WriteTags renders tags grouped under their category heading.
func WriteTags(w io.Writer, category model.Category, tags []model.Tag) {
	fmt.Fprintln(w, Colored(category.Name, category.Color))
	if len(tags) == 0 {
		fmt.Fprintln(w, "  (no tags)")
		return
	}
	for _, t := range tags {
		fmt.Fprintf(w, "  [%d] %s\n", t.ID, t.Name)
	}
}

// WriteDailyReport renders the by-day report.
func WriteDailyReport(w io.Writer, rows []repository.DayTotal) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No activities in range.")
		return
	}
	out := make([][]string, 0, len(rows))
	total := 0
	for _, row := range rows {
		total += row.Minutes
		out = append(out, []string{row.Day, fmt.Sprintf("%d", row.Count), FormatDuration(row.Minutes)})
	}
	table(w, []string{"Date", "Activities", "Time"}, out, nil)
	fmt.Fprintf(w, "\nTotal: %s\n", FormatDuration(total))
}

// WriteCategoryReport renders the by-category report with percentages.
func WriteCategoryReport(w io.Writer, rows []repository.CategoryTotal) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No activities in range.")
		return
	}
	out := make([][]string, 0, len(rows))
	colors := make([]*string, 0, len(rows))
	total := 0
	for _, row := range rows {
		total += row.Minutes
		out = append(out, []string{
			row.Name,
			fmt.Sprintf("%d", row.Count),
			FormatDuration(row.Minutes),
			fmt.Sprintf("%.1f%%", row.Percent),
		})
		colors = append(colors, row.Color)
	}
	table(w, []string{"Category", "Activities", "Time", "Share"}, out, colors)
	fmt.Fprintf(w, "\nTotal: %s\n", FormatDuration(total))
}

// WriteTagReport renders the by-tag report.
func WriteTagReport(w io.Writer, rows []repository.TagTotal) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No tagged activities in range.")
		return
	}
	out := make([][]string, 0, len(rows))
	colors := make([]*string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.Category,
			row.Tag,
			fmt.Sprintf("%d", row.Count),
			FormatDuration(row.Minutes),
		})
		colors = append(colors, row.Color)
	}
	table(w, []string{"Category", "Tag", "Activities", "Time"}, out, colors)
}

// WriteOverlap prints the full conflicting interval list so the user can
// pick a non-conflicting time.
func WriteOverlap(w io.Writer, overlap *service.OverlapError) {
	fmt.Fprintln(w, "Cannot save: overlaps with existing activities:")
	for _, c := range overlap.Conflicts {
		fmt.Fprintf(w, "  [%d] %s %s - %s\n",
			c.ID, c.StartTime.Format(time.DateOnly), FormatClock(c.StartTime), FormatClock(c.EndTime))
	}
}
