// Package cli implements the terminal front end: interactive prompts,
// command handlers, and table rendering over the services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"timelog/internal/service"
)

// App wires the command handlers to the services and the terminal.
type App struct {
	Activities *service.ActivityService
	Labels     *service.LabelService
	Reports    *service.ReportService
	Reminder   *service.ReminderService
	Scheduler  *service.SchedulerService

	ReminderEvery time.Duration
	RecentLimit   int

	In  *Prompter
	Out io.Writer
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) today() time.Time {
	n := a.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// promptCategory shows the known categories and lets the user pick one by
// number or type a new name to create it. Returns the category id.
func (a *App) promptCategory(ctx context.Context) (uint, error) {
	categories, err := a.Labels.Categories(ctx)
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(a.Out, "\n  Categories:")
	if len(categories) == 0 {
		fmt.Fprintln(a.Out, "    (no categories yet)")
	}
	for i, c := range categories {
		fmt.Fprintf(a.Out, "    %d. %s\n", i+1, Colored(c.Name, c.Color))
	}
	fmt.Fprintln(a.Out, "  Enter number for existing, or type new name to create.")

	for {
		val, err := a.In.Str("Category", true, "")
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(val); err == nil {
			if n >= 1 && n <= len(categories) {
				return categories[n-1].ID, nil
			}
			fmt.Fprintf(a.Out, "    Invalid number: %d\n", n)
			continue
		}
		id, created, err := a.Labels.GetOrCreateCategory(ctx, val, nil)
		if err != nil {
			return 0, err
		}
		if created {
			fmt.Fprintf(a.Out, "    Created new category: '%s'\n", strings.TrimSpace(val))
		}
		return id, nil
	}
}

// promptTags lets the user pick tags of the category by number or create
// new ones by name, comma separated. Empty input skips tagging.
func (a *App) promptTags(ctx context.Context, categoryID uint) ([]uint, error) {
	existing, err := a.Labels.TagsFor(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(a.Out, "\n  Tags for this category:")
	if len(existing) == 0 {
		fmt.Fprintln(a.Out, "    (no tags yet)")
	}
	for i, t := range existing {
		fmt.Fprintf(a.Out, "    %d. %s\n", i+1, t.Name)
	}
	fmt.Fprintln(a.Out, "  Enter numbers for existing, or type new names to create.")
	fmt.Fprintln(a.Out, "  Separate multiple with commas. Press Enter to skip.")

	val, err := a.In.Str("Tags", false, "")
	if err != nil {
		return nil, err
	}
	if val == "" {
		return nil, nil
	}

	var tagIDs []uint
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n >= 1 && n <= len(existing) {
				tagIDs = append(tagIDs, existing[n-1].ID)
			} else {
				fmt.Fprintf(a.Out, "    Invalid number: %d\n", n)
			}
			continue
		}
		id, created, err := a.Labels.GetOrCreateTag(ctx, categoryID, part)
		if err != nil {
			return nil, err
		}
		if created {
			fmt.Fprintf(a.Out, "    Created new tag: '%s'\n", part)
		}
		tagIDs = append(tagIDs, id)
	}
	return tagIDs, nil
}

// Log runs the interactive logging flow with chaining: the next activity
// can start where the previous one ended.
func (a *App) Log(ctx context.Context) error {
	fmt.Fprintln(a.Out, "\n-- Log Activities --")

	today := a.today()
	day, err := a.In.Date("Date", &today)
	if err != nil {
		return err
	}
	start, err := a.In.Clock("Start time", day, nil)
	if err != nil {
		return err
	}

	for {
		var end time.Time
		for {
			end, err = a.In.Clock("End time", day, nil)
			if err != nil {
				return err
			}
			if !end.After(start) {
				fmt.Fprintf(a.Out, "  End time must be after %s\n", FormatClock(start))
				continue
			}
			break
		}

		categoryID, err := a.promptCategory(ctx)
		if err != nil {
			return err
		}
		tagIDs, err := a.promptTags(ctx, categoryID)
		if err != nil {
			return err
		}
		notes, err := a.In.Str("Notes", false, "")
		if err != nil {
			return err
		}

		id, minutes, err := a.Activities.Log(ctx, service.ActivityInput{
			Start:      start,
			End:        end,
			CategoryID: categoryID,
			TagIDs:     tagIDs,
			Notes:      notes,
		})
		var overlap *service.OverlapError
		switch {
		case errors.As(err, &overlap):
			fmt.Fprintln(a.Out)
			WriteOverlap(a.Out, overlap)
			retry, err := a.In.YesNo("Try different times?", true)
			if err != nil {
				return err
			}
			if retry {
				continue
			}
			return nil
		case err != nil:
			return err
		}

		fmt.Fprintf(a.Out, "\nLogged: %s - %s (%s)\n  ID: %d\n",
			FormatClock(start), FormatClock(end), FormatDuration(minutes), id)

		chain, err := a.In.YesNo(fmt.Sprintf("Log next activity starting at %s?", FormatClock(end)), false)
		if err != nil {
			return err
		}
		if !chain {
			return nil
		}
		fmt.Fprintf(a.Out, "\n-- Next Activity (from %s) --\n", FormatClock(end))
		start = end
	}
}

// Edit walks through the fields of one activity, keeping anything the
// user leaves blank.
func (a *App) Edit(ctx context.Context, id uint) error {
	detail, err := a.Activities.Get(ctx, id)
	if err != nil {
		return err
	}
	if detail == nil {
		fmt.Fprintf(a.Out, "Activity %d not found.\n", id)
		return nil
	}

	fmt.Fprintln(a.Out, "\n-- Edit Activity --")
	fmt.Fprintf(a.Out, "  Time: %s %s - %s\n",
		detail.Start.Format(time.DateOnly), FormatClock(detail.Start), FormatClock(detail.End))
	fmt.Fprintf(a.Out, "  Category: %s\n", Colored(detail.CategoryName, detail.CategoryColor))
	fmt.Fprintf(a.Out, "  Tags: %s\n", orNone(detail.TagNames))
	fmt.Fprintf(a.Out, "  Notes: %s\n", orNone(detail.Notes))
	fmt.Fprintln(a.Out, "\n  Press Enter to keep current value.")

	day, err := a.In.Date("Date", &detail.Start)
	if err != nil {
		return err
	}
	newStart, err := a.In.Clock("Start time", day, &detail.Start)
	if err != nil {
		return err
	}
	var newEnd time.Time
	for {
		newEnd, err = a.In.Clock("End time", day, &detail.End)
		if err != nil {
			return err
		}
		if !newEnd.After(newStart) {
			fmt.Fprintln(a.Out, "  End time must be after start time.")
			continue
		}
		break
	}

	update := service.ActivityUpdate{}
	if !newStart.Equal(detail.Start) {
		update.Start = &newStart
	}
	if !newEnd.Equal(detail.End) {
		update.End = &newEnd
	}

	changeCategory, err := a.In.YesNo("Update category?", false)
	if err != nil {
		return err
	}
	newCategoryID := detail.CategoryID
	if changeCategory {
		newCategoryID, err = a.promptCategory(ctx)
		if err != nil {
			return err
		}
		if newCategoryID != detail.CategoryID {
			update.CategoryID = &newCategoryID
		}
	}

	changeTags, err := a.In.YesNo("Update tags?", false)
	if err != nil {
		return err
	}
	if changeTags {
		tagIDs, err := a.promptTags(ctx, newCategoryID)
		if err != nil {
			return err
		}
		if err := a.Activities.SetTags(ctx, id, tagIDs); err != nil {
			return err
		}
	}

	notes, err := a.In.Str("Notes ('-' to clear)", false, detail.Notes)
	if err != nil {
		return err
	}
	if notes == "-" {
		notes = ""
	}
	if notes != detail.Notes {
		update.Notes = &notes
	}

	changed, err := a.Activities.Update(ctx, id, update)
	var overlap *service.OverlapError
	switch {
	case errors.As(err, &overlap):
		fmt.Fprintln(a.Out)
		WriteOverlap(a.Out, overlap)
		return nil
	case err != nil:
		return err
	}
	if changed || changeTags {
		fmt.Fprintln(a.Out, "Updated.")
	} else {
		fmt.Fprintln(a.Out, "Nothing changed.")
	}
	return nil
}

// Delete shows the activity, asks for confirmation, and removes it.
func (a *App) Delete(ctx context.Context, id uint) error {
	detail, err := a.Activities.Get(ctx, id)
	if err != nil {
		return err
	}
	if detail == nil {
		fmt.Fprintf(a.Out, "Activity %d not found.\n", id)
		return nil
	}

	fmt.Fprintln(a.Out, "\n  About to delete:")
	fmt.Fprintf(a.Out, "    %s %s - %s  %s\n",
		detail.Start.Format(time.DateOnly), FormatClock(detail.Start), FormatClock(detail.End),
		Colored(detail.CategoryName, detail.CategoryColor))
	if detail.TagNames != "" {
		fmt.Fprintf(a.Out, "    Tags: %s\n", detail.TagNames)
	}
	if detail.Notes != "" {
		fmt.Fprintf(a.Out, "    Notes: %s\n", detail.Notes)
	}

	sure, err := a.In.YesNo("Are you sure?", false)
	if err != nil {
		return err
	}
	if !sure {
		fmt.Fprintln(a.Out, "Cancelled.")
		return nil
	}

	removed, err := a.Activities.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed == nil {
		fmt.Fprintf(a.Out, "Activity %d not found.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "Deleted activity from %s (%s - %s).\n",
		removed.StartTime.Format(time.DateOnly), FormatClock(removed.StartTime), FormatClock(removed.EndTime))
	return nil
}

// Show prints the full detail of one activity.
func (a *App) Show(ctx context.Context, id uint) error {
	detail, err := a.Activities.Get(ctx, id)
	if err != nil {
		return err
	}
	if detail == nil {
		fmt.Fprintf(a.Out, "Activity %d not found.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "[%d] %s %s - %s (%s)\n", detail.ID,
		detail.Start.Format(time.DateOnly), FormatClock(detail.Start), FormatClock(detail.End),
		FormatDuration(detail.DurationMinutes))
	fmt.Fprintf(a.Out, "  Category: %s\n", Colored(detail.CategoryName, detail.CategoryColor))
	fmt.Fprintf(a.Out, "  Tags: %s\n", orNone(detail.TagNames))
	fmt.Fprintf(a.Out, "  Notes: %s\n", orNone(detail.Notes))
	return nil
}

// Day lists the activities of one calendar date.
func (a *App) Day(ctx context.Context, day time.Time) error {
	activities, err := a.Activities.ByDate(ctx, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "\n%s\n", day.Format("Monday, January 2"))
	WriteActivities(a.Out, activities, false)
	return nil
}

// Range lists the activities within a closed date range.
func (a *App) Range(ctx context.Context, from, to time.Time) error {
	activities, err := a.Activities.InRange(ctx, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "\n%s - %s\n", from.Format(time.DateOnly), to.Format(time.DateOnly))
	WriteActivities(a.Out, activities, true)
	return nil
}

// Recent lists the latest activities, newest first.
func (a *App) Recent(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = a.RecentLimit
	}
	activities, err := a.Activities.Recent(ctx, limit)
	if err != nil {
		return err
	}
	WriteActivities(a.Out, activities, true)
	return nil
}

// ListCategories prints all categories.
func (a *App) ListCategories(ctx context.Context) error {
	categories, err := a.Labels.Categories(ctx)
	if err != nil {
		return err
	}
	WriteCategories(a.Out, categories)
	return nil
}

// ListTags prints every category with its tags.
func (a *App) ListTags(ctx context.Context) error {
	categories, err := a.Labels.Categories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Fprintln(a.Out, "No categories yet.")
		return nil
	}
	for _, c := range categories {
		tags, err := a.Labels.TagsFor(ctx, c.ID)
		if err != nil {
			return err
		}
		WriteTags(a.Out, c, tags)
	}
	return nil
}

// RenameCategory renames a category, refusing name collisions.
func (a *App) RenameCategory(ctx context.Context, id uint, newName string) error {
	ok, err := a.Labels.RenameCategory(ctx, id, newName)
	if errors.Is(err, service.ErrNameTaken) {
		fmt.Fprintf(a.Out, "A category named '%s' already exists.\n", strings.TrimSpace(newName))
		return nil
	}
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.Out, "Category %d not found.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "Renamed to '%s'.\n", strings.TrimSpace(newName))
	return nil
}

// RenameTag renames a tag, refusing collisions within its category.
func (a *App) RenameTag(ctx context.Context, id uint, newName string) error {
	ok, err := a.Labels.RenameTag(ctx, id, newName)
	if errors.Is(err, service.ErrNameTaken) {
		fmt.Fprintf(a.Out, "A tag named '%s' already exists in that category.\n", strings.TrimSpace(newName))
		return nil
	}
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.Out, "Tag %d not found.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "Renamed to '%s'.\n", strings.TrimSpace(newName))
	return nil
}

// DeleteCategory destroys a category and everything it owns, after an
// explicit confirmation. This is the only cascading delete in the system.
func (a *App) DeleteCategory(ctx context.Context, id uint) error {
	category, err := a.Labels.Category(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		fmt.Fprintf(a.Out, "Category %d not found.\n", id)
		return nil
	}

	fmt.Fprintf(a.Out, "This deletes category '%s' AND every activity logged under it.\n", category.Name)
	sure, err := a.In.YesNo("Are you sure?", false)
	if err != nil {
		return err
	}
	if !sure {
		fmt.Fprintln(a.Out, "Cancelled.")
		return nil
	}

	name, destroyed, found, err := a.Labels.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.Out, "Category %d not found.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "Deleted category '%s' and %d activities.\n", name, destroyed)
	return nil
}

// DeleteTag removes a tag after confirmation; activities keep their other
// tags and are otherwise untouched.
func (a *App) DeleteTag(ctx context.Context, id uint) error {
	sure, err := a.In.YesNo("Are you sure?", false)
	if err != nil {
		return err
	}
	if !sure {
		fmt.Fprintln(a.Out, "Cancelled.")
		return nil
	}
	name, found, err := a.Labels.DeleteTag(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.Out, "Tag %d not found.\n", id)
		return nil
	}
	fmt.Fprintf(a.Out, "Deleted '%s'.\n", name)
	return nil
}

// SetColor updates a category's display color.
func (a *App) SetColor(ctx context.Context, id uint, color string) error {
	ok, err := a.Labels.SetCategoryColor(ctx, id, color)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.Out, "Category %d not found.\n", id)
		return nil
	}
	fmt.Fprintln(a.Out, Colored("Color updated.", &color))
	return nil
}

// ReportDaily prints the by-day report.
func (a *App) ReportDaily(ctx context.Context, from, to time.Time) error {
	rows, err := a.Reports.Daily(ctx, from, to)
	if err != nil {
		return err
	}
	WriteDailyReport(a.Out, rows)
	return nil
}

// ReportCategories prints the by-category report.
func (a *App) ReportCategories(ctx context.Context, from, to time.Time) error {
	rows, err := a.Reports.ByCategory(ctx, from, to)
	if err != nil {
		return err
	}
	WriteCategoryReport(a.Out, rows)
	return nil
}

// ReportTags prints the by-tag report.
func (a *App) ReportTags(ctx context.Context, from, to time.Time) error {
	rows, err := a.Reports.ByTag(ctx, from, to)
	if err != nil {
		return err
	}
	WriteTagReport(a.Out, rows)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Shell runs the interactive command loop. Unambiguous command prefixes
// are accepted ("rec" runs recent). The idle-logging reminder runs in the
// background while the shell is open.
func (a *App) Shell(ctx context.Context) error {
	if a.Scheduler != nil && a.ReminderEvery > 0 {
		if _, err := a.Scheduler.ScheduleInterval(a.ReminderEvery, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			nudge, err := a.Reminder.IdleNudge(jobCtx, a.now(), a.ReminderEvery)
			if err != nil {
				log.Printf("reminder: %v", err)
				return
			}
			if nudge != "" {
				fmt.Fprintf(a.Out, "\n%s\n", nudge)
			}
		}); err != nil {
			return err
		}
		a.Scheduler.Start()
		defer a.Scheduler.Stop()
	}

	commands := map[string]func(context.Context) error{
		"log":    a.Log,
		"today":  func(ctx context.Context) error { return a.Day(ctx, a.today()) },
		"yesterday": func(ctx context.Context) error {
			return a.Day(ctx, a.today().AddDate(0, 0, -1))
		},
		"week": func(ctx context.Context) error {
			return a.Range(ctx, a.today().AddDate(0, 0, -6), a.today())
		},
		"range": func(ctx context.Context) error {
			from, err := a.In.Date("Start date", nil)
			if err != nil {
				return err
			}
			to, err := a.In.Date("End date", &from)
			if err != nil {
				return err
			}
			return a.Range(ctx, from, to)
		},
		"recent": func(ctx context.Context) error {
			n, err := a.In.Int("How many?", a.RecentLimit, 1)
			if err != nil {
				return err
			}
			return a.Recent(ctx, n)
		},
		"edit":   a.promptForID("Activity id", a.Edit),
		"delete": a.promptForID("Activity id", a.Delete),
		"show":   a.promptForID("Activity id", a.Show),
		"categories": a.ListCategories,
		"tags":       a.ListTags,
		"report daily":      a.promptRangeReport(a.ReportDaily),
		"report categories": a.promptRangeReport(a.ReportCategories),
		"report tags":       a.promptRangeReport(a.ReportTags),
		"help": func(context.Context) error { a.writeHelp(); return nil },
	}

	fmt.Fprintln(a.Out, "timelog - 'help' for commands, 'quit' to exit")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := a.In.Line("\n> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Out, "Goodbye!")
				return nil
			}
			return err
		}
		cmd := strings.ToLower(line)
		if cmd == "" {
			continue
		}
		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			fmt.Fprintln(a.Out, "Goodbye!")
			return nil
		}

		handler, ok := commands[cmd]
		if !ok {
			var matches []string
			for name := range commands {
				if strings.HasPrefix(name, cmd) {
					matches = append(matches, name)
				}
			}
			switch len(matches) {
			case 1:
				handler = commands[matches[0]]
			case 0:
				fmt.Fprintf(a.Out, "Unknown command: '%s'. Type 'help' for commands.\n", cmd)
				continue
			default:
				sort.Strings(matches)
				fmt.Fprintf(a.Out, "Ambiguous: %s\n", strings.Join(matches, ", "))
				continue
			}
		}

		if err := handler(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Out, "Cancelled.")
				continue
			}
			fmt.Fprintf(a.Out, "Error: %v\n", err)
		}
	}
}

func (a *App) promptForID(label string, fn func(context.Context, uint) error) func(context.Context) error {
	return func(ctx context.Context) error {
		n, err := a.In.Int(label, 0, 1)
		if err != nil {
			return err
		}
		return fn(ctx, uint(n))
	}
}

func (a *App) promptRangeReport(fn func(context.Context, time.Time, time.Time) error) func(context.Context) error {
	return func(ctx context.Context) error {
		weekAgo := a.today().AddDate(0, 0, -7)
		today := a.today()
		from, err := a.In.Date("Start date", &weekAgo)
		if err != nil {
			return err
		}
		to, err := a.In.Date("End date", &today)
		if err != nil {
			return err
		}
		return fn(ctx, from, to)
	}
}

func (a *App) writeHelp() {
	fmt.Fprint(a.Out, `
Commands:
  log                 log activities (supports chaining)
  edit                edit an activity by id
  delete              delete an activity by id
  show                show one activity
  today / yesterday   activities of a day
  week                last 7 days
  range               activities in a date range
  recent              latest activities
  categories          list categories
  tags                list tags by category
  report daily        time per day
  report categories   time per category
  report tags         time per tag
  quit                exit
Unambiguous prefixes work, e.g. 'rec' for recent.
`)
}
