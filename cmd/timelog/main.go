// Command timelog is a single-user terminal time tracker.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timelog/internal/cli"
	"timelog/internal/config"
	"timelog/internal/model"
	"timelog/internal/repository"
	"timelog/internal/service"
	"timelog/internal/timeparse"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// run keeps the database close in a defer so it happens on error paths
// too; cobra's PersistentPostRun is skipped when RunE fails.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeDB()

	return rootCmd.ExecuteContext(ctx)
}

var (
	app   *cli.App
	sqlDB *sql.DB

	recentN    int
	reportFrom string
	reportTo   string
)

var rootCmd = &cobra.Command{
	Use:   "timelog",
	Short: "Track time-stamped activities with categories and tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Shell(cmd.Context())
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log one or more activities interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Log(cmd.Context())
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Edit(cmd.Context(), id)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Delete(cmd.Context(), id)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one activity in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Show(cmd.Context(), id)
	},
}

var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "List activities for a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now()
		if len(args) == 1 {
			parsed, err := timeparse.Date(args[0], time.Now())
			if err != nil {
				return err
			}
			day = parsed
		}
		return app.Day(cmd.Context(), day)
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Day(cmd.Context(), time.Now())
	},
}

var yesterdayCmd = &cobra.Command{
	Use:   "yesterday",
	Short: "List yesterday's activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Day(cmd.Context(), time.Now().AddDate(0, 0, -1))
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "List the last 7 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Range(cmd.Context(), time.Now().AddDate(0, 0, -6), time.Now())
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range <from> <to>",
	Short: "List activities in a date range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseDatePair(args[0], args[1])
		if err != nil {
			return err
		}
		return app.Range(cmd.Context(), from, to)
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Recent(cmd.Context(), recentN)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListCategories(cmd.Context())
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.RenameCategory(cmd.Context(), id, args[1])
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category and ALL of its activities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.DeleteCategory(cmd.Context(), id)
	},
}

var categoryColorCmd = &cobra.Command{
	Use:   "color <id> <#RRGGBB>",
	Short: "Set a category's display color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.SetColor(cmd.Context(), id, args[1])
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListTags(cmd.Context())
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.RenameTag(cmd.Context(), id, args[1])
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a tag (activities are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.DeleteTag(cmd.Context(), id)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate reports over a date range",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Time per day",
	RunE:  runReport(func(ctx context.Context, from, to time.Time) error { return app.ReportDaily(ctx, from, to) }),
}

var reportCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Time per category",
	RunE:  runReport(func(ctx context.Context, from, to time.Time) error { return app.ReportCategories(ctx, from, to) }),
}

var reportTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Time per tag",
	RunE:  runReport(func(ctx context.Context, from, to time.Time) error { return app.ReportTags(ctx, from, to) }),
}

func init() {
	rootCmd.PersistentPreRunE = setup

	recentCmd.Flags().IntVarP(&recentN, "count", "n", 0, "How many activities to show")
	for _, c := range []*cobra.Command{reportDailyCmd, reportCategoriesCmd, reportTagsCmd} {
		c.Flags().StringVar(&reportFrom, "from", "-7", "Range start (YYYY-MM-DD, 'today', '-N')")
		c.Flags().StringVar(&reportTo, "to", "today", "Range end")
	}

	categoriesCmd.AddCommand(categoryRenameCmd, categoryDeleteCmd, categoryColorCmd)
	tagsCmd.AddCommand(tagRenameCmd, tagDeleteCmd)
	reportCmd.AddCommand(reportDailyCmd, reportCategoriesCmd, reportTagsCmd)
	rootCmd.AddCommand(logCmd, editCmd, deleteCmd, showCmd,
		dayCmd, todayCmd, yesterdayCmd, weekCmd, rangeCmd, recentCmd,
		categoriesCmd, tagsCmd, reportCmd)
}

// setup opens the database and wires the services for every command.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err = db.DB(); err != nil {
		sqlDB = nil
	}

	activityRepo := repository.NewActivityRepository(db)
	categoryRepo := repository.NewLabelRepository[model.Category](db)
	tagRepo := repository.NewLabelRepository[model.Tag](db)
	reportRepo := repository.NewReportRepository(db)

	app = &cli.App{
		Activities:    service.NewActivityService(db, activityRepo),
		Labels:        service.NewLabelService(db, categoryRepo, tagRepo, activityRepo),
		Reports:       service.NewReportService(reportRepo),
		Reminder:      service.NewReminderService(activityRepo),
		Scheduler:     service.NewSchedulerService(time.Local),
		ReminderEvery: cfg.ReminderInterval,
		RecentLimit:   cfg.RecentLimit,
		In:            cli.NewPrompter(os.Stdin, os.Stdout),
		Out:           os.Stdout,
	}
	return nil
}

func closeDB() {
	if sqlDB != nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}
}

func runReport(fn func(context.Context, time.Time, time.Time) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		from, to, err := parseDatePair(reportFrom, reportTo)
		if err != nil {
			return err
		}
		return fn(cmd.Context(), from, to)
	}
}

func parseDatePair(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := timeparse.Date(fromStr, time.Now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := timeparse.Date(toStr, time.Now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, to, nil
}

func parseID(arg string) (uint, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(n), nil
}
