package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/paperbar/internal/store"
	"github.com/ShayCichocki/paperbar/internal/tui"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

// todayOptions selects what the today view shows.
type todayOptions struct {
	all   bool
	paper string
	watch bool
}

var todayFlags todayOptions

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's tasks (or all pending tasks with --all)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToday(cmd, todayFlags)
	},
}

func init() {
	todayCmd.Flags().BoolVarP(&todayFlags.all, "all", "a", false, "Show all pending tasks, not just today")
	todayCmd.Flags().StringVarP(&todayFlags.paper, "paper", "p", "", "Filter by paper name")
	todayCmd.Flags().BoolVar(&todayFlags.watch, "watch", false, "Redraw whenever the record store changes")
}

func runToday(cmd *cobra.Command, opts todayOptions) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	paperID := ""
	if opts.paper != "" {
		paper, err := a.findPaper(opts.paper)
		if err != nil {
			return err
		}
		paperID = paper.ID
	}

	if err := showToday(a, paperID, opts.all); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	tui.Info(a.errOut, "Watching %s for changes (ctrl+c to stop)", a.store.Path())
	return store.Watch(ctx, a.store.Path(), func() {
		a.today = clock()
		if tui.IsTerminal(a.out) {
			fmt.Fprint(a.out, "\033[H\033[2J")
		}
		if err := showToday(a, paperID, opts.all); err != nil {
			a.logger.Warn("refresh failed", zap.Error(err))
		}
	})
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// showToday prints the overdue warning, the overdue table and today's (or
// all pending) tasks.
func showToday(a *app, paperID string, all bool) error {
	var (
		tasks []models.Task
		title string
		err   error
	)
	if all {
		tasks, err = a.tasks.Pending(paperID)
		title = "All Pending Tasks"
	} else {
		tasks, err = a.tasks.Today(paperID, a.today)
		title = fmt.Sprintf("Today's Tasks (%s)", a.today.Format("Mon, Jan 02"))
	}
	if err != nil {
		return err
	}

	overdue, err := a.tasks.Overdue(paperID, a.today)
	if err != nil {
		return err
	}
	if len(overdue) > 0 {
		tui.Warning(a.out, "You have %d overdue task(s)!", len(overdue))
		fmt.Fprintln(a.out)
	}

	if len(tasks) == 0 && len(overdue) == 0 {
		if all {
			tui.Info(a.out, "No pending tasks. Great job!")
		} else {
			tui.Info(a.out, "No tasks scheduled for today. Use 'paperbar today --all' to see all pending tasks.")
		}
		return nil
	}

	names, err := a.tasks.PaperNames()
	if err != nil {
		return err
	}

	if len(overdue) > 0 && !all {
		fmt.Fprintln(a.out, tui.TasksTable("Overdue Tasks", overdue, names, true))
	}
	if len(tasks) > 0 {
		fmt.Fprint(a.out, tui.TasksTable(title, tasks, names, false))
	}
	return nil
}
