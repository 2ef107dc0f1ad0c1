package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/dates"
	"github.com/ShayCichocki/paperbar/internal/decompose"
	"github.com/ShayCichocki/paperbar/internal/tui"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

var (
	decomposeForce     bool
	decomposeDryRun    bool
	decomposeMilestone string
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose PAPER",
	Short: "Break milestones down into daily tasks",
	Long: `Break a paper's milestones down into daily tasks with a language model.

Milestones that were already decomposed are skipped unless --force is given,
in which case their tasks are replaced. --dry-run prints the generated tasks
without storing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	decomposeCmd.Flags().BoolVarP(&decomposeForce, "force", "f", false, "Re-decompose even if already decomposed")
	decomposeCmd.Flags().BoolVarP(&decomposeDryRun, "dry-run", "n", false, "Show what would be created without saving")
	decomposeCmd.Flags().StringVarP(&decomposeMilestone, "milestone", "m", "", "Decompose only this milestone (id or id prefix)")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	paper, err := a.findPaper(args[0])
	if err != nil {
		return err
	}

	var milestoneID string
	if decomposeMilestone != "" {
		m, err := a.milestones.Resolve(decomposeMilestone)
		if err != nil {
			return err
		}
		if m.PaperID != paper.ID {
			return fmt.Errorf("milestone %s does not belong to %q", models.ShortID(m.ID), paper.Name)
		}
		milestoneID = m.ID
	}

	d := a.decomposer()

	opts := decompose.Options{Force: decomposeForce, DryRun: decomposeDryRun}
	var tasks []models.Task
	err = tui.RunWithSpinner(cmdContext(cmd), a.out, "Generating tasks...", func(ctx context.Context) error {
		var err error
		if milestoneID != "" {
			tasks, err = d.DecomposeMilestone(ctx, milestoneID, opts)
		} else {
			tasks, err = d.DecomposePaper(ctx, paper.ID, opts)
		}
		return err
	})
	if err != nil {
		if len(tasks) > 0 && !opts.DryRun {
			tui.Warning(a.errOut, "Stored %d task(s) before the failure", len(tasks))
		}
		return err
	}

	if len(tasks) == 0 {
		tui.Warning(a.out, "No tasks generated. Add milestones first, or use --force to redo decomposed ones.")
		return nil
	}

	if opts.DryRun {
		tui.Info(a.out, "Dry run - tasks would be created:")
	} else {
		tui.Success(a.out, "Generated %d tasks", len(tasks))
	}
	printByDate(a, tasks)

	return a.printPlanWarnings(tasks)
}

// printByDate lists tasks under a heading per scheduled day.
func printByDate(a *app, tasks []models.Task) {
	byDate := make(map[models.Date][]models.Task)
	var days []models.Date
	for _, t := range tasks {
		if _, ok := byDate[t.ScheduledDate]; !ok {
			days = append(days, t.ScheduledDate)
		}
		byDate[t.ScheduledDate] = append(byDate[t.ScheduledDate], t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, day := range days {
		fmt.Fprintln(a.out)
		tui.Heading(a.out, dates.Format(day, a.today))
		for _, t := range byDate[day] {
			fmt.Fprintf(a.out, "  - %s (%s)\n", t.Description, tui.FormatHours(t.EstimatedHours))
		}
	}
}

// printPlanWarnings runs the advisory plan checks per milestone.
func (a *app) printPlanWarnings(tasks []models.Task) error {
	byMilestone := make(map[string][]models.Task)
	var order []string
	for _, t := range tasks {
		if _, ok := byMilestone[t.MilestoneID]; !ok {
			order = append(order, t.MilestoneID)
		}
		byMilestone[t.MilestoneID] = append(byMilestone[t.MilestoneID], t)
	}

	var warnings []string
	for _, id := range order {
		m, err := a.milestones.Get(id)
		if err != nil {
			return err
		}
		days, err := decompose.AvailableDays(a.today, m.DueDate)
		if err != nil {
			continue
		}
		result := decompose.NewValidator(m.DueDate, days).Validate(byMilestone[id])
		warnings = append(warnings, result.Warnings...)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(a.out)
		for _, w := range warnings {
			tui.Warning(a.out, "%s", w)
		}
	}
	return nil
}
