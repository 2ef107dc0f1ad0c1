package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/dates"
	"github.com/ShayCichocki/paperbar/internal/tracker"
	"github.com/ShayCichocki/paperbar/internal/tui"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

var (
	addPaperDeadline    string
	addPaperConference  string
	addPaperDescription string

	addMilestoneDue      string
	addMilestonePriority int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add papers and milestones",
}

var addPaperCmd = &cobra.Command{
	Use:   "paper NAME",
	Short: "Add a new paper with a deadline",
	Long: `Add a new paper with a deadline.

Dates accept YYYY-MM-DD, M/D, "Jan 2", weekday names and relative forms
such as "tomorrow" or "in 2 weeks".`,
	Example: `  paperbar add paper "Sparse Attention" -d 5/10 -c NeurIPS`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAddPaper,
}

var addMilestoneCmd = &cobra.Command{
	Use:     "milestone PAPER DESCRIPTION",
	Short:   "Add a milestone to a paper",
	Example: `  paperbar add milestone "Sparse Attention" "Finish experiments" -d "in 2 weeks" -p 3`,
	Args:    cobra.ExactArgs(2),
	RunE:    runAddMilestone,
}

func init() {
	addPaperCmd.Flags().StringVarP(&addPaperDeadline, "deadline", "d", "", "Deadline date (e.g., 5/10, 2025-05-10, \"in 2 weeks\")")
	addPaperCmd.Flags().StringVarP(&addPaperConference, "conference", "c", "", "Conference name (e.g., NeurIPS, ICML)")
	addPaperCmd.Flags().StringVar(&addPaperDescription, "description", "", "Paper description")
	_ = addPaperCmd.MarkFlagRequired("deadline")

	addMilestoneCmd.Flags().StringVarP(&addMilestoneDue, "due", "d", "", "Due date (e.g., 5/10, 2025-05-10, \"in 2 weeks\")")
	addMilestoneCmd.Flags().IntVarP(&addMilestonePriority, "priority", "p", models.MinPriority,
		fmt.Sprintf("Priority %d-%d (higher = more important)", models.MinPriority, models.MaxPriority))
	_ = addMilestoneCmd.MarkFlagRequired("due")

	addCmd.AddCommand(addPaperCmd)
	addCmd.AddCommand(addMilestoneCmd)
}

func runAddPaper(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	deadline, err := dates.Parse(addPaperDeadline, a.today)
	if err != nil {
		return err
	}

	paper, err := a.papers.Create(tracker.PaperInput{
		Name:        args[0],
		Deadline:    deadline,
		Conference:  addPaperConference,
		Description: addPaperDescription,
	})
	if err != nil {
		return err
	}

	tui.Success(a.out, "Created paper %q", paper.Name)
	tui.Detail(a.out, "Deadline: %s (%s)", dates.Format(deadline, a.today), deadline)
	if paper.Conference != "" {
		tui.Detail(a.out, "Conference: %s", paper.Conference)
	}
	if deadline.Before(a.today) {
		tui.Warning(a.out, "The deadline is already in the past")
	}
	return nil
}

func runAddMilestone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	due, err := dates.Parse(addMilestoneDue, a.today)
	if err != nil {
		return err
	}

	paper, err := a.findPaper(args[0])
	if err != nil {
		return err
	}

	milestone, late, err := a.milestones.Create(paper.ID, args[1], due, addMilestonePriority)
	if err != nil {
		return err
	}

	tui.Success(a.out, "Created milestone for %q", paper.Name)
	tui.Detail(a.out, "ID: %s", models.ShortID(milestone.ID))
	tui.Detail(a.out, "Description: %s", milestone.Description)
	tui.Detail(a.out, "Due: %s (%s)", dates.Format(due, a.today), due)
	tui.Detail(a.out, "Priority: %d", milestone.Priority)
	if late {
		tui.Warning(a.out, "Milestone is due after the paper deadline (%s)", paper.Deadline)
	}
	return nil
}
