package main

import (
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/tui"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Change the status of a task",
	Long: `Change the status of a task.

REF is a task id or any unambiguous prefix of one, as shown in the ID
column of 'paperbar today'.`,
}

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Change the status of a milestone",
	Long: `Change the status of a milestone.

REF is a milestone id or any unambiguous prefix of one, as shown in the ID
column of 'paperbar list milestones'.`,
}

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Archive or restore papers",
}

func init() {
	taskCmd.AddCommand(taskStatusCmd("done", "Mark a task completed", func(a *app, id string) (*models.Task, error) {
		return a.tasks.Complete(id)
	}))
	taskCmd.AddCommand(taskStatusCmd("skip", "Mark a task skipped", func(a *app, id string) (*models.Task, error) {
		return a.tasks.Skip(id)
	}))
	taskCmd.AddCommand(taskStatusCmd("start", "Mark a task in progress", func(a *app, id string) (*models.Task, error) {
		return a.tasks.Start(id)
	}))

	milestoneCmd.AddCommand(milestoneStatusCmd("done", "Mark a milestone completed", func(a *app, id string) (*models.Milestone, error) {
		return a.milestones.Complete(id)
	}))
	milestoneCmd.AddCommand(milestoneStatusCmd("start", "Mark a milestone in progress", func(a *app, id string) (*models.Milestone, error) {
		return a.milestones.Start(id)
	}))

	paperCmd.AddCommand(paperArchiveCmd("archive", "Hide a paper from default listings", func(a *app, id string) (*models.Paper, error) {
		return a.papers.Archive(id)
	}))
	paperCmd.AddCommand(paperArchiveCmd("unarchive", "Restore an archived paper", func(a *app, id string) (*models.Paper, error) {
		return a.papers.Unarchive(id)
	}))
}

func taskStatusCmd(use, short string, apply func(*app, string) (*models.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " REF",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.tasks.Resolve(args[0])
			if err != nil {
				return err
			}
			task, err = apply(a, task.ID)
			if err != nil {
				return err
			}
			tui.Success(a.out, "Task %s is now %s: %s", models.ShortID(task.ID), task.Status, task.Description)
			return nil
		},
	}
}

func milestoneStatusCmd(use, short string, apply func(*app, string) (*models.Milestone, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " REF",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.milestones.Resolve(args[0])
			if err != nil {
				return err
			}
			m, err = apply(a, m.ID)
			if err != nil {
				return err
			}
			tui.Success(a.out, "Milestone %s is now %s: %s", models.ShortID(m.ID), m.Status, m.Description)
			return nil
		},
	}
}

func paperArchiveCmd(use, short string, apply func(*app, string) (*models.Paper, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			paper, err := a.findPaper(args[0])
			if err != nil {
				return err
			}
			paper, err = apply(a, paper.ID)
			if err != nil {
				return err
			}
			if paper.Archived {
				tui.Success(a.out, "Archived paper %q", paper.Name)
			} else {
				tui.Success(a.out, "Restored paper %q", paper.Name)
			}
			return nil
		},
	}
}
