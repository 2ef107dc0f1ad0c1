package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/tui"
)

var (
	listPapersAll     bool
	listMilestonesAll bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers and milestones",
}

var listPapersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List papers ordered by deadline",
	Args:  cobra.NoArgs,
	RunE:  runListPapers,
}

var listMilestonesCmd = &cobra.Command{
	Use:   "milestones [PAPER]",
	Short: "List milestones, optionally for one paper",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runListMilestones,
}

func init() {
	listPapersCmd.Flags().BoolVar(&listPapersAll, "all", false, "Include archived papers")
	listMilestonesCmd.Flags().BoolVar(&listMilestonesAll, "all", false, "Include completed milestones")

	listCmd.AddCommand(listPapersCmd)
	listCmd.AddCommand(listMilestonesCmd)
}

func runListPapers(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	papers, err := a.papers.List(listPapersAll)
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		tui.Info(a.out, "No papers found. Add one with 'paperbar add paper NAME --deadline DATE'.")
		return nil
	}

	title := "Papers"
	if listPapersAll {
		title = "All Papers"
	}
	fmt.Fprint(a.out, tui.PapersTable(title, papers, a.today))
	return nil
}

func runListMilestones(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	paperID := ""
	title := "Milestones"
	if len(args) == 1 {
		paper, err := a.findPaper(args[0])
		if err != nil {
			return err
		}
		paperID = paper.ID
		title = "Milestones: " + paper.Name
	}

	milestones, err := a.milestones.ListByPaper(paperID, listMilestonesAll)
	if err != nil {
		return err
	}
	if len(milestones) == 0 {
		tui.Info(a.out, "No milestones found. Add one with 'paperbar add milestone PAPER DESCRIPTION --due DATE'.")
		return nil
	}

	names, err := a.papers.Names()
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, tui.MilestonesTable(title, milestones, names, a.today))
	return nil
}
