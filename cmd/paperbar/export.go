package main

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/tracker"
	"github.com/ShayCichocki/paperbar/internal/tui"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export PAPER",
	Short: "Export a paper's plan as YAML",
	Long: `Export a paper with its milestones and tasks as a YAML document.

Writes to stdout unless --output names a file.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the plan to this file")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	paper, err := a.findPaper(args[0])
	if err != nil {
		return err
	}

	plan, err := tracker.ExportPlan(a.store, paper.ID)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return plan.WriteYAML(a.out)
	}

	var buf bytes.Buffer
	if err := plan.WriteYAML(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(exportOutput, &buf); err != nil {
		return fmt.Errorf("write %s: %w", exportOutput, err)
	}
	tui.Success(a.out, "Exported plan for %q to %s", paper.Name, exportOutput)
	tui.Detail(a.out, "%d milestone(s), %s of estimated work", len(plan.Milestones), tui.FormatHours(plan.TotalHours()))
	return nil
}
