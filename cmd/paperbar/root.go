package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/paperbar/internal/tui"
	"github.com/ShayCichocki/paperbar/pkg/models"
)

var (
	flagConfigPath string
	flagDataDir    string
	flagVerbose    bool
)

// clock reports the current date; tests pin it.
var clock = models.Today

var rootCmd = &cobra.Command{
	Use:   "paperbar",
	Short: "Research paper deadline tracker",
	Long: `paperbar tracks research papers, their deadlines and milestones, and
breaks milestones down into daily tasks with a language model.

With no arguments, shows today's tasks.

Data lives in $XDG_DATA_HOME/paperbar (override with --data-dir or
PAPERBAR_DATA_DIR). Configuration is read from
$XDG_CONFIG_HOME/paperbar/config.yaml and .paperbar.yaml in the project.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToday(cmd, todayOptions{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (overrides user and project config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory holding the record store")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log debug output to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(milestoneCmd)
	rootCmd.AddCommand(paperCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		tui.Error(stderr, "%s", userMessage(err))
		return 1
	}
	return 0
}
