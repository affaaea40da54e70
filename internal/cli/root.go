// Package cli provides the command-line interface for gpsreplay.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "gpsreplay",
		Short: "Replay, diagnose and clip GPS telemetry logs",
		Long: `gpsreplay loads delimited GPS telemetry logs and replays them in real time.

It can:
  - Replay a track at its recorded pace
  - Report what a file contains and what ingest dropped
  - Diagnose sampling gaps, bad ordering, position jumps and lost fixes
  - Export clips, head/tail trims and time cuts with rows copied unchanged

Files are expected to start with a header line. The first column holds the
timestamp; other columns are found by header name (see the columns section
of the config file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Config file (defaults apply when unset)")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level override (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&g.LogJSON, "log-json", false, "Write logs as JSON instead of console text")

	rootCmd.AddCommand(commands.NewInfoCommand(g))
	rootCmd.AddCommand(commands.NewPlayCommand(g))
	rootCmd.AddCommand(commands.NewExportCommand(g))
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
