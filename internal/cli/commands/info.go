package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/pkg/output"
)

// InfoOptions holds command-line options for the info command.
type InfoOptions struct {
	Output  string
	Verbose bool
}

// NewInfoCommand creates the info command.
func NewInfoCommand(g *Globals) *cobra.Command {
	opts := &InfoOptions{}

	cmd := &cobra.Command{
		Use:   "info <file|glob>...",
		Short: "Summarize GPS telemetry files",
		Long: `Load each file and report its record count, time span, distance and bounds.

Lines that cannot be used (blank, short, unparsable timestamp) are counted,
not fatal. A file with no usable records is reported with zero records.

Example:
  gpsreplay info drive.csv
  gpsreplay info -o json 'logs/*.csv'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, g, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|msgpack)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-reason drop counts")

	return cmd
}

func runInfo(cmd *cobra.Command, g *Globals, args []string, opts *InfoOptions) error {
	v, err := g.setup(cmd)
	if err != nil {
		return err
	}

	files, err := expand(args)
	if err != nil {
		return err
	}

	for i, path := range files {
		e := v.newEngine()
		if _, err := v.load(e, path); err != nil {
			return err
		}

		if i > 0 && opts.Output == "text" {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		info, err := output.NewInfo(path, e.Sequence(), e.Stats())
		if err != nil {
			return err
		}
		if err := render(v.ctx, cmd, opts.Output, output.FormatOptions{Verbose: opts.Verbose}, info); err != nil {
			return err
		}
	}

	return nil
}
