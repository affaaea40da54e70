package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/pkg/config"
	"github.com/gpsreplay/gpsreplay/pkg/engine"
	"github.com/gpsreplay/gpsreplay/pkg/export"
	"github.com/gpsreplay/gpsreplay/pkg/output"
	"github.com/gpsreplay/gpsreplay/pkg/webhook"
)

// ExportOptions holds the flags shared by the export subcommands.
type ExportOptions struct {
	Path      string
	OutputDir string
	Output    string
	Webhook   WebhookOptions
}

func (o *ExportOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Path, "file", "f", "", "Write to this path instead of <source>_<op>.csv")
	cmd.Flags().StringVar(&o.OutputDir, "output-dir", "", "Directory for generated output names (overrides output_dir)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "text", "Output format (text|json|msgpack)")
	o.Webhook.register(cmd, config.WebhookTriggerAlways)
}

// exportFunc positions e and writes one export.
type exportFunc func(v *env, e *engine.Engine) (export.Result, error)

// NewExportCommand creates the export command and its subcommands.
func NewExportCommand(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write part of a track to a new file",
		Long: `Write part of a track to a new file.

Exported files keep the source header and copy every retained line
unchanged. Without --file, the output is written next to the source
(or into output_dir) as <source>_<op>.csv.

Positions accept a record index (0-based), a time of day on the
track's first date (00:10:00), or a full timestamp.`,
	}

	cmd.AddCommand(
		newClipCommand(g),
		newTrimCommand(g, export.OpHead),
		newTrimCommand(g, export.OpTail),
		newCutCommand(g),
	)

	return cmd
}

func newClipCommand(g *Globals) *cobra.Command {
	opts := &ExportOptions{}
	var in, out string

	cmd := &cobra.Command{
		Use:   "clip <file>",
		Short: "Export the records between two positions, inclusive",
		Example: `  gpsreplay export clip drive.csv --in 120 --out 480
  gpsreplay export clip drive.csv --in 00:10:00 --out 00:12:30 -f lap.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, g, args[0], opts, func(v *env, e *engine.Engine) (export.Result, error) {
				if err := seekTo(v, e, in); err != nil {
					return export.Result{}, fmt.Errorf("--in: %w", err)
				}
				if err := e.MarkIn(); err != nil {
					return export.Result{}, err
				}
				if err := seekTo(v, e, out); err != nil {
					return export.Result{}, fmt.Errorf("--out: %w", err)
				}
				if err := e.MarkOut(); err != nil {
					return export.Result{}, err
				}
				v.log.Debug().Str("selection", e.SelectionSummary().String()).Msg("marks set")
				return e.ExportSelection(opts.Path)
			})
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "In mark position")
	cmd.Flags().StringVar(&out, "out", "", "Out mark position")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	opts.register(cmd)

	return cmd
}

func newTrimCommand(g *Globals, op export.Op) *cobra.Command {
	opts := &ExportOptions{}
	var at string

	short := "Export the records at or after a position's time"
	if op == export.OpHead {
		short = "Export the records at or before a position's time"
	}

	cmd := &cobra.Command{
		Use:     string(op) + " <file>",
		Short:   short,
		Example: fmt.Sprintf("  gpsreplay export %s drive.csv --at 00:10:00", op),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, g, args[0], opts, func(v *env, e *engine.Engine) (export.Result, error) {
				if err := seekTo(v, e, at); err != nil {
					return export.Result{}, fmt.Errorf("--at: %w", err)
				}
				return e.ExportTrim(op == export.OpHead, opts.Path)
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Anchor position")
	_ = cmd.MarkFlagRequired("at")
	opts.register(cmd)

	return cmd
}

func newCutCommand(g *Globals) *cobra.Command {
	opts := &ExportOptions{}
	var from string

	cmd := &cobra.Command{
		Use:   "cut <file>",
		Short: "Export the records at or after a time",
		Long: `Export the records at or after a time.

Unlike tail, the time does not have to match a record: every record whose
timestamp is not before it is kept, in source order.`,
		Example: `  gpsreplay export cut drive.csv --from "2026-01-14 00:10:00"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, g, args[0], opts, func(v *env, e *engine.Engine) (export.Result, error) {
				t, err := parsePointTime(e.Sequence(), v.cfg.Location(), from)
				if err != nil {
					return export.Result{}, fmt.Errorf("--from: %w", err)
				}
				return e.ExportCut(t, opts.Path)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Keep records at or after this time")
	_ = cmd.MarkFlagRequired("from")
	opts.register(cmd)

	return cmd
}

func runExport(cmd *cobra.Command, g *Globals, path string, opts *ExportOptions, do exportFunc) error {
	v, err := g.setup(cmd)
	if err != nil {
		return err
	}
	if _, err := output.NewFormatter(opts.Output, output.FormatOptions{}); err != nil {
		return err
	}
	if opts.OutputDir != "" {
		v.cfg.OutputDir = opts.OutputDir
	}

	e := v.newEngine()
	if _, err := v.load(e, path); err != nil {
		return err
	}
	res, err := do(v, e)
	if err != nil {
		return err
	}

	report := &output.ExportReport{Source: path, Exports: []export.Result{res}}
	if err := render(v.ctx, cmd, opts.Output, output.FormatOptions{}, report); err != nil {
		return err
	}

	v.sendWebhooks(&opts.Webhook, webhook.EventExport, report, false)
	return nil
}

// seekTo moves the cursor to the record value resolves to.
func seekTo(v *env, e *engine.Engine, value string) error {
	i, _, err := resolvePoint(e.Sequence(), v.cfg.Location(), value)
	if err != nil {
		return err
	}
	return e.Seek(i)
}
