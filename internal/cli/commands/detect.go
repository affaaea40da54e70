package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/pkg/config"
	"github.com/gpsreplay/gpsreplay/pkg/detector"
	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/output"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(g *Globals) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect timestamp formats in a telemetry file",
		Long: `Classify the timestamp column of a telemetry file.

Samples data lines and tests the first field against common timestamp
formats. Every value is counted once, under the first format it matches,
so a file that mixes formats shows each of them.

Timestamps with the date and time run together (2026-01-1400:05:40.004)
are reported separately; they load fine because ingest repairs them.

Optionally generates a starter config file with --write-config.

Example:
  gpsreplay detect drive.csv
  gpsreplay detect --all --sample 2000 drive.csv
  gpsreplay detect -w gpsreplay.yaml drive.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, g, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|msgpack)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 500, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, g *Globals, path string, opts *DetectOptions) error {
	v, err := g.setup(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithDelimiter(v.cfg.Delimiter),
	)
	result, err := d.DetectFromFile(v.ctx, path)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if opts.WriteConfig != "" {
		seq, _, err := ingest.ParseFile(path, ingest.WithDelimiter(v.cfg.Delimiter))
		if err != nil {
			return err
		}
		if err := writeStarterConfig(w, result, seq.Header, v.cfg.Delimiter, opts.WriteConfig); err != nil {
			return err
		}
	}

	if opts.Output != "text" {
		return render(v.ctx, cmd, opts.Output, output.FormatOptions{}, newDetectOutput(result, path, opts.ShowAll))
	}
	outputDetectText(w, result, path, opts)
	return nil
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, path string, opts *DetectOptions) {
	fmt.Fprintln(w, "=== Timestamp Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Values sampled: %d\n", result.SampledValues)
	fmt.Fprintf(w, "Unrecognized: %d\n", result.Unrecognized)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No timestamp format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: check the delimiter setting and that the timestamp is the first column.")
		return
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d values matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledValues)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.Sample)
	fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05.000 MST"))
	fmt.Fprintln(w)

	if result.Mixed() {
		fmt.Fprintf(w, "WARNING: %d formats are mixed in this column.\n", len(result.Matches))
		fmt.Fprintln(w)
	}
	if corrupt := result.CorruptCount(); corrupt > 0 {
		fmt.Fprintf(w, "NOTE: %d value(s) have date and time run together; ingest repairs them.\n", corrupt)
		fmt.Fprintln(w)
	}
	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%%, %d values)\n", i+2, m.Format.Name, m.Confidence*100, m.MatchCount)
			fmt.Fprintf(w, "   sample: %s\n", m.Sample)
		}
		fmt.Fprintln(w)
	}
}

// DetectMatch represents a format match in structured output.
type DetectMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	Sample     string  `json:"sample"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
	Corrupt    bool    `json:"corrupt,omitempty"`
}

// DetectOutput represents the full structured output.
type DetectOutput struct {
	File          string        `json:"file"`
	Matches       []DetectMatch `json:"matches"`
	SampledValues int           `json:"sampled_values"`
	Unrecognized  int           `json:"unrecognized"`
	AmbiguityNote string        `json:"ambiguity_note,omitempty"`
}

func newDetectOutput(result *detector.DetectionResult, path string, showAll bool) *DetectOutput {
	out := &DetectOutput{
		File:          path,
		SampledValues: result.SampledValues,
		Unrecognized:  result.Unrecognized,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]DetectMatch, 0),
	}

	matches := result.Matches
	if !showAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, DetectMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Layout:     m.Format.Layout,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			Sample:     m.Sample,
			Ambiguous:  m.Format.Ambiguous,
			Corrupt:    m.Format.Corrupt,
		})
	}
	return out
}

// writeStarterConfig generates a starter config file for the detected file.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, header []string, delimiter, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no timestamp format detected")
	}

	content := generateStarterConfig(result.BestMatch(), header, delimiter)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	abs := configPath
	if a, err := filepath.Abs(configPath); err == nil {
		abs = a
	}
	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", abs)
	return nil
}

// generateStarterConfig creates a YAML config template. Logical columns whose
// default name is missing from header are left commented out for the user.
func generateStarterConfig(match *detector.FormatMatch, header []string, delimiter string) string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	defaults := ingest.DefaultColumns()
	fields := []struct{ key, name string }{
		{"lat", defaults.Lat},
		{"lon", defaults.Lon},
		{"alt", defaults.Alt},
		{"speed", defaults.Speed},
		{"heading", defaults.Heading},
		{"sats", defaults.Sats},
	}

	var columns strings.Builder
	for _, f := range fields {
		if present[f.name] {
			fmt.Fprintf(&columns, "  %s: %q\n", f.key, f.name)
		} else {
			fmt.Fprintf(&columns, "  # %s: \"\" # %q not in header\n", f.key, f.name)
		}
	}

	return fmt.Sprintf(`# gpsreplay configuration
# Generated by: gpsreplay detect
# Detected format: %s (%.0f%% confidence)
# Header: %s

delimiter: %q
timezone: %s
tick_interval: %s
log_level: %s

columns:
%s
analysis:
  max_gap: %s
  max_speed_kmh: %g

# webhooks:
#   - name: ops
#     url: https://example.com/hooks/gps
#     trigger: on_issues
`, match.Format.Name, match.Confidence*100,
		strings.Join(header, delimiter),
		delimiter,
		config.DefaultTimezone,
		config.DefaultConfig().TickInterval,
		config.DefaultLogLevel,
		columns.String(),
		config.DefaultMaxGap,
		config.DefaultMaxSpeed)
}
