package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/pkg/analyzer"
	"github.com/gpsreplay/gpsreplay/pkg/config"
	"github.com/gpsreplay/gpsreplay/pkg/detector"
	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/output"
	"github.com/gpsreplay/gpsreplay/pkg/track"
	"github.com/gpsreplay/gpsreplay/pkg/webhook"
)

// maxIssueDetails caps the issues listed under one check.
const maxIssueDetails = 10

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Output     string
	Verbose    bool
	Quiet      bool
	Checks     []string
	From       string
	Until      string
	SampleSize int
	Webhook    WebhookOptions
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *Globals) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <file|glob>...",
		Short: "Diagnose problems in GPS telemetry files",
		Long: `Diagnose problems in GPS telemetry files.

For each file this command checks:
- Lines dropped during loading and why
- Logical columns missing from the header
- Timestamp formats in use, including date and time run together
- Sampling gaps longer than analysis.max_gap
- Timestamps that go backwards or repeat
- Position jumps faster than analysis.max_speed_kmh
- Runs of samples without a satellite fix

Exit codes:
  0 - No problems found
  1 - Problems found
  2 - Configuration or runtime error

Example:
  gpsreplay diagnose drive.csv
  gpsreplay diagnose -v --check gap,order 'logs/*.csv'
  gpsreplay diagnose -o json --from 00:10:00 --until 00:20:00 drive.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, g, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|msgpack)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().StringSliceVar(&opts.Checks, "check", nil, "Run specific check(s) only: gap, order, jump, fix")
	cmd.Flags().StringVar(&opts.From, "from", "", "Analyze from this record index or time")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Analyze up to this record index or time")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", 500, "Number of timestamps to sample for format detection")
	opts.Webhook.register(cmd, config.WebhookTriggerOnIssues)

	return cmd
}

func runDiagnose(cmd *cobra.Command, g *Globals, args []string, opts *DiagnoseOptions) error {
	v, err := g.setup(cmd)
	if err != nil {
		return err
	}
	if _, err := output.NewFormatter(opts.Output, output.FormatOptions{}); err != nil {
		return err
	}

	files, err := expand(args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, path := range files {
		report, results, err := diagnoseFile(v, path, opts)
		if err != nil {
			return err
		}

		problems := hasProblems(results)

		switch {
		case opts.Output != "text":
			err = render(v.ctx, cmd, opts.Output, output.FormatOptions{Verbose: opts.Verbose, Quiet: opts.Quiet}, report)
		case opts.Quiet:
			err = render(v.ctx, cmd, "text", output.FormatOptions{Quiet: true}, report)
		default:
			printDiagnostics(w, path, results, opts)
			if opts.Verbose {
				err = render(v.ctx, cmd, "text", output.FormatOptions{Verbose: true}, report)
			}
		}
		if err != nil {
			return err
		}

		v.sendWebhooks(&opts.Webhook, webhook.EventDiagnose, report, problems)

		if problems {
			ExitCode = 1
		}
	}

	return nil
}

// diagnoseFile loads path and runs every diagnostic over it.
func diagnoseFile(v *env, path string, opts *DiagnoseOptions) (*output.Report, []DiagnosticResult, error) {
	e := v.newEngine()
	if _, err := v.load(e, path); err != nil {
		return nil, nil, err
	}
	seq, stats := e.Sequence(), e.Stats()

	det, err := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithDelimiter(v.cfg.Delimiter),
	).DetectFromFile(v.ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("detecting timestamp format: %w", err)
	}

	analyzerOpts, err := timeRangeOptions(seq, v.cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(opts.Checks) > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithCheckFilter(opts.Checks))
	}

	a, err := analyzer.NewAnalyzer(v.cfg.Analysis, analyzerOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating analyzer: %w", err)
	}
	result, err := a.Analyze(v.ctx, path, seq)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, stats, v.configPath)
	report.Detection = output.NewDetection(det)

	results := []DiagnosticResult{
		checkIngest(path, stats),
		checkColumns(stats),
		checkTimestamps(path, det),
	}
	for _, r := range result.Results {
		results = append(results, checkResult(r))
	}

	v.log.Debug().Str("path", path).Int("issues", report.Summary.TotalIssues).Msg("diagnosed")
	return report, results, nil
}

// timeRangeOptions converts --from and --until into an analyzer time range.
func timeRangeOptions(seq *track.Sequence, cfg *config.Config, opts *DiagnoseOptions) ([]analyzer.AnalyzerOption, error) {
	if (opts.From == "" && opts.Until == "") || seq.Empty() {
		return nil, nil
	}

	span, _ := seq.Span()
	start, end := span.Start, span.End
	if opts.From != "" {
		_, t, err := resolvePoint(seq, cfg.Location(), opts.From)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		start = t
	}
	if opts.Until != "" {
		_, t, err := resolvePoint(seq, cfg.Location(), opts.Until)
		if err != nil {
			return nil, fmt.Errorf("--until: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--until %s is before --from %s", opts.Until, opts.From)
	}

	return []analyzer.AnalyzerOption{analyzer.WithTimeRange(start, end)}, nil
}

func checkIngest(path string, stats ingest.Stats) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Ingest",
		Details: []string{
			fmt.Sprintf("Data lines: %d", stats.Lines),
			fmt.Sprintf("Blank: %d", stats.Blank),
			fmt.Sprintf("Short (fewer fields than header): %d", stats.Short),
			fmt.Sprintf("Unparsable timestamp: %d", stats.BadTimestamp),
			fmt.Sprintf("Repaired timestamp: %d", stats.Recovered),
		},
	}

	switch {
	case stats.Accepted == 0:
		result.Status = "error"
		result.Message = fmt.Sprintf("No usable records in %d data line(s)", stats.Lines)
		result.Suggests = []string{
			fmt.Sprintf("Use 'gpsreplay detect %s' to see which timestamp formats the file uses", path),
			"Check the delimiter setting matches the file",
		}
	case stats.Dropped() > 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d record(s) loaded, %d line(s) dropped", stats.Accepted, stats.Dropped())
		if stats.BadTimestamp > 0 {
			result.Suggests = []string{
				fmt.Sprintf("Use 'gpsreplay detect %s' to inspect the timestamp column", path),
			}
		}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("%d record(s) loaded", stats.Accepted)
	}

	return result
}

func checkColumns(stats ingest.Stats) DiagnosticResult {
	result := DiagnosticResult{Check: "Columns"}

	if len(stats.MissingColumns) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Missing from header: %s (read as 0)", strings.Join(stats.MissingColumns, ", "))
		result.Suggests = []string{"Map header names in the columns section of your config"}
		return result
	}

	result.Status = "ok"
	result.Message = "All logical columns present"
	return result
}

func checkTimestamps(path string, det *detector.DetectionResult) DiagnosticResult {
	result := DiagnosticResult{Check: "Timestamp Format"}

	if !det.HasMatch() {
		result.Status = "error"
		result.Message = fmt.Sprintf("No known timestamp format in %d sampled value(s)", det.SampledValues)
		return result
	}

	best := det.BestMatch()
	result.Message = fmt.Sprintf("%s (%.1f%% of %d sampled)", best.Format.Name, best.Confidence*100, det.SampledValues)
	for _, m := range det.Matches {
		result.Details = append(result.Details,
			fmt.Sprintf("%s: %d, e.g. %s", m.Format.Name, m.MatchCount, m.Sample))
	}
	if det.Unrecognized > 0 {
		result.Details = append(result.Details, fmt.Sprintf("Unrecognized: %d", det.Unrecognized))
	}

	result.Status = "ok"
	if corrupt := det.CorruptCount(); corrupt > 0 {
		result.Status = "warning"
		result.Suggests = append(result.Suggests,
			fmt.Sprintf("%d timestamp(s) have date and time run together; they are repaired on load", corrupt))
	}
	if det.Mixed() || det.Unrecognized > 0 {
		result.Status = "warning"
	}
	if det.AmbiguityNote != "" {
		result.Status = "warning"
		result.Suggests = append(result.Suggests, det.AmbiguityNote)
	}

	return result
}

func checkResult(r *analyzer.CheckResult) DiagnosticResult {
	result := DiagnosticResult{
		Check:   fmt.Sprintf("%s: %s", strings.ToUpper(string(r.Type)), r.Description),
		Message: fmt.Sprintf("%d record(s) checked", r.Stats.RecordsProcessed),
	}

	if !r.HasIssues() {
		result.Status = "ok"
		return result
	}

	result.Status = "warning"
	result.Message = fmt.Sprintf("%d issue(s) in %d record(s) checked", len(r.Issues), r.Stats.RecordsProcessed)
	for i, issue := range r.Issues {
		if i == maxIssueDetails {
			result.Details = append(result.Details, fmt.Sprintf("... and %d more", len(r.Issues)-maxIssueDetails))
			break
		}
		result.Details = append(result.Details,
			fmt.Sprintf("#%d %s: %s", issue.Context.Index, issue.Context.StartTime.Format(time.TimeOnly), issue.Description))
	}

	return result
}

func hasProblems(results []DiagnosticResult) bool {
	for _, r := range results {
		if r.Status != "ok" {
			return true
		}
	}
	return false
}

func printDiagnostics(w io.Writer, path string, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintf(w, "=== Diagnostics: %s ===\n", path)
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nThis file cannot be replayed as is.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nFile is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nFile looks good!")
	}
}
