package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/analyzer"
)

const clockLayout = "15:04:05.000"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report any, w io.Writer) error {
	switch r := report.(type) {
	case *Report:
		if f.opts.Quiet {
			return f.formatQuiet(r, w)
		}
		return f.formatFull(r, w)
	case *Info:
		return f.formatInfo(r, w)
	case *ExportReport:
		return f.formatExport(r, w)
	default:
		return fmt.Errorf("text formatter cannot render %T", report)
	}
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d checks run, %d with issues, %d total issues\n",
		report.Metadata.Source,
		report.Summary.ChecksRun,
		report.Summary.ChecksWithIssues,
		report.Summary.TotalIssues)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "=== Track Diagnosis: %s ===\n", report.Metadata.Source)
	fmt.Fprintln(w)

	s := report.Ingest
	fmt.Fprintf(w, "Ingest: %d lines, %d accepted, %d dropped (%d blank, %d short, %d bad timestamp), %d repaired\n",
		s.Lines, s.Accepted, s.Dropped(), s.Blank, s.Short, s.BadTimestamp, s.Recovered)
	if len(s.MissingColumns) > 0 {
		fmt.Fprintf(w, "  Missing columns (read as 0): %s\n", strings.Join(s.MissingColumns, ", "))
	}
	if d := report.Detection; d != nil && d.Format != "" {
		fmt.Fprintf(w, "Timestamps: %s (%.0f%%)", d.Format, d.Confidence*100)
		if d.Mixed {
			fmt.Fprint(w, ", mixed formats")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	for _, result := range report.Results {
		f.formatCheckResult(result, w)
	}

	fmt.Fprintln(w, "---")
	_, err := fmt.Fprintf(w, "Summary: %d checks run, %d checks with issues, %d total issues\n",
		report.Summary.ChecksRun,
		report.Summary.ChecksWithIssues,
		report.Summary.TotalIssues)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Records processed: %d\n", report.Summary.RecordsProcessed)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return err
}

func (f *TextFormatter) formatCheckResult(result *analyzer.CheckResult, w io.Writer) {
	fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(result.Type)), result.Description)

	if !result.HasIssues() {
		fmt.Fprintln(w, "  No issues detected")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  Found: %d issue(s)\n", len(result.Issues))
	for _, issue := range result.Issues {
		f.formatIssue(&issue, w)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatIssue(issue *analyzer.Issue, w io.Writer) {
	ctx := issue.Context
	switch issue.Type {
	case analyzer.IssueTypeGapExceeded:
		fmt.Fprintf(w, "  - Gap of %s between %s and %s (max allowed: %s)\n",
			ctx.ActualGap.Round(time.Millisecond),
			ctx.StartTime.Format(clockLayout),
			ctx.EndTime.Format(clockLayout),
			ctx.ExpectedGap)
	case analyzer.IssueTypeNoFix:
		fmt.Fprintf(w, "  - %d sample(s) without a fix from %s to %s\n",
			ctx.Count,
			ctx.StartTime.Format(clockLayout),
			ctx.EndTime.Format(clockLayout))
	default:
		fmt.Fprintf(w, "  - %s\n", issue.Description)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "    Record: #%d (%s), compared with #%d\n", ctx.Index, ctx.RawTime, ctx.PrevIndex)
	}
}

func (f *TextFormatter) formatInfo(info *Info, w io.Writer) error {
	fmt.Fprintf(w, "Source:    %s\n", info.Source)
	fmt.Fprintf(w, "Columns:   %s\n", strings.Join(info.Header, ", "))
	fmt.Fprintf(w, "Records:   %d\n", info.Records)
	if info.Records > 0 {
		fmt.Fprintf(w, "Start:     %s\n", info.StartRaw)
		fmt.Fprintf(w, "End:       %s\n", info.EndRaw)
		fmt.Fprintf(w, "Duration:  %s\n", info.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Distance:  %.2f km (%.2f km projected)\n", info.DistanceMeters/1000, info.ProjectedMeters/1000)
	fmt.Fprintf(w, "Fixes:     %d/%d\n", info.Fixes, info.Records)
	if b := info.Bounds; b != nil {
		fmt.Fprintf(w, "Bounds:    %.6f,%.6f ~ %.6f,%.6f\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	}

	s := info.Ingest
	_, err := fmt.Fprintf(w, "Ingest:    %d accepted, %d dropped, %d repaired\n", s.Accepted, s.Dropped(), s.Recovered)
	if f.opts.Verbose {
		fmt.Fprintf(w, "  blank: %d, short: %d, bad timestamp: %d\n", s.Blank, s.Short, s.BadTimestamp)
	}
	return err
}

func (f *TextFormatter) formatExport(report *ExportReport, w io.Writer) error {
	var err error
	for _, e := range report.Exports {
		if e.Rows == 0 {
			_, err = fmt.Fprintf(w, "%s: wrote %s (header only)\n", e.Op, e.Path)
		} else {
			_, err = fmt.Fprintf(w, "%s: wrote %s (%s ~ %s, %d rows)\n", e.Op, e.Path, e.First, e.Last, e.Rows)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
