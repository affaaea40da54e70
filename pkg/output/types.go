// Package output renders info, diagnose and export reports as text, JSON or
// MessagePack.
package output

import (
	"fmt"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/analyzer"
	"github.com/gpsreplay/gpsreplay/pkg/detector"
	"github.com/gpsreplay/gpsreplay/pkg/export"
	"github.com/gpsreplay/gpsreplay/pkg/geo"
	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// Report is the complete diagnose output for one track.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results contains findings from each check.
	Results []*analyzer.CheckResult `json:"results"`

	// Ingest counts what happened to each data line while loading.
	Ingest ingest.Stats `json:"ingest"`

	// Detection classifies the timestamp column, if it was sampled.
	Detection *Detection `json:"detection,omitempty"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// ChecksRun is the number of checks that were executed.
	ChecksRun int `json:"checks_run"`

	// ChecksWithIssues is the number of checks that detected issues.
	ChecksWithIssues int `json:"checks_with_issues"`

	// TotalIssues is the total number of issues detected.
	TotalIssues int `json:"total_issues"`

	// RecordsProcessed is the number of records analyzed.
	RecordsProcessed int `json:"records_processed"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Source is the analyzed track file.
	Source string `json:"source"`

	// TimeRange is the time filter that was applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// TimeRange represents a time window for filtering.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Detection summarizes timestamp format detection.
type Detection struct {
	Format        string  `json:"format,omitempty"`
	Confidence    float64 `json:"confidence"`
	Sampled       int     `json:"sampled"`
	Unrecognized  int     `json:"unrecognized"`
	Corrupt       int     `json:"corrupt"`
	Mixed         bool    `json:"mixed"`
	AmbiguityNote string  `json:"ambiguity_note,omitempty"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, stats ingest.Stats, configFile string) *Report {
	report := &Report{
		Results: result.Results,
		Ingest:  stats,
		Metadata: Metadata{
			ConfigFile: configFile,
			Source:     result.Metadata.Source,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			ChecksRun:        len(result.Results),
			ChecksWithIssues: result.ChecksWithIssues(),
			TotalIssues:      result.TotalIssues(),
			RecordsProcessed: result.Metadata.RecordsProcessed,
		},
	}

	if result.Metadata.TimeRange != nil {
		report.Metadata.TimeRange = &TimeRange{
			Start: result.Metadata.TimeRange.Start,
			End:   result.Metadata.TimeRange.End,
		}
	}

	return report
}

// NewDetection converts a detector result.
func NewDetection(r *detector.DetectionResult) *Detection {
	d := &Detection{
		Sampled:       r.SampledValues,
		Unrecognized:  r.Unrecognized,
		Corrupt:       r.CorruptCount(),
		Mixed:         r.Mixed(),
		AmbiguityNote: r.AmbiguityNote,
	}
	if best := r.BestMatch(); best != nil {
		d.Format = best.Format.Name
		d.Confidence = best.Confidence
	}
	return d
}

// HasIssues returns true if any issues were detected.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalIssues > 0
}

// Info describes a loaded track.
type Info struct {
	Source  string   `json:"source"`
	Header  []string `json:"header"`
	Records int      `json:"records"`

	// Start and End are the first and last record times, raw and parsed.
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	StartRaw string        `json:"start_raw,omitempty"`
	EndRaw   string        `json:"end_raw,omitempty"`
	Duration time.Duration `json:"duration"`

	// DistanceMeters is the ground distance along records with a fix.
	// ProjectedMeters is the same path measured in Web Mercator units.
	DistanceMeters  float64     `json:"distance_m"`
	ProjectedMeters float64     `json:"projected_m"`
	Fixes           int         `json:"fixes"`
	Bounds          *geo.Bounds `json:"bounds,omitempty"`

	Ingest ingest.Stats `json:"ingest"`
}

// NewInfo describes seq loaded from source.
func NewInfo(source string, seq *track.Sequence, stats ingest.Stats) (*Info, error) {
	info := &Info{
		Source:  source,
		Header:  seq.Header,
		Records: seq.Len(),
		Ingest:  stats,
	}

	if span, ok := seq.Span(); ok {
		info.Start, info.End, info.Duration = span.Start, span.End, span.Duration
		info.StartRaw = seq.At(0).RawTime
		info.EndRaw = seq.At(seq.Last()).RawTime
	}

	var err error
	if info.DistanceMeters, err = geo.Distance(seq.Records); err != nil {
		return nil, fmt.Errorf("measuring %s: %w", source, err)
	}
	if info.ProjectedMeters, err = geo.ProjectedLength(seq.Records); err != nil {
		return nil, fmt.Errorf("measuring %s: %w", source, err)
	}
	info.Fixes = geo.Fixes(seq.Records)
	if b, ok := geo.BoundsOf(seq.Records); ok {
		info.Bounds = &b
	}

	return info, nil
}

// ExportReport confirms the files written by an export.
type ExportReport struct {
	Source  string          `json:"source"`
	Exports []export.Result `json:"exports"`
}

// Rows returns the total number of rows written.
func (r *ExportReport) Rows() int {
	n := 0
	for _, e := range r.Exports {
		n += e.Rows
	}
	return n
}
