package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/config"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// Analyzer runs a set of checks over a loaded track.
type Analyzer struct {
	cfg    config.AnalysisConfig
	checks []Check

	// Options
	timeRange   *TimeRange
	checkFilter map[string]bool // nil means all checks
}

// TimeRange defines a time window for filtering records.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTimeRange limits analysis to records within the given time range.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.timeRange = &TimeRange{Start: start, End: end}
	}
}

// WithCheckFilter limits analysis to the named checks.
func WithCheckFilter(checks []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(checks) > 0 {
			a.checkFilter = make(map[string]bool)
			for _, c := range checks {
				a.checkFilter[c] = true
			}
		}
	}
}

// NewAnalyzer creates an analyzer from the analysis settings.
func NewAnalyzer(cfg config.AnalysisConfig, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		cfg:    cfg,
		checks: make([]Check, 0, len(AllChecks)),
	}

	for _, opt := range opts {
		opt(a)
	}

	for name := range a.checkFilter {
		if !knownCheck(name) {
			return nil, fmt.Errorf("unknown check %q", name)
		}
	}

	for _, t := range AllChecks {
		if a.checkFilter != nil && !a.checkFilter[string(t)] {
			continue
		}

		check, err := createCheck(t, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating check %q: %w", t, err)
		}
		a.checks = append(a.checks, check)
	}

	if len(a.checks) == 0 {
		return nil, fmt.Errorf("no checks to execute (check --check filter)")
	}

	return a, nil
}

func knownCheck(name string) bool {
	for _, t := range AllChecks {
		if string(t) == name {
			return true
		}
	}
	return false
}

// createCheck creates the check for t.
func createCheck(t CheckType, cfg config.AnalysisConfig) (Check, error) {
	switch t {
	case CheckTypeGap:
		return NewGapCheck(cfg.MaxGap)
	case CheckTypeOrder:
		return NewOrderCheck(), nil
	case CheckTypeJump:
		return NewJumpCheck(cfg.MaxSpeed)
	case CheckTypeFix:
		return NewFixCheck(), nil
	default:
		return nil, fmt.Errorf("unknown check type: %s", t)
	}
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Results contains findings from each check.
	Results []*CheckResult

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Source names the analyzed track.
	Source string

	// TimeRange is the time filter applied, if any.
	TimeRange *TimeRange

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time

	// RecordsProcessed is the number of records examined.
	RecordsProcessed int
}

// TotalIssues returns the total number of issues across all checks.
func (r *AnalysisResult) TotalIssues() int {
	total := 0
	for _, result := range r.Results {
		total += len(result.Issues)
	}
	return total
}

// ChecksWithIssues returns the count of checks that detected issues.
func (r *AnalysisResult) ChecksWithIssues() int {
	count := 0
	for _, result := range r.Results {
		if result.HasIssues() {
			count++
		}
	}
	return count
}

// Result returns the result of check t, or nil if it did not run.
func (r *AnalysisResult) Result(t CheckType) *CheckResult {
	for _, result := range r.Results {
		if result.Type == t {
			return result
		}
	}
	return nil
}

// Analyze runs every check over seq and returns the combined results.
func (a *Analyzer) Analyze(ctx context.Context, source string, seq *track.Sequence) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Results: make([]*CheckResult, 0, len(a.checks)),
		Metadata: AnalysisMetadata{
			Source:    source,
			TimeRange: a.timeRange,
			StartTime: time.Now(),
		},
	}

	for _, check := range a.checks {
		check.Reset()
	}

	for i := 0; i < seq.Len(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r := seq.At(i)
		if a.timeRange != nil {
			if r.Timestamp.Before(a.timeRange.Start) || r.Timestamp.After(a.timeRange.End) {
				continue
			}
		}

		result.Metadata.RecordsProcessed++

		for _, check := range a.checks {
			if err := check.Process(ctx, i, r); err != nil {
				return nil, fmt.Errorf("processing record %d with check %q: %w", i, check.Name(), err)
			}
		}
	}

	for _, check := range a.checks {
		checkResult, err := check.Finalize(ctx)
		if err != nil {
			return nil, fmt.Errorf("finalizing check %q: %w", check.Name(), err)
		}
		result.Results = append(result.Results, checkResult)
	}

	result.Metadata.EndTime = time.Now()

	return result, nil
}
