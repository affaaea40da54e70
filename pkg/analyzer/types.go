// Package analyzer checks a loaded GPS track for sampling problems.
package analyzer

import (
	"time"
)

// CheckType enumerates the checks.
type CheckType string

const (
	CheckTypeGap   CheckType = "gap"
	CheckTypeOrder CheckType = "order"
	CheckTypeJump  CheckType = "jump"
	CheckTypeFix   CheckType = "fix"
)

// AllChecks lists every check in reporting order.
var AllChecks = []CheckType{CheckTypeGap, CheckTypeOrder, CheckTypeJump, CheckTypeFix}

// IssueType categorizes detected issues.
type IssueType string

const (
	// IssueTypeGapExceeded indicates two consecutive samples further apart than allowed.
	IssueTypeGapExceeded IssueType = "gap_exceeded"

	// IssueTypeOutOfOrder indicates a sample timestamped before its predecessor.
	IssueTypeOutOfOrder IssueType = "out_of_order"

	// IssueTypeDuplicate indicates a sample with the same timestamp as its predecessor.
	IssueTypeDuplicate IssueType = "duplicate_timestamp"

	// IssueTypePositionJump indicates movement faster than the plausible maximum.
	IssueTypePositionJump IssueType = "position_jump"

	// IssueTypeNoFix indicates a run of samples without a satellite fix.
	IssueTypeNoFix IssueType = "no_fix"
)

// CheckResult contains findings from running a single check.
type CheckResult struct {
	// Name is the name of the check that produced these results.
	Name string

	// Type indicates which check ran.
	Type CheckType

	// Description says what the check looks for.
	Description string

	// Issues contains all detected problems.
	Issues []Issue

	// Stats provides execution statistics.
	Stats CheckStats
}

// CheckStats contains execution statistics for a check.
type CheckStats struct {
	// RecordsProcessed is the total number of records examined.
	RecordsProcessed int

	// RecordsFlagged is the number of records involved in an issue.
	RecordsFlagged int
}

// HasIssues returns true if any issues were detected.
func (r *CheckResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// Issue represents a single detected problem.
type Issue struct {
	// Type categorizes the issue.
	Type IssueType

	// Description is a human-readable summary of the issue.
	Description string

	// Context provides details about where the issue occurred.
	Context IssueContext
}

// IssueContext locates an issue in the track.
type IssueContext struct {
	// Index is the sequence index of the offending record, or the first
	// record of a run.
	Index int

	// PrevIndex is the index of the record it was compared against.
	PrevIndex int

	// Count is the number of records in a run.
	Count int

	// RawTime is the offending record's timestamp text as logged.
	RawTime string

	// StartTime and EndTime bound the issue.
	StartTime time.Time
	EndTime   time.Time

	// ActualGap and ExpectedGap describe gap issues.
	ActualGap   time.Duration
	ExpectedGap time.Duration

	// Distance is the ground distance in meters, for jumps.
	Distance float64

	// Speed is the implied speed in km/h and MaxSpeed the allowed limit.
	Speed    float64
	MaxSpeed float64
}
