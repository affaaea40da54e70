package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// sample is the last record a check compared against.
type sample struct {
	index     int
	timestamp time.Time
	rawTime   string
}

// GapCheck reports consecutive samples further apart than maxGap.
// Backwards steps are left to OrderCheck.
type GapCheck struct {
	maxGap time.Duration

	mu     sync.Mutex
	prev   *sample
	issues []Issue
	stats  CheckStats
}

// NewGapCheck creates a gap check.
func NewGapCheck(maxGap time.Duration) (*GapCheck, error) {
	if maxGap <= 0 {
		return nil, fmt.Errorf("max gap must be positive, got %s", maxGap)
	}
	return &GapCheck{maxGap: maxGap}, nil
}

// Name returns the check name.
func (c *GapCheck) Name() string {
	return string(CheckTypeGap)
}

// Type returns the check type.
func (c *GapCheck) Type() CheckType {
	return CheckTypeGap
}

// Process handles a single record.
func (c *GapCheck) Process(ctx context.Context, index int, r track.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.RecordsProcessed++

	if c.prev != nil {
		gap := r.Timestamp.Sub(c.prev.timestamp)
		if gap > c.maxGap {
			c.issues = append(c.issues, Issue{
				Type: IssueTypeGapExceeded,
				Description: fmt.Sprintf("Gap of %s between samples (max allowed: %s)",
					gap.Round(time.Millisecond), c.maxGap),
				Context: IssueContext{
					Index:       index,
					PrevIndex:   c.prev.index,
					RawTime:     r.RawTime,
					StartTime:   c.prev.timestamp,
					EndTime:     r.Timestamp,
					ActualGap:   gap,
					ExpectedGap: c.maxGap,
				},
			})
			c.stats.RecordsFlagged++
		}
	}

	c.prev = &sample{index: index, timestamp: r.Timestamp, rawTime: r.RawTime}
	return nil
}

// Finalize returns the detected gaps.
func (c *GapCheck) Finalize(ctx context.Context) (*CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &CheckResult{
		Name:        c.Name(),
		Type:        CheckTypeGap,
		Description: fmt.Sprintf("Samples no more than %s apart", c.maxGap),
		Issues:      append(make([]Issue, 0, len(c.issues)), c.issues...),
		Stats:       c.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (c *GapCheck) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prev = nil
	c.issues = nil
	c.stats = CheckStats{}
}
