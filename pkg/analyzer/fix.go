package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/geo"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// fixRun tracks an open run of records without a fix.
type fixRun struct {
	start     int
	count     int
	startTime time.Time
	endTime   time.Time
	rawTime   string
}

// FixCheck reports runs of records that have no satellites or a 0,0
// position. Each contiguous run is one issue.
type FixCheck struct {
	mu     sync.Mutex
	open   *fixRun
	issues []Issue
	stats  CheckStats
}

// NewFixCheck creates a satellite fix check.
func NewFixCheck() *FixCheck {
	return &FixCheck{}
}

// Name returns the check name.
func (c *FixCheck) Name() string {
	return string(CheckTypeFix)
}

// Type returns the check type.
func (c *FixCheck) Type() CheckType {
	return CheckTypeFix
}

// Process handles a single record.
func (c *FixCheck) Process(ctx context.Context, index int, r track.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.RecordsProcessed++

	if r.Sats > 0 && geo.HasFix(r) {
		c.close()
		return nil
	}

	c.stats.RecordsFlagged++
	if c.open == nil {
		c.open = &fixRun{start: index, startTime: r.Timestamp, rawTime: r.RawTime}
	}
	c.open.count++
	c.open.endTime = r.Timestamp
	return nil
}

func (c *FixCheck) close() {
	if c.open == nil {
		return
	}
	run := c.open
	c.open = nil

	c.issues = append(c.issues, Issue{
		Type:        IssueTypeNoFix,
		Description: fmt.Sprintf("%d sample(s) without a fix starting at %q", run.count, run.rawTime),
		Context: IssueContext{
			Index:     run.start,
			PrevIndex: run.start,
			Count:     run.count,
			RawTime:   run.rawTime,
			StartTime: run.startTime,
			EndTime:   run.endTime,
		},
	})
}

// Finalize closes any trailing run and returns the detected runs.
func (c *FixCheck) Finalize(ctx context.Context) (*CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.close()

	return &CheckResult{
		Name:        c.Name(),
		Type:        CheckTypeFix,
		Description: "Every sample has a satellite fix",
		Issues:      append(make([]Issue, 0, len(c.issues)), c.issues...),
		Stats:       c.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (c *FixCheck) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = nil
	c.issues = nil
	c.stats = CheckStats{}
}
