package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// OrderCheck reports samples whose timestamp does not advance past the
// previous one. Playback scans forward and assumes ascending time, so these
// records are skipped or bunched during a replay.
type OrderCheck struct {
	mu     sync.Mutex
	prev   *sample
	issues []Issue
	stats  CheckStats
}

// NewOrderCheck creates an ordering check.
func NewOrderCheck() *OrderCheck {
	return &OrderCheck{}
}

// Name returns the check name.
func (c *OrderCheck) Name() string {
	return string(CheckTypeOrder)
}

// Type returns the check type.
func (c *OrderCheck) Type() CheckType {
	return CheckTypeOrder
}

// Process handles a single record.
func (c *OrderCheck) Process(ctx context.Context, index int, r track.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.RecordsProcessed++

	if c.prev != nil {
		switch {
		case r.Timestamp.Before(c.prev.timestamp):
			c.issues = append(c.issues, Issue{
				Type: IssueTypeOutOfOrder,
				Description: fmt.Sprintf("Sample %q is %s earlier than sample %q",
					r.RawTime, c.prev.timestamp.Sub(r.Timestamp).Round(time.Millisecond), c.prev.rawTime),
				Context: c.context(index, r),
			})
			c.stats.RecordsFlagged++
		case r.Timestamp.Equal(c.prev.timestamp):
			c.issues = append(c.issues, Issue{
				Type:        IssueTypeDuplicate,
				Description: fmt.Sprintf("Sample %q repeats the previous timestamp", r.RawTime),
				Context:     c.context(index, r),
			})
			c.stats.RecordsFlagged++
		}
	}

	c.prev = &sample{index: index, timestamp: r.Timestamp, rawTime: r.RawTime}
	return nil
}

func (c *OrderCheck) context(index int, r track.Record) IssueContext {
	return IssueContext{
		Index:     index,
		PrevIndex: c.prev.index,
		RawTime:   r.RawTime,
		StartTime: c.prev.timestamp,
		EndTime:   r.Timestamp,
	}
}

// Finalize returns the ordering problems found.
func (c *OrderCheck) Finalize(ctx context.Context) (*CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &CheckResult{
		Name:        c.Name(),
		Type:        CheckTypeOrder,
		Description: "Timestamps strictly increasing",
		Issues:      append(make([]Issue, 0, len(c.issues)), c.issues...),
		Stats:       c.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (c *OrderCheck) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prev = nil
	c.issues = nil
	c.stats = CheckStats{}
}
