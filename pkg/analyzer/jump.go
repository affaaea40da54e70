package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/gpsreplay/gpsreplay/pkg/geo"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// JumpCheck reports positions reached faster than maxSpeed km/h from the
// previous fix. Records without a fix are ignored.
type JumpCheck struct {
	maxSpeed float64

	mu     sync.Mutex
	prev   *track.Record
	prevAt int
	issues []Issue
	stats  CheckStats
}

// NewJumpCheck creates a position jump check.
func NewJumpCheck(maxSpeed float64) (*JumpCheck, error) {
	if maxSpeed <= 0 {
		return nil, fmt.Errorf("max speed must be positive, got %g", maxSpeed)
	}
	return &JumpCheck{maxSpeed: maxSpeed}, nil
}

// Name returns the check name.
func (c *JumpCheck) Name() string {
	return string(CheckTypeJump)
}

// Type returns the check type.
func (c *JumpCheck) Type() CheckType {
	return CheckTypeJump
}

// Process handles a single record.
func (c *JumpCheck) Process(ctx context.Context, index int, r track.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.RecordsProcessed++

	if !geo.HasFix(r) {
		return nil
	}

	if c.prev != nil {
		elapsed := r.Timestamp.Sub(c.prev.Timestamp).Seconds()
		if elapsed > 0 {
			dist := geo.SegmentDistance(*c.prev, r)
			speed := dist / elapsed * 3.6
			if speed > c.maxSpeed {
				c.issues = append(c.issues, Issue{
					Type: IssueTypePositionJump,
					Description: fmt.Sprintf("Moved %.0f m in %.1fs (%.0f km/h, max %.0f km/h)",
						dist, elapsed, speed, c.maxSpeed),
					Context: IssueContext{
						Index:     index,
						PrevIndex: c.prevAt,
						RawTime:   r.RawTime,
						StartTime: c.prev.Timestamp,
						EndTime:   r.Timestamp,
						Distance:  dist,
						Speed:     speed,
						MaxSpeed:  c.maxSpeed,
					},
				})
				c.stats.RecordsFlagged++
			}
		}
	}

	c.prev = &r
	c.prevAt = index
	return nil
}

// Finalize returns the detected jumps.
func (c *JumpCheck) Finalize(ctx context.Context) (*CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &CheckResult{
		Name:        c.Name(),
		Type:        CheckTypeJump,
		Description: fmt.Sprintf("Implied speed below %.0f km/h", c.maxSpeed),
		Issues:      append(make([]Issue, 0, len(c.issues)), c.issues...),
		Stats:       c.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (c *JumpCheck) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prev = nil
	c.prevAt = 0
	c.issues = nil
	c.stats = CheckStats{}
}
