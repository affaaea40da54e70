package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

var baseTime = time.Date(2026, 1, 14, 0, 5, 40, 0, time.UTC)

// at builds a record offset from baseTime with a valid fix.
func at(d time.Duration) track.Record {
	ts := baseTime.Add(d)
	return track.Record{
		Timestamp: ts,
		RawTime:   ts.Format("2006-01-02 15:04:05.000"),
		Lat:       31.2,
		Lon:       121.4,
		Sats:      8,
	}
}

func process(t *testing.T, c Check, records ...track.Record) *CheckResult {
	t.Helper()
	ctx := context.Background()
	for i, r := range records {
		require.NoError(t, c.Process(ctx, i, r))
	}
	result, err := c.Finalize(ctx)
	require.NoError(t, err)
	return result
}

func TestNewGapCheck(t *testing.T) {
	c, err := NewGapCheck(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "gap", c.Name())
	assert.Equal(t, CheckTypeGap, c.Type())

	_, err = NewGapCheck(0)
	assert.Error(t, err)
}

func TestGapCheck_NoGaps(t *testing.T) {
	c, err := NewGapCheck(5 * time.Second)
	require.NoError(t, err)

	result := process(t, c, at(0), at(time.Second), at(2*time.Second), at(7*time.Second))

	assert.Empty(t, result.Issues, "exactly max gap is allowed")
	assert.Equal(t, 4, result.Stats.RecordsProcessed)
}

func TestGapCheck_GapExceeded(t *testing.T) {
	c, err := NewGapCheck(5 * time.Second)
	require.NoError(t, err)

	result := process(t, c, at(0), at(time.Second), at(11*time.Second))
	require.Len(t, result.Issues, 1)

	issue := result.Issues[0]
	assert.Equal(t, IssueTypeGapExceeded, issue.Type)
	assert.Equal(t, 10*time.Second, issue.Context.ActualGap)
	assert.Equal(t, 2, issue.Context.Index)
	assert.Equal(t, 1, issue.Context.PrevIndex)
	assert.Equal(t, 5*time.Second, issue.Context.ExpectedGap)
}

func TestGapCheck_BackwardsStepIgnored(t *testing.T) {
	c, err := NewGapCheck(5 * time.Second)
	require.NoError(t, err)

	result := process(t, c, at(time.Minute), at(0), at(time.Second))
	assert.Empty(t, result.Issues)
}

func TestGapCheck_Reset(t *testing.T) {
	c, err := NewGapCheck(5 * time.Second)
	require.NoError(t, err)

	process(t, c, at(0), at(time.Minute))
	c.Reset()

	result := process(t, c, at(0))
	assert.Empty(t, result.Issues)
	assert.Equal(t, 1, result.Stats.RecordsProcessed)
}
