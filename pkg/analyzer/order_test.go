package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCheck_Ascending(t *testing.T) {
	result := process(t, NewOrderCheck(), at(0), at(time.Second), at(2*time.Second))

	assert.False(t, result.HasIssues())
	assert.Equal(t, CheckTypeOrder, result.Type)
}

func TestOrderCheck_OutOfOrder(t *testing.T) {
	result := process(t, NewOrderCheck(), at(0), at(3*time.Second), at(time.Second), at(4*time.Second))
	require.Len(t, result.Issues, 1)

	issue := result.Issues[0]
	assert.Equal(t, IssueTypeOutOfOrder, issue.Type)
	assert.Equal(t, 2, issue.Context.Index)
	assert.Equal(t, 1, issue.Context.PrevIndex)
	assert.Equal(t, "2026-01-14 00:05:41.000", issue.Context.RawTime)
}

func TestOrderCheck_Duplicate(t *testing.T) {
	result := process(t, NewOrderCheck(), at(0), at(time.Second), at(time.Second))
	require.Len(t, result.Issues, 1)

	assert.Equal(t, IssueTypeDuplicate, result.Issues[0].Type)
	assert.Equal(t, 1, result.Stats.RecordsFlagged)
}

func TestOrderCheck_Reset(t *testing.T) {
	c := NewOrderCheck()

	process(t, c, at(time.Second), at(0))
	c.Reset()

	result := process(t, c, at(0))
	assert.False(t, result.HasIssues())
}
