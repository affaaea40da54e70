package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSequence(n int) *Sequence {
	base := time.Date(2026, 1, 14, 0, 5, 40, 0, time.UTC)
	seq := &Sequence{Header: []string{"Time", "Lat"}}
	for i := 0; i < n; i++ {
		seq.Records = append(seq.Records, Record{Timestamp: base.Add(time.Duration(i) * time.Second)})
	}
	return seq
}

func TestSequence_Empty(t *testing.T) {
	var nilSeq *Sequence
	assert.True(t, nilSeq.Empty())
	assert.Equal(t, 0, nilSeq.Len())
	assert.Equal(t, -1, nilSeq.Last())

	seq := makeSequence(0)
	assert.True(t, seq.Empty())
	assert.Nil(t, seq.Slice(0, 10))
}

func TestSequence_Clamp(t *testing.T) {
	seq := makeSequence(5)

	tests := []struct {
		in   int
		want int
	}{
		{-3, 0},
		{0, 0},
		{2, 2},
		{4, 4},
		{99, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, seq.Clamp(tt.in), "Clamp(%d)", tt.in)
	}
}

func TestSequence_Slice(t *testing.T) {
	seq := makeSequence(5)

	got := seq.Slice(1, 3)
	require.Len(t, got, 3)
	assert.Equal(t, seq.Records[1], got[0])
	assert.Equal(t, seq.Records[3], got[2])

	assert.Len(t, seq.Slice(0, 100), 5)
	assert.Nil(t, seq.Slice(3, 1))
}

func TestSequence_Filter(t *testing.T) {
	seq := makeSequence(5)
	anchor := seq.Records[2].Timestamp

	got := seq.Filter(func(r Record) bool { return !r.Timestamp.After(anchor) })
	assert.Len(t, got, 3)

	none := seq.Filter(func(Record) bool { return false })
	assert.Empty(t, none)
}

func TestSequence_IndexAtOrAfter(t *testing.T) {
	seq := makeSequence(5)
	base := seq.Records[0].Timestamp

	assert.Equal(t, 0, seq.IndexAtOrAfter(base.Add(-time.Hour)))
	assert.Equal(t, 2, seq.IndexAtOrAfter(base.Add(2*time.Second)))
	assert.Equal(t, 3, seq.IndexAtOrAfter(base.Add(2500*time.Millisecond)))
	assert.Equal(t, -1, seq.IndexAtOrAfter(base.Add(time.Hour)))
}

func TestSequence_Span(t *testing.T) {
	_, ok := makeSequence(0).Span()
	assert.False(t, ok)

	span, ok := makeSequence(3).Span()
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, span.Duration)
	assert.True(t, span.End.After(span.Start))
}
