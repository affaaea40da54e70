package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampParser_Parse(t *testing.T) {
	want := time.Date(2026, 1, 14, 0, 5, 40, 4_000_000, time.UTC)

	tests := []struct {
		name      string
		raw       string
		want      time.Time
		recovered bool
		wantErr   bool
	}{
		{name: "space separated", raw: "2026-01-14 00:05:40.004", want: want},
		{name: "iso T", raw: "2026-01-14T00:05:40.004Z", want: want},
		{name: "concatenated", raw: "2026-01-1400:05:40.004", want: want, recovered: true},
		{name: "concatenated microseconds", raw: "2026-01-1400:05:40.004000", want: want, recovered: true},
		{name: "concatenated without fraction", raw: "2026-01-1400:05:40", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "bad", wantErr: true},
	}

	p := NewTimestampParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, recovered, err := p.Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, tt.recovered, recovered)
		})
	}
}

func TestTimestampParser_Location(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	p := NewTimestampParser(loc)

	got, recovered, err := p.Parse("2026-01-1408:00:00.000")
	require.NoError(t, err)
	assert.True(t, recovered)
	assert.True(t, got.Equal(time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)))
}
