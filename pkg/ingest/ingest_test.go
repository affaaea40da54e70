package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Time,Lat,Lon,Alt,Speed_kmh,Heading,Sats"

func TestParse_Basic(t *testing.T) {
	input := strings.Join([]string{
		header,
		"2026-01-14 00:05:40.004,31.2304,121.4737,12.5,42.1,90,9",
		"2026-01-14 00:05:41.004,31.2305,121.4738,12.6,43.0,91,9",
	}, "\n")

	seq, stats, err := ParseString(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"Time", "Lat", "Lon", "Alt", "Speed_kmh", "Heading", "Sats"}, seq.Header)
	require.Equal(t, 2, seq.Len())
	assert.Equal(t, 2, stats.Accepted)
	assert.Empty(t, stats.MissingColumns)

	r := seq.Records[0]
	assert.True(t, r.Timestamp.Equal(time.Date(2026, 1, 14, 0, 5, 40, 4_000_000, time.UTC)), "got %v", r.Timestamp)
	assert.Equal(t, "2026-01-14 00:05:40.004", r.RawTime)
	assert.InDelta(t, 31.2304, r.Lat, 1e-9)
	assert.InDelta(t, 121.4737, r.Lon, 1e-9)
	assert.InDelta(t, 12.5, r.Alt, 1e-9)
	assert.InDelta(t, 42.1, r.Speed, 1e-9)
	assert.InDelta(t, 90, r.Heading, 1e-9)
	assert.Equal(t, 9, r.Sats)
	assert.Equal(t, "2026-01-14 00:05:40.004,31.2304,121.4737,12.5,42.1,90,9", r.Raw)
}

func TestParse_RecordCountMatchesAcceptedLines(t *testing.T) {
	input := strings.Join([]string{
		header,
		"2026-01-14 00:05:40.000,1,2,3,4,5,6",
		"",
		"   ",
		"2026-01-14 00:05:41.000,1,2,3",
		"bad,1,2,3,4,5,6",
		"2026-01-14 00:05:42.000,1,2,3,4,5,6",
		"2026-01-1400:05:43.000,1,2,3,4,5,6",
	}, "\n")

	seq, stats, err := ParseString(input)
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Lines)
	assert.Equal(t, 2, stats.Blank)
	assert.Equal(t, 1, stats.Short)
	assert.Equal(t, 1, stats.BadTimestamp)
	assert.Equal(t, 1, stats.Recovered)
	assert.Equal(t, stats.Lines-stats.Dropped(), seq.Len())
	assert.Equal(t, 3, seq.Len())
}

func TestParse_ConcatenatedTimestamp(t *testing.T) {
	input := header + "\n" +
		"2026-01-1400:05:40.004,1,2,3,4,5,6\n" +
		"2026-01-14 00:05:40.004,1,2,3,4,5,6\n"

	seq, stats, err := ParseString(input)
	require.NoError(t, err)
	require.Equal(t, 2, seq.Len())

	assert.True(t, seq.Records[0].Timestamp.Equal(seq.Records[1].Timestamp))
	assert.Equal(t, "2026-01-1400:05:40.004", seq.Records[0].RawTime)
	assert.Equal(t, 1, stats.Recovered)
}

func TestParse_MissingHeadingColumn(t *testing.T) {
	input := "Time,Lat,Lon,Alt,Speed_kmh,Sats\n" +
		"2026-01-14 00:05:40.000,1,2,3,4,7\n" +
		"2026-01-14 00:05:41.000,1,2,3,4,8\n"

	seq, stats, err := ParseString(input)
	require.NoError(t, err)
	require.Equal(t, 2, seq.Len())

	for _, r := range seq.Records {
		assert.Zero(t, r.Heading)
	}
	assert.Equal(t, 8, seq.Records[1].Sats)
	assert.Equal(t, []string{"Heading"}, stats.MissingColumns)
}

func TestParse_ColumnsByName(t *testing.T) {
	input := "Time,Sats,Heading,Speed_kmh,Alt,Lon,Lat\n" +
		"2026-01-14 00:05:40.000,7,180,55.5,100,121.5,31.2\n"

	seq, _, err := ParseString(input)
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())

	r := seq.Records[0]
	assert.InDelta(t, 31.2, r.Lat, 1e-9)
	assert.InDelta(t, 121.5, r.Lon, 1e-9)
	assert.InDelta(t, 100, r.Alt, 1e-9)
	assert.InDelta(t, 55.5, r.Speed, 1e-9)
	assert.InDelta(t, 180, r.Heading, 1e-9)
	assert.Equal(t, 7, r.Sats)
}

func TestParse_BadNumbersBecomeZero(t *testing.T) {
	input := header + "\n" +
		"2026-01-14 00:05:40.000,abc,1 000,3,4,5,7.5\n"

	seq, _, err := ParseString(input)
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())

	r := seq.Records[0]
	assert.Zero(t, r.Lat)
	assert.Zero(t, r.Lon)
	assert.Zero(t, r.Sats)
	assert.InDelta(t, 3, r.Alt, 1e-9)
}

func TestParse_CommaDecimalIsNotAccepted(t *testing.T) {
	input := "Time;Lat;Lon;Alt;Speed_kmh;Heading;Sats\n" +
		"2026-01-14 00:05:40.000;31,5;121.5;3;4;5;6\n"

	seq, _, err := ParseString(input, WithDelimiter(";"))
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Zero(t, seq.Records[0].Lat)
	assert.InDelta(t, 121.5, seq.Records[0].Lon, 1e-9)
}

func TestParse_CleansLines(t *testing.T) {
	input := "\uFEFF Time , Lat,Lon,Alt,Speed_kmh,Heading,Sats\r\n" +
		"  2026-01-14 00:05:40.000,1\x00,2,3,4,5,6  \r\n" +
		"\x00\x00\r\n"

	seq, stats, err := ParseString(input)
	require.NoError(t, err)

	assert.Equal(t, "Time", seq.Header[0])
	assert.Equal(t, "Lat", seq.Header[1])
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, "2026-01-14 00:05:40.000,1,2,3,4,5,6", seq.Records[0].Raw)
	assert.InDelta(t, 1, seq.Records[0].Lat, 1e-9)
	assert.Equal(t, 1, stats.Blank)
}

func TestParse_LongCorruptLine(t *testing.T) {
	input := header + "\n" +
		"2026-01-14 00:05:40.000,1,2,3,4,5,6\n" +
		strings.Repeat("\x00", 2<<20) + "\n" +
		"2026-01-14 00:05:41.000,1,2,3,4,5,6"

	seq, stats, err := ParseString(input)
	require.NoError(t, err)
	assert.Equal(t, 2, seq.Len())
	assert.Equal(t, 3, stats.Lines)
	assert.Equal(t, 1, stats.Blank)
}

func TestParse_LongLine(t *testing.T) {
	long := "2026-01-14 00:05:41.000,1,2,3,4,5," + strings.Repeat("9", 2<<20)
	input := header + "\n" +
		"2026-01-14 00:05:40.000,1,2,3,4,5,6\n" +
		long + "\n"

	seq, _, err := ParseString(input)
	require.NoError(t, err)
	require.Equal(t, 2, seq.Len())
	assert.Equal(t, long, seq.Records[1].Raw)
}

func TestParse_ExtraFieldsAccepted(t *testing.T) {
	input := header + "\n" +
		"2026-01-14 00:05:40.000,1,2,3,4,5,6,extra\n"

	seq, stats, err := ParseString(input)
	require.NoError(t, err)
	assert.Equal(t, 1, seq.Len())
	assert.Zero(t, stats.Short)
}

func TestParse_EmptyInputs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header int
	}{
		{"empty", "", 0},
		{"header only", header + "\n", 7},
		{"all bad", header + "\nbad,1,2,3,4,5,6\n", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, _, err := ParseString(tt.input)
			require.NoError(t, err)
			assert.True(t, seq.Empty())
			assert.Len(t, seq.Header, tt.header)
		})
	}
}

func TestParse_Location(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	input := header + "\n2026-01-14 08:00:00.000,1,2,3,4,5,6\n"

	seq, _, err := ParseString(input, WithLocation(loc))
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.True(t, seq.Records[0].Timestamp.Equal(time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)))
}

func TestParse_CustomColumns(t *testing.T) {
	cols := DefaultColumns()
	cols.Speed = "Speed"
	input := "Time,Lat,Lon,Alt,Speed,Heading,Sats\n2026-01-14 00:00:00.000,1,2,3,88,5,6\n"

	seq, stats, err := ParseString(input, WithColumns(cols))
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.InDelta(t, 88, seq.Records[0].Speed, 1e-9)
	assert.Empty(t, stats.MissingColumns)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n2026-01-14 00:00:00.000,1,2,3,4,5,6\n"), 0o600))

	seq, _, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, seq.Len())

	_, _, err = ParseFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
