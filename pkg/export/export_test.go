package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/selection"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

const source = `Time,Lat,Lon,Alt,Speed_kmh,Heading,Sats
2026-01-14 00:05:40.000,31.20, 121.40 ,10,0.0,0,7
2026-01-14 00:05:41.000,31.21,121.41,10,12.50,45,8
2026-01-1400:05:42.000,31.22,121.42,11,13.0,45,8
2026-01-14 00:05:43.000,31.23,121.43,11,13.5,46,9
2026-01-14 00:05:44.000,31.24,121.44,12,14.0,46,9
`

func loadSource(t *testing.T, text string) *track.Sequence {
	t.Helper()
	seq, _, err := ingest.ParseString(text)
	require.NoError(t, err)
	return seq
}

func render(t *testing.T, header []string, rows []track.Record) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := Write(&buf, header, rows, ",")
	require.NoError(t, err)
	return buf.String()
}

func TestWrite_FullSequenceIsIdentity(t *testing.T) {
	seq := loadSource(t, source)
	require.Equal(t, 5, seq.Len())

	got := render(t, seq.Header, seq.Slice(0, seq.Last()))
	assert.Equal(t, source, got)
}

func TestWrite_HeaderOnly(t *testing.T) {
	seq := loadSource(t, source)

	var buf bytes.Buffer
	n, err := Write(&buf, seq.Header, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "Time,Lat,Lon,Alt,Speed_kmh,Heading,Sats\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_Error(t *testing.T) {
	seq := loadSource(t, source)
	_, err := Write(failingWriter{}, seq.Header, seq.Records, ",")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSelection(t *testing.T) {
	seq := loadSource(t, source)

	var marks selection.Marks
	_, err := Selection(seq, marks)
	assert.ErrorIs(t, err, ErrMissingMarks)

	marks.SetIn(1)
	_, err = Selection(seq, marks)
	assert.ErrorIs(t, err, ErrMissingMarks)

	marks.SetOut(3)
	rows, err := Selection(seq, marks)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, seq.Records[1].Raw, rows[0].Raw)
	assert.Equal(t, seq.Records[3].Raw, rows[2].Raw)
}

func TestSelection_NormalizesMarkOrder(t *testing.T) {
	seq := loadSource(t, source)

	var forward, backward selection.Marks
	forward.SetIn(1)
	forward.SetOut(4)
	backward.SetOut(1)
	backward.SetIn(4)

	a, err := Selection(seq, forward)
	require.NoError(t, err)
	b, err := Selection(seq, backward)
	require.NoError(t, err)

	assert.Equal(t, render(t, seq.Header, a), render(t, seq.Header, b))
}

func TestSelection_SingleRecord(t *testing.T) {
	seq := loadSource(t, source)

	var marks selection.Marks
	marks.SetIn(2)
	marks.SetOut(2)
	rows, err := Selection(seq, marks)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-01-1400:05:42.000,31.22,121.42,11,13.0,45,8", rows[0].Raw)
}

func TestTrim_PartitionsAtAnchor(t *testing.T) {
	seq := loadSource(t, source)

	for anchor := 0; anchor < seq.Len(); anchor++ {
		head := Trim(seq, anchor, true)
		tail := Trim(seq, anchor, false)

		assert.Len(t, head, anchor+1)
		assert.Len(t, tail, seq.Len()-anchor)
		assert.Equal(t, seq.Records[anchor].Raw, head[len(head)-1].Raw)
		assert.Equal(t, seq.Records[anchor].Raw, tail[0].Raw)

		union := make(map[string]bool)
		for _, r := range append(append([]track.Record{}, head...), tail...) {
			union[r.Raw] = true
		}
		assert.Len(t, union, seq.Len())
	}
}

func TestTrim_OutOfOrderUsesTimestamps(t *testing.T) {
	text := `Time,Lat,Lon,Alt,Speed_kmh,Heading,Sats
2026-01-14 00:00:01.000,1,1,1,1,1,1
2026-01-14 00:00:03.000,3,3,3,3,3,3
2026-01-14 00:00:02.000,2,2,2,2,2,2
2026-01-14 00:00:00.000,0,0,0,0,0,0
`
	seq := loadSource(t, text)

	head := Trim(seq, 2, true)
	require.Len(t, head, 3)
	assert.InDelta(t, 1, head[0].Lat, 1e-9)
	assert.InDelta(t, 2, head[1].Lat, 1e-9)
	assert.InDelta(t, 0, head[2].Lat, 1e-9)

	tail := Trim(seq, 2, false)
	require.Len(t, tail, 2)
	assert.InDelta(t, 3, tail[0].Lat, 1e-9)
	assert.InDelta(t, 2, tail[1].Lat, 1e-9)
}

func TestTrim_Empty(t *testing.T) {
	assert.Nil(t, Trim(&track.Sequence{}, 0, true))
	assert.Nil(t, Cut(&track.Sequence{}, time.Now()))
}

func TestCut(t *testing.T) {
	seq := loadSource(t, source)
	base := seq.Records[0].Timestamp

	assert.Len(t, Cut(seq, base.Add(-time.Hour)), 5)
	assert.Len(t, Cut(seq, base.Add(2*time.Second)), 3)
	assert.Len(t, Cut(seq, base.Add(2500*time.Millisecond)), 2)
	assert.Empty(t, Cut(seq, base.Add(time.Hour)))
}

func TestWriteFile(t *testing.T) {
	seq := loadSource(t, source)
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	n, err := WriteFile(path, seq.Header, seq.Records[:2], ",")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2026-01-14 00:05:40.000,31.20, 121.40 ,10,0.0,0,7", lines[1])
}

func TestWriteFile_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := WriteFile(filepath.Join(blocker, "out.csv"), []string{"Time"}, nil, ",")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		source string
		op     Op
		dir    string
		want   string
	}{
		{filepath.Join("logs", "drive.csv"), OpClip, "", filepath.Join("logs", "drive_clip.csv")},
		{filepath.Join("logs", "drive.txt"), OpHead, "", filepath.Join("logs", "drive_head.csv")},
		{"drive", OpTail, "", "drive_tail.csv"},
		{filepath.Join("logs", "drive.csv"), OpCut, "out", filepath.Join("out", "drive_cut.csv")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.source, tt.op, tt.dir))
	}
}
