package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatText(t *testing.T, opts FormatOptions, data any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(opts).Format(context.Background(), data, &buf))
	return buf.String()
}

func TestTextFormatter_Format_Report(t *testing.T) {
	out := formatText(t, FormatOptions{}, createTestReport())

	for _, want := range []string{
		"=== Track Diagnosis: drive.csv ===",
		"Ingest: 123 lines, 120 accepted, 3 dropped (1 blank, 1 short, 1 bad timestamp), 4 repaired",
		"Timestamps: Datetime with fraction (97%), mixed formats",
		"[GAP] Samples no more than 5s apart",
		"Found: 1 issue(s)",
		"Gap of 12s between 00:05:40.000 and 00:05:52.000 (max allowed: 5s)",
		"[ORDER] Timestamps strictly increasing",
		"No issues detected",
		"Summary: 2 checks run, 1 checks with issues, 1 total issues",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Record: #42", "non-verbose output shows no record locations")
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	out := formatText(t, FormatOptions{Verbose: true}, createTestReport())

	assert.Contains(t, out, "Record: #42 (2026-01-14 00:05:52.000), compared with #41")
	assert.Contains(t, out, "Records processed: 120")
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	out := formatText(t, FormatOptions{Quiet: true}, createTestReport())
	assert.Equal(t, "drive.csv: 2 checks run, 1 with issues, 1 total issues\n", out)
}

func TestTextFormatter_Format_Info(t *testing.T) {
	out := formatText(t, FormatOptions{}, createTestInfo(t))

	for _, want := range []string{
		"Source:    drive.csv",
		"Columns:   Time, Lat, Lon",
		"Records:   2",
		"Start:     2026-01-14 00:05:40.000",
		"End:       2026-01-1400:05:41.000",
		"Duration:  1s",
		"Distance:  1.11 km (1.30 km projected)",
		"Fixes:     2/2",
		"Bounds:    31.200000,121.400000 ~ 31.210000,121.400000",
		"Ingest:    2 accepted, 0 dropped, 1 repaired",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTextFormatter_Format_Export(t *testing.T) {
	out := formatText(t, FormatOptions{}, createTestExport())

	want := "clip: wrote drive_clip.csv (00:05:41.000 ~ 00:05:43.000, 3 rows)\n" +
		"head: wrote drive_head.csv (header only)\n"
	assert.Equal(t, want, out)
}

func TestTextFormatter_Format_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormatter(FormatOptions{}).Format(context.Background(), "not a report", &buf)
	assert.Error(t, err)
}
