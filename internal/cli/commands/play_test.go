package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastTrack spans 15ms so playback finishes quickly.
var fastTrack = []string{
	testHeader,
	"2026-01-14 00:05:40.000,31.200000,121.400000,12.0,36.0,90.0,8",
	"2026-01-14 00:05:40.005,31.200000,121.400001,12.0,36.0,90.0,8",
	"2026-01-14 00:05:40.010,31.200000,121.400002,12.0,36.0,90.0,8",
	"2026-01-14 00:05:40.015,31.200000,121.400003,12.0,36.0,90.0,8",
}

func TestPlayCommand_Finishes(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "drive.csv", fastTrack...)
	cfg := writeFile(t, dir, "gpsreplay.yaml", "tick_interval: 1ms")

	out, err := run(t, "-c", cfg, "play", src)
	require.NoError(t, err)

	for _, want := range []string{
		"[1/4] 00:05:40.000 31.200000 121.400000",
		"[4/4] 00:05:40.015",
		"sats=8",
		"finished at #3 (00:05:40.015)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPlayCommand_Until(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "drive.csv", fastTrack...)
	cfg := writeFile(t, dir, "gpsreplay.yaml", "tick_interval: 1ms")

	out, err := run(t, "-c", cfg, "play", "-q", "--from", "1", "--until", "2", src)
	require.NoError(t, err)

	assert.NotContains(t, out, "[", "quiet playback printed records")
	// A slow tick may carry the cursor past the until record.
	assert.Contains(t, out, "stopped at #")
	assert.NotContains(t, out, "finished")
}

func TestPlayCommand_Cancelled(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "drive.csv", fastTrack...)
	cfg := writeFile(t, dir, "gpsreplay.yaml", "tick_interval: 1h")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := runContext(t, ctx, "-c", cfg, "play", src)
	require.NoError(t, err)
	assert.Contains(t, out, "paused at #0 (00:05:40.000)")
}

func TestPlayCommand_EmptyTrack(t *testing.T) {
	src := writeFile(t, t.TempDir(), "drive.csv", testHeader)

	_, err := run(t, "play", src)
	assert.Error(t, err)
}
