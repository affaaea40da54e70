package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Time,Lat,Lon,Alt,Speed_kmh,Heading,Sats"

// cleanTrack has one sample per second with small, plausible movement.
var cleanTrack = []string{
	testHeader,
	"2026-01-14 00:05:40.000,31.200000,121.400000,12.0,36.0,90.0,8",
	"2026-01-14 00:05:41.000,31.200000,121.400100,12.0,36.0,90.0,8",
	"2026-01-14 00:05:42.000,31.200000,121.400200,12.1,36.0,90.0,9",
	"2026-01-14 00:05:43.000,31.200000,121.400300,12.1,36.0,90.0,9",
}

// newTestRoot mirrors the real root command without importing it.
func newTestRoot() *cobra.Command {
	g := &Globals{}
	root := &cobra.Command{
		Use:           "gpsreplay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "")
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "")
	root.PersistentFlags().BoolVar(&g.LogJSON, "log-json", false, "")

	root.AddCommand(
		NewInfoCommand(g),
		NewPlayCommand(g),
		NewExportCommand(g),
		NewDiagnoseCommand(g),
		NewDetectCommand(g),
		NewValidateCommand(),
		NewVersionCommand(),
	)
	return root
}

// run executes the command line and returns stdout. ExitCode is reset first.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	ExitCode = 0

	root := newTestRoot()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := root.ExecuteContext(ctx)
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gpsreplay dev\n", out)
}

func TestValidateCommand_Success(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "gpsreplay.yaml",
		"timezone: Asia/Shanghai",
		"log_level: warning",
		"analysis:",
		"  max_gap: 10s",
		"webhooks:",
		"  - name: ops",
		"    url: https://example.com/hook",
	)

	out, err := run(t, "validate", cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "Configuration valid!")
	assert.Contains(t, out, "Timezone:      Asia/Shanghai")
	assert.Contains(t, out, "Max gap:       10s")
	assert.Contains(t, out, "1. ops [on_issues]")
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bad.yaml", "timezone: Nowhere/Bogus")

	_, err := run(t, "validate", cfg)
	assert.Error(t, err)
}

func TestValidateCommand_MissingOutputDir(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "gpsreplay.yaml", "output_dir: "+filepath.Join(dir, "missing"))

	out, err := run(t, "validate", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: output_dir")
}

func TestInfoCommand_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "drive.csv", cleanTrack...)

	out, err := run(t, "info", path)
	require.NoError(t, err)

	for _, want := range []string{
		"Records:   4",
		"Start:     2026-01-14 00:05:40.000",
		"End:       2026-01-14 00:05:43.000",
		"Duration:  3s",
		"km projected)",
		"Fixes:     4/4",
		"Bounds:    31.200000,121.400000 ~ 31.200000,121.400300",
		"Ingest:    4 accepted, 0 dropped, 0 repaired",
	} {
		assert.Contains(t, out, want)
	}
}

func TestInfoCommand_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "drive.csv", cleanTrack...)

	out, err := run(t, "info", "-o", "json", path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, float64(4), got["records"])
	assert.InDelta(t, 28.6, got["distance_m"], 1)
	assert.InDelta(t, 33.4, got["projected_m"], 1)
}

func TestInfoCommand_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", cleanTrack...)
	writeFile(t, dir, "b.csv", cleanTrack[:2]...)

	out, err := run(t, "info", filepath.Join(dir, "*.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Source:"), out)
}

func TestInfoCommand_MissingFile(t *testing.T) {
	_, err := run(t, "info", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestInfoCommand_UnknownFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "drive.csv", cleanTrack...)

	_, err := run(t, "info", "-o", "xml", path)
	assert.Error(t, err)
}

func TestRootFlags_BadLogLevel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "drive.csv", cleanTrack...)

	root := newTestRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "loud", "info", path})
	assert.Error(t, root.Execute())
}
