package output

import (
	"context"
	"io"
)

// Formatter renders a report in a specific format. Reports are *Report,
// *Info or *ExportReport.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report any, w io.Writer) error

	// Name returns the format name (text, json, msgpack).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including issue locations.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// Formats lists the names accepted by NewFormatter.
var Formats = []string{"text", "json", "msgpack"}
