package output

import (
	"fmt"
	"strings"
)

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "msgpack":
		return NewMsgpackFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use %s)", name, strings.Join(Formats, "|"))
	}
}

// summarize returns the quiet-mode form of report.
func summarize(report any) any {
	if r, ok := report.(*Report); ok {
		return r.Summary
	}
	return report
}
