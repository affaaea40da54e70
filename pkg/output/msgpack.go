package output

import (
	"context"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackFormatter formats reports as MessagePack for machine consumers.
type MsgpackFormatter struct {
	opts FormatOptions
}

// NewMsgpackFormatter creates a new MessagePack formatter.
func NewMsgpackFormatter(opts FormatOptions) *MsgpackFormatter {
	return &MsgpackFormatter{opts: opts}
}

// Name returns the format name.
func (f *MsgpackFormatter) Name() string {
	return "msgpack"
}

// Format renders the report as MessagePack. Fields without a msgpack tag
// use their json tag name, so both encodings share keys.
func (f *MsgpackFormatter) Format(ctx context.Context, report any, w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")

	if f.opts.Quiet {
		return enc.Encode(summarize(report))
	}
	return enc.Encode(report)
}
