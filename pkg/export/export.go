// Package export writes subsets of a track.Sequence back to delimited text.
//
// Every export writes the source header followed by the verbatim source line
// of each retained record, so kept rows are byte-identical to the input.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/selection"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// Extension is appended to every generated output name.
const Extension = ".csv"

// ErrMissingMarks is returned when a selection export lacks a mark.
var ErrMissingMarks = errors.New("both in and out marks must be set")

// Op identifies an export operation.
type Op string

const (
	OpClip Op = "clip" // inclusive index range between the marks
	OpHead Op = "head" // records at or before the anchor time
	OpTail Op = "tail" // records at or after the anchor time
	OpCut  Op = "cut"  // records at or after an explicit time
)

// Suffix returns the file name suffix for the operation, e.g. "_clip".
func (o Op) Suffix() string {
	return "_" + string(o)
}

// Result describes a completed export.
type Result struct {
	Op   Op     `json:"op" msgpack:"op"`
	Path string `json:"path" msgpack:"path"`
	Rows int    `json:"rows" msgpack:"rows"`

	// First and Last are the raw timestamps of the first and last row
	// written. Both are empty for a header-only export.
	First string `json:"first,omitempty" msgpack:"first,omitempty"`
	Last  string `json:"last,omitempty" msgpack:"last,omitempty"`
}

// Selection returns the inclusive index range between the marks, whichever
// order they were placed in.
func Selection(seq *track.Sequence, marks selection.Marks) ([]track.Record, error) {
	start, end, ok := marks.Range()
	if !ok {
		return nil, ErrMissingMarks
	}
	return seq.Slice(start, end), nil
}

// Trim keeps records relative to the timestamp of the record at anchor.
// keepFront keeps records at or before it; otherwise records at or after it
// are kept. Both sides include the anchor itself. The predicate runs over the
// whole sequence, so out-of-order records are kept or dropped individually.
func Trim(seq *track.Sequence, anchor int, keepFront bool) []track.Record {
	if seq.Empty() {
		return nil
	}
	at := seq.At(seq.Clamp(anchor)).Timestamp
	if keepFront {
		return seq.Filter(func(r track.Record) bool { return !r.Timestamp.After(at) })
	}
	return Cut(seq, at)
}

// Cut keeps records at or after from.
func Cut(seq *track.Sequence, from time.Time) []track.Record {
	if seq.Empty() {
		return nil
	}
	return seq.Filter(func(r track.Record) bool { return !r.Timestamp.Before(from) })
}

// Write emits header then one raw line per record, each terminated by "\n".
// It returns the number of data rows written.
func Write(w io.Writer, header []string, rows []track.Record, delim string) (int, error) {
	if delim == "" {
		delim = ","
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(header, delim) + "\n"); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if _, err := bw.WriteString(r.Raw + "\n"); err != nil {
			return i, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flushing output: %w", err)
	}
	return len(rows), nil
}

// WriteFile writes header and rows to path, creating parent directories.
func WriteFile(path string, header []string, rows []track.Record, delim string) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path) // #nosec G304 -- output path is chosen by the user
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	n, werr := Write(f, header, rows, delim)
	cerr := f.Close()
	if werr != nil {
		return 0, fmt.Errorf("writing %s: %w", path, werr)
	}
	if cerr != nil {
		return 0, fmt.Errorf("closing %s: %w", path, cerr)
	}
	return n, nil
}

// OutputPath derives the default output name for source: its base name
// without extension, the operation suffix, and Extension. The file lands in
// dir, or next to source when dir is empty.
func OutputPath(source string, op Op, dir string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, base+op.Suffix()+Extension)
}
