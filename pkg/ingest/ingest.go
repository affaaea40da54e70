// Package ingest reads delimited GPS telemetry text into a track.Sequence.
//
// Ingestion is lenient: blank lines, short lines and lines whose timestamp
// cannot be parsed are dropped, and unparsable numbers become zero. None of
// these problems is reported as an error; Stats counts them instead.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// DefaultDelimiter separates fields in the input and the exported header.
const DefaultDelimiter = ","

// Columns names the header columns that hold each logical field.
// The timestamp is always column 0 and is not named here.
type Columns struct {
	Lat     string `yaml:"lat"`
	Lon     string `yaml:"lon"`
	Alt     string `yaml:"alt"`
	Speed   string `yaml:"speed"`
	Heading string `yaml:"heading"`
	Sats    string `yaml:"sats"`
}

// DefaultColumns returns the column names written by the logger firmware.
func DefaultColumns() Columns {
	return Columns{
		Lat:     "Lat",
		Lon:     "Lon",
		Alt:     "Alt",
		Speed:   "Speed_kmh",
		Heading: "Heading",
		Sats:    "Sats",
	}
}

// Names returns the logical column names in a fixed order.
func (c Columns) Names() []string {
	return []string{c.Lat, c.Lon, c.Alt, c.Speed, c.Heading, c.Sats}
}

// Stats counts what happened to each data line during ingestion.
type Stats struct {
	Lines        int `json:"lines"`         // data lines after the header
	Blank        int `json:"blank"`         // whitespace-only lines
	Short        int `json:"short"`         // fewer fields than header columns
	BadTimestamp int `json:"bad_timestamp"` // timestamp unparsable even after repair
	Recovered    int `json:"recovered"`     // timestamps repaired by inserting a space
	Accepted     int `json:"accepted"`

	// MissingColumns lists logical columns absent from the header.
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// Dropped returns the number of data lines that did not become records.
func (s *Stats) Dropped() int {
	return s.Blank + s.Short + s.BadTimestamp
}

// Option configures parsing.
type Option func(*options)

type options struct {
	delimiter string
	loc       *time.Location
	columns   Columns
}

// WithDelimiter sets the field delimiter (default ",").
func WithDelimiter(d string) Option {
	return func(o *options) {
		if d != "" {
			o.delimiter = d
		}
	}
}

// WithLocation sets the zone used for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithColumns overrides the logical column names.
func WithColumns(c Columns) Option {
	return func(o *options) {
		o.columns = c
	}
}

// ParseFile reads and parses the whole file at path.
func ParseFile(path string, opts ...Option) (*track.Sequence, *Stats, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	seq, stats, err := Parse(f, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return seq, stats, nil
}

// ParseString parses telemetry held in memory.
func ParseString(text string, opts ...Option) (*track.Sequence, *Stats, error) {
	return Parse(strings.NewReader(text), opts...)
}

// Parse reads header and records from r. Only read failures are returned as
// errors; an input without usable records yields an empty sequence.
func Parse(r io.Reader, opts ...Option) (*track.Sequence, *Stats, error) {
	o := options{
		delimiter: DefaultDelimiter,
		loc:       time.UTC,
		columns:   DefaultColumns(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := &parser{
		opts:  o,
		tp:    NewTimestampParser(o.loc),
		seq:   &track.Sequence{},
		stats: &Stats{},
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, err
		}
		if line == "" && err == io.EOF {
			break
		}
		eof := err == io.EOF
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if p.lookup == nil {
			p.header(line)
		} else {
			p.line(line)
		}
		if eof {
			break
		}
	}
	return p.seq, p.stats, nil
}

type parser struct {
	opts   options
	tp     *TimestampParser
	lookup *fieldLookup
	seq    *track.Sequence
	stats  *Stats
}

func (p *parser) header(line string) {
	p.seq.Header = splitHeader(strings.TrimPrefix(line, "\uFEFF"), p.opts.delimiter)
	p.lookup = newFieldLookup(p.seq.Header, p.opts.columns)
	p.stats.MissingColumns = p.lookup.missing
}

// line turns one data line into a record or counts why it was dropped.
func (p *parser) line(line string) {
	seq, stats, lookup := p.seq, p.stats, p.lookup
	stats.Lines++
	clean := strings.TrimSpace(strings.ReplaceAll(line, "\x00", ""))
	if clean == "" {
		stats.Blank++
		return
	}

	cols := strings.Split(clean, p.opts.delimiter)
	if len(cols) < len(seq.Header) {
		stats.Short++
		return
	}

	rawTime := strings.TrimSpace(cols[0])
	ts, recovered, err := p.tp.Parse(rawTime)
	if err != nil {
		stats.BadTimestamp++
		return
	}
	if recovered {
		stats.Recovered++
	}

	seq.Records = append(seq.Records, track.Record{
		Timestamp: ts,
		RawTime:   rawTime,
		Lat:       parseFloat(lookup.value(cols, lookup.lat)),
		Lon:       parseFloat(lookup.value(cols, lookup.lon)),
		Alt:       parseFloat(lookup.value(cols, lookup.alt)),
		Speed:     parseFloat(lookup.value(cols, lookup.speed)),
		Heading:   parseFloat(lookup.value(cols, lookup.heading)),
		Sats:      parseInt(lookup.value(cols, lookup.sats)),
		Raw:       clean,
	})
	stats.Accepted++
}

func splitHeader(line, delim string) []string {
	names := strings.Split(line, delim)
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// fieldLookup resolves logical columns to header positions once per file.
type fieldLookup struct {
	lat, lon, alt, speed, heading, sats int
	missing                             []string
}

func newFieldLookup(header []string, c Columns) *fieldLookup {
	l := &fieldLookup{}
	find := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		l.missing = append(l.missing, name)
		return -1
	}
	l.lat = find(c.Lat)
	l.lon = find(c.Lon)
	l.alt = find(c.Alt)
	l.speed = find(c.Speed)
	l.heading = find(c.Heading)
	l.sats = find(c.Sats)
	return l
}

// value returns the field at idx, or "0" when the column is absent.
func (l *fieldLookup) value(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return "0"
	}
	return cols[idx]
}

// parseFloat is locale-invariant: decimal point only, no digit grouping.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
