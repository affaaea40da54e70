// Package detector classifies the timestamp column of a telemetry file.
//
// Ingest accepts anything a general date parser understands, so detection is
// diagnostic only: it tells a user which formats a file mixes and how many
// rows carry the run-together date and time that ingest has to repair.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Pseudo layouts for numeric epoch timestamps.
const (
	LayoutUnixSeconds = "UNIX_SECONDS"
	LayoutUnixMillis  = "UNIX_MILLIS"
)

// maxUnixSeconds is 2100-01-01, the sanity limit for epoch values.
const maxUnixSeconds = 4102444800

// DetectionResult holds the result of analyzing a timestamp column.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	SampledValues int           // Number of values sampled
	Unrecognized  int           // Values no format matched
	AmbiguityNote string        // Warning about date ordering if applicable
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *TimestampFormat
	Confidence float64   // 0.0 to 1.0 (share of sampled values matched)
	MatchCount int       // Number of values that matched
	Sample     string    // Example value that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector classifies timestamp values.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
	delimiter  string
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of data lines to sample (default 500).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithDelimiter sets the field delimiter used to find column 0 (default ",").
func WithDelimiter(delim string) Option {
	return func(d *Detector) {
		if delim != "" {
			d.delimiter = delim
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: 500,
		delimiter:  ",",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples the first column of a file's data lines.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	values, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromValues(values), nil
}

// DetectFromValues classifies raw timestamp values. Every value counts
// toward at most one format: the first in DefaultFormats order that matches.
func (d *Detector) DetectFromValues(values []string) *DetectionResult {
	result := &DetectionResult{}

	type formatStats struct {
		format     *TimestampFormat
		matchCount int
		sample     string
		parsedTime time.Time
	}
	stats := make(map[string]*formatStats)

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		result.SampledValues++

		matched := false
		for _, format := range d.formats {
			m := format.Pattern.FindStringSubmatch(v)
			if len(m) < 2 {
				continue
			}
			parsed, ok := parseTimestamp(m[1], format.Layout)
			if !ok {
				continue
			}

			s := stats[format.Name]
			if s == nil {
				s = &formatStats{format: format, sample: v, parsedTime: parsed}
				stats[format.Name] = s
			}
			s.matchCount++
			matched = true
			break
		}
		if !matched {
			result.Unrecognized++
		}
	}

	if result.SampledValues == 0 {
		return result
	}

	for _, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(result.SampledValues),
			MatchCount: s.matchCount,
			Sample:     s.sample,
			ParsedTime: s.parsedTime,
		})
	}

	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].MatchCount != result.Matches[j].MatchCount {
			return result.Matches[i].MatchCount > result.Matches[j].MatchCount
		}
		return result.Matches[i].Format.Name < result.Matches[j].Format.Name
	})

	if best := result.BestMatch(); best != nil && best.Format.Ambiguous {
		result.AmbiguityNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
			"Check the logger's locale before trusting day and month."
	}

	return result
}

// parseTimestamp parses a timestamp string using the given layout.
func parseTimestamp(s, layout string) (time.Time, bool) {
	switch layout {
	case LayoutUnixSeconds:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 || f > maxUnixSeconds {
			return time.Time{}, false
		}
		secs := int64(f)
		return time.Unix(secs, int64((f-float64(secs))*1e9)).UTC(), true

	case LayoutUnixMillis:
		millis, err := strconv.ParseInt(s, 10, 64)
		if err != nil || millis/1000 > maxUnixSeconds {
			return time.Time{}, false
		}
		return time.UnixMilli(millis).UTC(), true

	default:
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// sampleFile reads column 0 of up to sampleSize data lines, skipping the header.
func (d *Detector) sampleFile(_ context.Context, path string) ([]string, error) {
	file, err := os.Open(path) // #nosec G304 -- path is provided by user via CLI
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var values []string
	br := bufio.NewReader(file)
	header := true

	for len(values) < d.sampleSize {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if header {
			header = false
		} else if line = strings.TrimSpace(strings.ReplaceAll(line, "\x00", "")); line != "" {
			field, _, _ := strings.Cut(line, d.delimiter)
			values = append(values, field)
		}
		if err == io.EOF {
			break
		}
	}

	return values, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Mixed reports whether more than one format appears in the column.
func (r *DetectionResult) Mixed() bool {
	return len(r.Matches) > 1
}

// CorruptCount returns how many values use a format ingest must repair.
func (r *DetectionResult) CorruptCount() int {
	n := 0
	for _, m := range r.Matches {
		if m.Format.Corrupt {
			n += m.MatchCount
		}
	}
	return n
}
