package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// concatenatedTime recovers a date and a fractional time of day that
	// were written without a separator, e.g. "2026-01-1400:05:40.004".
	concatenatedTime = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s*(\d{2}:\d{2}:\d{2}\.\d+)`)

	// dateThenDigit matches a date immediately followed by another digit.
	// dateparse derives its layout from the input text and cannot be trusted
	// to reject such values, so they skip straight to recovery.
	dateThenDigit = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\d`)

	errEmptyTimestamp  = errors.New("empty timestamp")
	errMissingDateTime = errors.New("date and time are not separated")
)

// TimestampParser parses the timestamp column of a telemetry line.
type TimestampParser struct {
	loc *time.Location
}

// NewTimestampParser creates a parser that interprets timestamps without an
// explicit offset in loc. A nil loc means UTC.
func NewTimestampParser(loc *time.Location) *TimestampParser {
	if loc == nil {
		loc = time.UTC
	}
	return &TimestampParser{loc: loc}
}

// Parse converts raw timestamp text into a time.
// recovered is true when the value only parsed after inserting the missing
// space between its date and time parts.
func (p *TimestampParser) Parse(raw string) (ts time.Time, recovered bool, err error) {
	ts, err = p.parseGeneric(raw)
	if err == nil {
		return ts, false, nil
	}

	m := concatenatedTime.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false, fmt.Errorf("parsing timestamp %q: %w", raw, err)
	}

	fixed := m[1] + " " + m[2]
	ts, err = p.parseGeneric(fixed)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing repaired timestamp %q: %w", fixed, err)
	}
	return ts, true, nil
}

func (p *TimestampParser) parseGeneric(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}
	if dateThenDigit.MatchString(s) {
		return time.Time{}, errMissingDateTime
	}
	return dateparse.ParseIn(s, p.loc)
}
