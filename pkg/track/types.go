// Package track holds the parsed GPS telemetry types shared by the ingest,
// playback and export packages.
package track

import "time"

// Record is a single parsed GPS sample.
type Record struct {
	// Timestamp is the parsed sample time.
	Timestamp time.Time

	// RawTime is the first-column text exactly as it appeared in the source,
	// before any repair of concatenated date and time.
	RawTime string

	Lat     float64
	Lon     float64
	Alt     float64
	Speed   float64 // km/h
	Heading float64 // degrees
	Sats    int

	// Raw is the full cleaned source line. Exports write it back unchanged.
	Raw string
}

// Sequence is the ordered set of records loaded from one source file.
// Records keep source order; nothing resorts them.
type Sequence struct {
	// Header lists the source column names in source order.
	Header []string

	// Records holds every accepted data line.
	Records []Record
}

// Len returns the number of records.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Empty reports whether the sequence has no records.
func (s *Sequence) Empty() bool {
	return s.Len() == 0
}

// At returns the record at index i. The caller must keep i in range.
func (s *Sequence) At(i int) Record {
	return s.Records[i]
}

// Last returns the index of the final record, or -1 when empty.
func (s *Sequence) Last() int {
	return s.Len() - 1
}

// Clamp limits i to [0, Last()]. It returns 0 for an empty sequence.
func (s *Sequence) Clamp(i int) int {
	if i > s.Last() {
		i = s.Last()
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Slice returns records in the inclusive index range [start, end].
// Bounds are clamped; an inverted range yields nil.
func (s *Sequence) Slice(start, end int) []Record {
	if s.Empty() {
		return nil
	}
	start, end = s.Clamp(start), s.Clamp(end)
	if start > end {
		return nil
	}
	return s.Records[start : end+1]
}

// Filter returns the records for which keep returns true, in source order.
func (s *Sequence) Filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range s.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// IndexAtOrAfter returns the first index whose timestamp is not before t,
// or -1 if every record is earlier.
func (s *Sequence) IndexAtOrAfter(t time.Time) int {
	for i, r := range s.Records {
		if !r.Timestamp.Before(t) {
			return i
		}
	}
	return -1
}

// Span describes the time covered by a sequence.
type Span struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Span returns the first and last record timestamps. ok is false when empty.
func (s *Sequence) Span() (span Span, ok bool) {
	if s.Empty() {
		return Span{}, false
	}
	span.Start = s.Records[0].Timestamp
	span.End = s.Records[s.Last()].Timestamp
	span.Duration = span.End.Sub(span.Start)
	return span, true
}
