// Package selection tracks the in and out marks of a range selection.
package selection

import (
	"fmt"
	"strings"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

const (
	// NoSelection is the summary text when neither mark is set.
	NoSelection = "no selection"

	// Placeholder stands in for an unset mark.
	Placeholder = "--:--"

	labelLayout = "15:04:05.000"
)

// Marks holds two independent cursor indices. The zero value has no marks.
type Marks struct {
	in, out       int
	hasIn, hasOut bool
}

// SetIn records i as the in mark, replacing any previous value.
func (m *Marks) SetIn(i int) {
	m.in, m.hasIn = i, true
}

// SetOut records i as the out mark, replacing any previous value.
func (m *Marks) SetOut(i int) {
	m.out, m.hasOut = i, true
}

// Clear unsets both marks.
func (m *Marks) Clear() {
	*m = Marks{}
}

// In returns the in mark.
func (m Marks) In() (int, bool) { return m.in, m.hasIn }

// Out returns the out mark.
func (m Marks) Out() (int, bool) { return m.out, m.hasOut }

// Empty reports whether neither mark is set.
func (m Marks) Empty() bool { return !m.hasIn && !m.hasOut }

// Complete reports whether both marks are set.
func (m Marks) Complete() bool { return m.hasIn && m.hasOut }

// Range returns the marks ordered low to high. ok is false unless both are
// set. The order in which the marks were placed does not matter.
func (m Marks) Range() (start, end int, ok bool) {
	if !m.Complete() {
		return 0, 0, false
	}
	return min(m.in, m.out), max(m.in, m.out), true
}

// Summary describes a selection for display.
type Summary struct {
	In, Out       time.Time
	HasIn, HasOut bool

	// InLabel and OutLabel are the display labels of the marked records.
	InLabel, OutLabel string

	// Duration is the absolute time between the marks, set only when both are.
	Duration time.Duration
}

// Summarize resolves the marks against seq. Marks outside seq count as unset.
func Summarize(m Marks, seq *track.Sequence) Summary {
	var s Summary
	if i, ok := m.In(); ok && i >= 0 && i < seq.Len() {
		r := seq.At(i)
		s.In, s.InLabel, s.HasIn = r.Timestamp, Label(r), true
	}
	if i, ok := m.Out(); ok && i >= 0 && i < seq.Len() {
		r := seq.At(i)
		s.Out, s.OutLabel, s.HasOut = r.Timestamp, Label(r), true
	}
	if s.HasIn && s.HasOut {
		s.Duration = s.Out.Sub(s.In).Abs()
	}
	return s
}

// Empty reports whether the summary has no marks.
func (s Summary) Empty() bool {
	return !s.HasIn && !s.HasOut
}

// String renders "in ~ out (N.Ns)", with the duration only when both marks
// are set and Placeholder for an unset mark.
func (s Summary) String() string {
	if s.Empty() {
		return NoSelection
	}
	text := orPlaceholder(s.InLabel, s.HasIn) + " ~ " + orPlaceholder(s.OutLabel, s.HasOut)
	if s.HasIn && s.HasOut {
		text += fmt.Sprintf(" (%.1fs)", s.Duration.Seconds())
	}
	return text
}

// Label returns the time-of-day part of r's raw timestamp text, or the
// parsed time when the raw text has no space to split on.
func Label(r track.Record) string {
	if _, tod, ok := strings.Cut(r.RawTime, " "); ok && tod != "" {
		return tod
	}
	return r.Timestamp.Format(labelLayout)
}

func orPlaceholder(label string, ok bool) string {
	if !ok {
		return Placeholder
	}
	return label
}
