package detector

import "regexp"

// TimestampFormat represents a known timestamp column format.
type TimestampFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for reports
	Layout     string         // Go time layout for parsing
	Examples   []string       // Example timestamps
	Ambiguous  bool           // True if format has date ordering ambiguity (MM/DD vs DD/MM)

	// Corrupt marks the date-and-time-run-together pattern that ingest
	// repairs by inserting a space.
	Corrupt bool
}

// DefaultFormats returns the built-in timestamp formats to detect.
// Patterns are anchored at both ends because the whole field is a timestamp.
func DefaultFormats() []*TimestampFormat {
	formats := []*TimestampFormat{
		{
			Name:       "ISO 8601 with timezone",
			PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?[+-]\d{2}:\d{2})$`,
			Layout:     "2006-01-02T15:04:05-07:00",
			Examples:   []string{"2026-01-14T08:05:40.004+08:00"},
		},
		{
			Name:       "ISO 8601 with Z (UTC)",
			PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z)$`,
			Layout:     "2006-01-02T15:04:05Z",
			Examples:   []string{"2026-01-14T00:05:40.004Z"},
		},
		{
			Name:       "ISO 8601",
			PatternStr: `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?)$`,
			Layout:     "2006-01-02T15:04:05",
			Examples:   []string{"2026-01-14T00:05:40.004"},
		},
		{
			Name:       "Datetime with fraction",
			PatternStr: `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d+)$`,
			Layout:     "2006-01-02 15:04:05",
			Examples:   []string{"2026-01-14 00:05:40.004", "2026-01-14 00:05:40.004000"},
		},
		{
			Name:       "Datetime",
			PatternStr: `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})$`,
			Layout:     "2006-01-02 15:04:05",
			Examples:   []string{"2026-01-14 00:05:40"},
		},
		{
			Name:       "Date and time run together",
			PatternStr: `^(\d{4}-\d{2}-\d{2}\d{2}:\d{2}:\d{2}\.\d+)$`,
			Layout:     "2006-01-0215:04:05",
			Examples:   []string{"2026-01-1400:05:40.004"},
			Corrupt:    true,
		},
		{
			Name:       "Slash date",
			PatternStr: `^(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?)$`,
			Layout:     "2006/01/02 15:04:05",
			Examples:   []string{"2026/01/14 00:05:40.004"},
		},
		{
			Name:       "European date (DD.MM.YYYY)",
			PatternStr: `^(\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}:\d{2}(?:\.\d+)?)$`,
			Layout:     "02.01.2006 15:04:05",
			Examples:   []string{"14.01.2026 00:05:40"},
		},
		{
			Name:       "US date format (MM/DD/YYYY)",
			PatternStr: `^(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}(?:\.\d+)?)$`,
			Layout:     "01/02/2006 15:04:05",
			Examples:   []string{"01/14/2026 00:05:40"},
			Ambiguous:  true,
		},
		{
			Name:       "Unix timestamp (seconds)",
			PatternStr: `^(\d{10}(?:\.\d+)?)$`,
			Layout:     LayoutUnixSeconds,
			Examples:   []string{"1768349140"},
		},
		{
			Name:       "Unix timestamp (milliseconds)",
			PatternStr: `^(\d{13})$`,
			Layout:     LayoutUnixMillis,
			Examples:   []string{"1768349140004"},
		},
	}

	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
