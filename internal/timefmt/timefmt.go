// Package timefmt translates strftime-style date formats into Go layouts.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// directives maps strftime verbs to Go layout elements. The parse variant is
// lenient about zero padding the way strptime is.
var directives = map[byte]struct{ parse, format string }{
	'Y': {"2006", "2006"},
	'y': {"06", "06"},
	'm': {"1", "01"},
	'd': {"2", "02"},
	'e': {"_2", "_2"},
	'b': {"Jan", "Jan"},
	'h': {"Jan", "Jan"},
	'B': {"January", "January"},
	'a': {"Mon", "Mon"},
	'A': {"Monday", "Monday"},
	'H': {"15", "15"},
	'I': {"3", "03"},
	'M': {"04", "04"},
	'S': {"05", "05"},
	'p': {"PM", "PM"},
	'j': {"__2", "002"},
	'z': {"-0700", "-0700"},
	'Z': {"MST", "MST"},
}

// ParseLayout returns the Go layout used to parse values written in format.
// A format without any '%' is returned unchanged and treated as a Go layout.
func ParseLayout(format string) (string, error) {
	return translate(format, true)
}

// FormatLayout returns the Go layout used to print dates in format.
func FormatLayout(format string) (string, error) {
	return translate(format, false)
}

func translate(format string, parse bool) (string, error) {
	if format == "" {
		return "", fmt.Errorf("timefmt: empty format")
	}
	if !strings.Contains(format, "%") {
		return format, nil
	}
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("timefmt: dangling %% in %q", format)
		}
		i++
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}
		d, ok := directives[format[i]]
		if !ok {
			return "", fmt.Errorf("timefmt: unsupported directive %%%c in %q", format[i], format)
		}
		if parse {
			b.WriteString(d.parse)
		} else {
			b.WriteString(d.format)
		}
	}
	return b.String(), nil
}

// isoLayouts are tried in order by ParseDate.
var isoLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseDate parses an ISO-like date literal and truncates it to the calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("timefmt: unrecognised date %q", s)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateNum returns the number of days since 1970-01-01, the horizontal unit of a chart.
func DateNum(t time.Time) float64 {
	return float64(Day(t).Unix()) / 86400
}
