// Package pipeline transforms a decoded table into the ordered, filtered row
// set a chart is drawn from.
package pipeline

import (
	"strings"
	"time"

	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/timefmt"
)

// DateFailure records a row dropped because a date field could not be parsed.
type DateFailure struct {
	Row   int
	Field string
	Value string
}

// ParseDates converts the start and end fields of every row to dates using a
// strftime-style format. Rows where either field fails to parse are removed
// and reported; the row count never increases.
func ParseDates(t *models.Table, startField, endField, format string) []DateFailure {
	layout, err := timefmt.ParseLayout(format)
	if err != nil {
		layout = format
	}

	var failures []DateFailure
	kept := t.Rows[:0]
	for i, row := range t.Rows {
		ok := true
		for _, field := range []string{startField, endField} {
			v, present := row[field]
			d, err := parseDate(v, present, layout)
			if err != nil {
				failures = append(failures, DateFailure{Row: i, Field: field, Value: v.Text()})
				ok = false
				break
			}
			row[field] = models.Date(d)
		}
		if ok {
			kept = append(kept, row)
		}
	}
	clear(t.Rows[len(kept):])
	t.Rows = kept
	return failures
}

func parseDate(v models.Value, present bool, layout string) (time.Time, error) {
	if !present {
		return time.Time{}, errMissingValue
	}
	switch v.Kind {
	case models.KindDate:
		return v.Date, nil
	case models.KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return time.Time{}, errMissingValue
		}
		return time.Parse(layout, s)
	default:
		return time.Parse(layout, v.Text())
	}
}
