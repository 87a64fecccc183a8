package chart

import (
	"strings"
	"time"

	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/timefmt"
)

// Milestone label styling.
const (
	MarkerRotation  = 90
	MarkerFontSize  = 18
	MarkerLineWidth = 4
)

// Marker is a vertical line, optionally labelled, drawn over the bars.
type Marker struct {
	X         float64
	Date      time.Time
	Y         float64
	Label     string
	HasLabel  bool
	Color     string
	LineStyle string
}

// Annotate maps each milestone to one marker. A label of "None" or blank
// produces a line without text.
func Annotate(milestones []chartconfig.Milestone) []Marker {
	markers := make([]Marker, 0, len(milestones))
	for _, m := range milestones {
		label := strings.TrimSpace(m.Label)
		mk := Marker{
			X:         timefmt.DateNum(m.Date),
			Date:      timefmt.Day(m.Date),
			Y:         m.VerticalPosition,
			Label:     label,
			HasLabel:  label != "" && label != "None",
			Color:     m.Color,
			LineStyle: m.LineStyle,
		}
		if !mk.HasLabel {
			mk.Label = ""
		}
		if mk.Color == "" {
			mk.Color = chartconfig.DefaultMilestoneColor
		}
		if mk.LineStyle == "" {
			mk.LineStyle = chartconfig.DefaultMilestoneLine
		}
		markers = append(markers, mk)
	}
	return markers
}
