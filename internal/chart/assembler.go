// Package chart turns a prepared table into draw instructions for a renderer.
package chart

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/palette"
	"github.com/starford/gantt/internal/timefmt"
)

// Axis presentation constants.
const (
	GridAlpha     = 0.25
	TickRotation  = 60
	TickFontSize  = 12
	secondsPerDay = 86400
)

// DrawInstruction is one horizontal bar and its tick label.
type DrawInstruction struct {
	VerticalIndex int
	Start         time.Time
	End           time.Time
	StartX        float64
	WidthDays     float64
	Color         string
	Label         string
	Lines         []string
	FontSize      int
	FontColor     string
}

// Tick is a labelled position on the date axis.
type Tick struct {
	X     float64
	Date  time.Time
	Label string
}

// Axis describes the date axis and its grid.
type Axis struct {
	MinX          float64
	MaxX          float64
	Ticks         []Tick
	GridLineStyle string
	GridColor     string
	GridAlpha     float64
	TickColor     string
	TickRotation  float64
	TickFontSize  int
}

// Chart is everything a renderer needs to draw one timeline.
type Chart struct {
	Title     string
	Bars      []DrawInstruction
	Markers   []Marker
	Axis      Axis
	BarHeight float64
	Options   RenderOptions
}

// Rows returns the number of bar slots on the vertical axis.
func (c *Chart) Rows() int {
	return len(c.Bars)
}

// Assemble builds the chart for a table that has been through the pipeline.
// Row 0 of the table is drawn at the bottom.
func Assemble(t *models.Table, cfg *chartconfig.ChartConfig, opts RenderOptions) (*Chart, error) {
	resolver, err := palette.NewResolver(cfg.ColorRules(), t.Len())
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	tickLayout, err := timefmt.FormatLayout(cfg.DateDisplayFormat)
	if err != nil {
		return nil, fmt.Errorf("display format: %w", err)
	}

	c := &Chart{
		Title:     strings.TrimSuffix(filepath.Base(t.Source), filepath.Ext(t.Source)),
		Bars:      make([]DrawInstruction, 0, t.Len()),
		Markers:   Annotate(cfg.Milestones),
		BarHeight: cfg.BarHeight,
		Options:   opts.WithDefaults(),
	}

	for i, row := range t.Rows {
		start, end := row[cfg.StartDateField], row[cfg.EndDateField]
		if start.Kind != models.KindDate || end.Kind != models.KindDate {
			return nil, fmt.Errorf("row %d: date fields not parsed", i)
		}
		days := math.Round(end.Date.Sub(start.Date).Hours() / 24)
		if days < 0 {
			return nil, fmt.Errorf("row %d (%s to %s): %w", i,
				start.Date.Format(time.DateOnly), end.Date.Format(time.DateOnly), apperr.ErrNegativeDuration)
		}

		lines := Wrap(row[cfg.LabelField].Text(), LabelWidth)
		font := resolver.FontFor(row)
		c.Bars = append(c.Bars, DrawInstruction{
			VerticalIndex: i,
			Start:         start.Date,
			End:           end.Date,
			StartX:        timefmt.DateNum(start.Date),
			WidthDays:     days,
			Color:         resolver.ColorFor(i, row),
			Label:         strings.Join(lines, "\n"),
			Lines:         lines,
			FontSize:      font.Size,
			FontColor:     font.Color,
		})
	}

	c.Axis = axis(c.Bars, c.Markers, cfg, tickLayout)
	return c, nil
}

func axis(bars []DrawInstruction, markers []Marker, cfg *chartconfig.ChartConfig, layout string) Axis {
	a := Axis{
		GridLineStyle: cfg.LineStyle,
		GridColor:     cfg.Axis.GridColor,
		GridAlpha:     GridAlpha,
		TickColor:     cfg.Axis.TickColor,
		TickRotation:  TickRotation,
		TickFontSize:  TickFontSize,
	}

	first := true
	extend := func(lo, hi float64) {
		if first {
			a.MinX, a.MaxX, first = lo, hi, false
			return
		}
		a.MinX = math.Min(a.MinX, lo)
		a.MaxX = math.Max(a.MaxX, hi)
	}
	for _, b := range bars {
		extend(b.StartX, b.StartX+b.WidthDays)
	}
	for _, m := range markers {
		extend(m.X, m.X)
	}
	if first {
		a.MaxX = 1
		return a
	}

	a.Ticks = monthlyTicks(a.MinX, a.MaxX, layout)
	if len(a.Ticks) > 0 && a.Ticks[0].X < a.MinX {
		a.MinX = a.Ticks[0].X
	}
	if a.MaxX == a.MinX {
		a.MaxX = a.MinX + 1
	}
	return a
}

// monthlyTicks returns a tick on the first day of every month in [lo, hi].
// When the range contains no month start the month containing lo is used.
func monthlyTicks(lo, hi float64, layout string) []Tick {
	from := time.Unix(int64(lo*secondsPerDay), 0).UTC()
	to := time.Unix(int64(hi*secondsPerDay), 0).UTC()

	month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month.Before(from) {
		next := month.AddDate(0, 1, 0)
		if !next.After(to) {
			month = next
		}
	}

	var ticks []Tick
	for ; !month.After(to); month = month.AddDate(0, 1, 0) {
		ticks = append(ticks, Tick{
			X:     timefmt.DateNum(month),
			Date:  month,
			Label: month.Format(layout),
		})
	}
	return ticks
}
