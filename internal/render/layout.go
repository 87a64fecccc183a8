package render

import (
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/starford/gantt/internal/chart"
)

const (
	marginTop    = 40
	marginRight  = 60
	marginBottom = 130
	minLeft      = 120
	labelPadding = 16
	// charWidth approximates the advance of one column as a fraction of the font size.
	charWidth = 0.6
)

// layout maps chart coordinates to pixels. Row 0 sits at the bottom.
type layout struct {
	width, height int
	left, top     float64
	plotW, plotH  float64
	minX, spanX   float64
	rowH          float64
}

func newLayout(c *chart.Chart) layout {
	w, h := c.Options.Width, c.Options.Height

	labelW := 0.0
	for _, b := range c.Bars {
		for _, line := range b.Lines {
			lw := float64(runewidth.StringWidth(line)) * float64(b.FontSize) * charWidth
			labelW = math.Max(labelW, lw)
		}
	}
	left := math.Min(math.Max(labelW+2*labelPadding, minLeft), float64(w)/2)

	l := layout{
		width:  w,
		height: h,
		left:   left,
		top:    marginTop,
		plotW:  math.Max(float64(w)-left-marginRight, 1),
		plotH:  math.Max(float64(h-marginTop-marginBottom), 1),
		minX:   c.Axis.MinX,
		spanX:  c.Axis.MaxX - c.Axis.MinX,
	}
	if l.spanX <= 0 {
		l.spanX = 1
	}
	l.rowH = l.plotH / float64(max(c.Rows(), 1))
	return l
}

func (l layout) x(v float64) float64 {
	return l.left + (v-l.minX)/l.spanX*l.plotW
}

// y returns the vertical pixel centre of a row position.
func (l layout) y(row float64) float64 {
	return l.top + l.plotH - (row+0.5)*l.rowH
}

func (l layout) bottom() float64 {
	return l.top + l.plotH
}

func (l layout) right() float64 {
	return l.left + l.plotW
}
