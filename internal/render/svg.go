package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/gantt/internal/chart"
)

// SVG renders charts as standalone SVG documents.
type SVG struct{}

// Extension implements Renderer.
func (SVG) Extension() string { return ".svg" }

// Render implements Renderer.
func (SVG) Render(w io.Writer, c *chart.Chart) error {
	_, err := io.WriteString(w, generateSVG(c))
	return err
}

func generateSVG(c *chart.Chart) string {
	l := newLayout(c)
	opts := c.Options

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" font-family="%s" font-weight="%s">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<title>%s</title>
`, opts.Width, opts.Height, escapeXML(opts.FontFamily), escapeXML(opts.FontWeight), escapeXML(c.Title)))

	// Grid and date ticks.
	grid := hex(c.Axis.GridColor)
	tickColor := hex(c.Axis.TickColor)
	for _, t := range c.Axis.Ticks {
		x := l.x(t.X)
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-opacity="%s" stroke-width="1"%s/>`+"\n",
			num(x), num(l.top), num(x), num(l.bottom()), grid, num(c.Axis.GridAlpha), dashAttr(c.Axis.GridLineStyle)))
		ty := l.bottom() + 8
		svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="end" dominant-baseline="hanging" font-size="%d" fill="%s" transform="rotate(-%s %s %s)">%s</text>`+"\n",
			num(x), num(ty), c.Axis.TickFontSize, tickColor, num(c.Axis.TickRotation), num(x), num(ty), escapeXML(t.Label)))
	}

	// Axes frame.
	svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#000000" stroke-width="1"/>`+"\n",
		num(l.left), num(l.top), num(l.plotW), num(l.plotH)))

	// Bars and row labels.
	for _, b := range c.Bars {
		cy := l.y(float64(b.VerticalIndex))
		h := c.BarHeight * l.rowH
		x0 := l.x(b.StartX)
		x1 := l.x(b.StartX + b.WidthDays)
		svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(x0), num(cy-h/2), num(x1-x0), num(h), hex(b.Color)))
		drawLabel(&svg, b, l.left-labelPadding/2, cy)
	}

	// Milestones are layered over the bars.
	for _, m := range c.Markers {
		x := l.x(m.X)
		color := hex(m.Color)
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d"%s/>`+"\n",
			num(x), num(l.top), num(x), num(l.bottom()), color, chart.MarkerLineWidth, dashAttr(m.LineStyle)))
		if m.HasLabel {
			tx, ty := x-float64(chart.MarkerLineWidth), l.y(m.Y)
			svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" font-size="%d" fill="%s" transform="rotate(-%d %s %s)">%s</text>`+"\n",
				num(tx), num(ty), chart.MarkerFontSize, color, chart.MarkerRotation, num(tx), num(ty), escapeXML(m.Label)))
		}
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

func drawLabel(svg *strings.Builder, b chart.DrawInstruction, x, cy float64) {
	if len(b.Lines) == 0 {
		return
	}
	lineH := float64(b.FontSize) * 1.2
	y := cy - lineH*float64(len(b.Lines)-1)/2
	svg.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="end" dominant-baseline="middle" font-size="%d" fill="%s">`,
		num(x), num(y), b.FontSize, hex(b.FontColor)))
	for i, line := range b.Lines {
		if i == 0 {
			svg.WriteString(fmt.Sprintf(`<tspan x="%s">%s</tspan>`, num(x), escapeXML(line)))
			continue
		}
		svg.WriteString(fmt.Sprintf(`<tspan x="%s" dy="%s">%s</tspan>`, num(x), num(lineH), escapeXML(line)))
	}
	svg.WriteString("</text>\n")
}

func dashAttr(style string) string {
	pattern := dashPattern(style)
	if pattern == nil {
		return ""
	}
	parts := make([]string, len(pattern))
	for i, p := range pattern {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, ","))
}

// num formats a coordinate with fixed precision so output is byte-stable.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
