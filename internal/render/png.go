package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/starford/gantt/internal/chart"
	"github.com/starford/gantt/internal/palette"
)

// PNG rasterizes charts. Text uses a fixed bitmap face, so label font sizes
// affect layout but not glyph size.
type PNG struct{}

// Extension implements Renderer.
func (PNG) Extension() string { return ".png" }

// Render implements Renderer.
func (PNG) Render(w io.Writer, c *chart.Chart) error {
	return png.Encode(w, rasterize(c))
}

func rasterize(c *chart.Chart) *image.RGBA {
	l := newLayout(c)
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()

	grid := rgba(c.Axis.GridColor, c.Axis.GridAlpha)
	tick := rgba(c.Axis.TickColor, 1)
	for _, t := range c.Axis.Ticks {
		x := int(math.Round(l.x(t.X)))
		vline(img, x, int(l.top), int(l.bottom()), 1, grid, dashPattern(c.Axis.GridLineStyle))
		text(img, face, t.Label, x-textWidth(face, t.Label)/2, int(l.bottom())+8+lineH, tick)
	}

	frame := color.RGBA{A: 255}
	hline(img, int(l.left), int(l.right()), int(l.top), frame)
	hline(img, int(l.left), int(l.right()), int(l.bottom()), frame)
	vline(img, int(l.left), int(l.top), int(l.bottom()), 1, frame, nil)
	vline(img, int(l.right()), int(l.top), int(l.bottom()), 1, frame, nil)

	for _, b := range c.Bars {
		cy := l.y(float64(b.VerticalIndex))
		h := c.BarHeight * l.rowH
		r := image.Rect(
			int(math.Round(l.x(b.StartX))), int(math.Round(cy-h/2)),
			int(math.Round(l.x(b.StartX+b.WidthDays))), int(math.Round(cy+h/2)),
		)
		draw.Draw(img, r, image.NewUniform(rgba(b.Color, 1)), image.Point{}, draw.Over)

		fc := rgba(b.FontColor, 1)
		y := int(cy) - lineH*(len(b.Lines)-1)/2 + lineH/3
		for i, line := range b.Lines {
			x := int(l.left) - labelPadding/2 - textWidth(face, line)
			text(img, face, line, x, y+i*lineH, fc)
		}
	}

	for _, m := range c.Markers {
		x := int(math.Round(l.x(m.X)))
		mc := rgba(m.Color, 1)
		vline(img, x-chart.MarkerLineWidth/2, int(l.top), int(l.bottom()), chart.MarkerLineWidth, mc, dashPattern(m.LineStyle))
		if m.HasLabel {
			text(img, face, m.Label, x-chart.MarkerLineWidth-textWidth(face, m.Label), int(l.y(m.Y)), mc)
		}
	}
	return img
}

func rgba(c string, alpha float64) color.Color {
	parsed, err := palette.Parse(c)
	if err != nil {
		return color.Black
	}
	r, g, b := parsed.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}

// vline draws a vertical line of the given width, optionally dashed.
func vline(img *image.RGBA, x, y0, y1, width int, c color.Color, dash []int) {
	src := image.NewUniform(c)
	seg, on, y := 0, true, y0
	for y < y1 {
		n := y1 - y
		if dash != nil {
			n = min(dash[seg%len(dash)], n)
		}
		if on {
			draw.Draw(img, image.Rect(x, y, x+width, y+n), src, image.Point{}, draw.Over)
		}
		y += n
		if dash != nil {
			seg++
			on = !on
		}
	}
}

func hline(img *image.RGBA, x0, x1, y int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y, x1, y+1), image.NewUniform(c), image.Point{}, draw.Over)
}

func text(img *image.RGBA, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
