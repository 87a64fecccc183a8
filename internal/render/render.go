// Package render draws assembled charts as SVG documents or PNG images.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chart"
	"github.com/starford/gantt/internal/palette"
)

// Renderer writes one chart in a specific image format.
type Renderer interface {
	Render(w io.Writer, c *chart.Chart) error
	Extension() string
}

// New returns the renderer for format ("svg" or "png").
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case chart.FormatSVG:
		return SVG{}, nil
	case chart.FormatPNG:
		return PNG{}, nil
	default:
		return nil, fmt.Errorf("%w: render format %q", apperr.ErrUnsupportedFormat, format)
	}
}

// dashPattern maps a line style to segment lengths in pixels. A nil pattern is solid.
func dashPattern(style string) []int {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "--", "dashed":
		return []int{8, 4}
	case ":", "dotted":
		return []int{2, 4}
	case "-.", "dashdot":
		return []int{8, 4, 2, 4}
	default:
		return nil
	}
}

// hex normalises a color name to #rrggbb, leaving unknown values untouched.
func hex(c string) string {
	parsed, err := palette.Parse(c)
	if err != nil {
		return c
	}
	return parsed.Hex()
}
