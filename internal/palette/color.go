// Package palette resolves bar and label colors for chart rows.
package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// aliases are the matplotlib shorthands and tab10 names that have no SVG
// color keyword.
var aliases = map[string]string{
	"b":          "#0000ff",
	"g":          "#008000",
	"r":          "#ff0000",
	"c":          "#00bfbf",
	"m":          "#bf00bf",
	"y":          "#bfbf00",
	"k":          "#000000",
	"w":          "#ffffff",
	"tab:blue":   "#1f77b4",
	"tab:orange": "#ff7f0e",
	"tab:green":  "#2ca02c",
	"tab:red":    "#d62728",
	"tab:purple": "#9467bd",
	"tab:brown":  "#8c564b",
	"tab:pink":   "#e377c2",
	"tab:gray":   "#7f7f7f",
	"tab:grey":   "#7f7f7f",
	"tab:olive":  "#bcbd22",
	"tab:cyan":   "#17becf",
}

// Parse converts an SVG color keyword, a matplotlib shorthand or a
// #rgb/#rrggbb literal into a color.
func Parse(s string) (colorful.Color, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if rgba, ok := colornames.Map[key]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c, nil
	}
	if hex, ok := aliases[key]; ok {
		key = hex
	}
	c, err := colorful.Hex(key)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("palette: invalid color %q: %w", s, err)
	}
	return c, nil
}

// Valid reports whether s can be parsed as a color.
func Valid(s string) error {
	_, err := Parse(s)
	return err
}

// Gradient returns n colors interpolated from 'from' to 'to'. Slot i sits at
// i/(n-1) along the blend, so the result depends only on n.
func Gradient(from, to string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	a, err := Parse(from)
	if err != nil {
		return nil, err
	}
	b, err := Parse(to)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = a.BlendRgb(b, t).Clamped().Hex()
	}
	return out, nil
}
