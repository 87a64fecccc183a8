package chart

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// RenderOptions carries the drawing settings shared by every chart of a run.
type RenderOptions struct {
	FontFamily string `yaml:"font_family" json:"font_family"`
	FontWeight string `yaml:"font_weight" json:"font_weight"`
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
	Format     string `yaml:"format" json:"format"`
}

// DefaultRenderOptions returns a 1920x1080 PNG in bold DejaVu Serif.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		FontFamily: "DejaVu Serif",
		FontWeight: "bold",
		Width:      1920,
		Height:     1080,
		Format:     FormatPNG,
	}
}

// WithDefaults fills zero fields from DefaultRenderOptions.
func (o RenderOptions) WithDefaults() RenderOptions {
	d := DefaultRenderOptions()
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.FontWeight == "" {
		o.FontWeight = d.FontWeight
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	o.Format = strings.ToLower(o.Format)
	return o
}

// Extension returns the output file extension including the dot.
func (o RenderOptions) Extension() string {
	return "." + o.Format
}

// Validate checks the option values.
func (o RenderOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.Required, validation.In(FormatSVG, FormatPNG)),
		validation.Field(&o.Width, validation.Required, validation.Min(1)),
		validation.Field(&o.Height, validation.Required, validation.Min(1)),
		validation.Field(&o.FontWeight, validation.In("normal", "bold")),
	)
}
