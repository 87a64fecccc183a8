// Package chartconfig validates and normalizes chart configuration documents.
package chartconfig

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/gantt/internal/palette"
	"github.com/starford/gantt/internal/timefmt"
)

// SortPolicy selects the row ordering.
type SortPolicy string

// Sort policies.
const (
	SortByStartDate    SortPolicy = "start_date"
	SortByStructurePos SortPolicy = "structure_pos"
)

// Defaults applied by Normalize.
const (
	DefaultTargetDirectory   = "diagrams"
	DefaultLabelField        = "Summary"
	DefaultCategoryField     = "Issue Type"
	DefaultStructureField    = "Description"
	DefaultDateInputFormat   = "%d/%b/%y %I:%M %p"
	DefaultDateDisplayFormat = "%Y-%m-%d"
	DefaultBarHeight         = 0.9
	DefaultSortBy            = SortByStartDate
	DefaultLineStyle         = "--"
	DefaultGridColor         = "grey"
	DefaultTickColor         = "black"
	DefaultPaletteFrom       = "#d0d0d0"
	DefaultPaletteTo         = "#303030"
	DefaultMilestoneColor    = "red"
	DefaultMilestoneLine     = "-"
)

// ChartConfig is the normalized, read-only configuration of one chart profile.
type ChartConfig struct {
	CSVDirectory      string                           `json:"csv_directory"`
	TargetDirectory   string                           `json:"target_directory"`
	StartDateField    string                           `json:"start_date_field"`
	EndDateField      string                           `json:"end_date_field"`
	LabelField        string                           `json:"label_field"`
	CategoryField     string                           `json:"category_field"`
	StructureField    string                           `json:"structure_field"`
	DateInputFormat   string                           `json:"date_input_format"`
	DateDisplayFormat string                           `json:"date_display_format"`
	Filters           []Filter                         `json:"filters"`
	SortBy            SortPolicy                       `json:"sort_by"`
	BarHeight         float64                          `json:"bar_height"`
	ColorOverrides    map[string]string                `json:"color_overrides"`
	CategoryStyle     map[string]palette.CategoryStyle `json:"category_style"`
	LineStyle         string                           `json:"line_style"`
	Milestones        []Milestone                      `json:"milestones"`
	Axis              AxisStyle                        `json:"axis"`
	Palette           PaletteRange                     `json:"palette"`
}

// Filter is one declarative row predicate.
type Filter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	// RawOperator keeps the configured name for reporting.
	RawOperator string `json:"raw_operator"`
	Operand     any    `json:"operand"`
}

// Milestone is a date-anchored vertical annotation.
type Milestone struct {
	Date             time.Time `json:"date"`
	Label            string    `json:"label"`
	VerticalPosition float64   `json:"vertical_position"`
	Color            string    `json:"color"`
	LineStyle        string    `json:"line_style"`
}

// AxisStyle holds the colors of grid lines and tick labels.
type AxisStyle struct {
	GridColor string `json:"grid_color"`
	TickColor string `json:"tick_color"`
}

// PaletteRange is the gradient used for rows without an explicit color.
type PaletteRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ColorRules returns the color assignment rules for this chart.
func (c *ChartConfig) ColorRules() palette.Rules {
	return palette.Rules{
		LabelField:    c.LabelField,
		CategoryField: c.CategoryField,
		Overrides:     c.ColorOverrides,
		Categories:    c.CategoryStyle,
		TickColor:     c.Axis.TickColor,
		From:          c.Palette.From,
		To:            c.Palette.To,
	}
}

// Validate checks value constraints after defaults have been applied.
func (c *ChartConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CSVDirectory, validation.Required),
		validation.Field(&c.TargetDirectory, validation.Required),
		validation.Field(&c.StartDateField, validation.Required),
		validation.Field(&c.EndDateField, validation.Required),
		validation.Field(&c.LabelField, validation.Required),
		validation.Field(&c.DateInputFormat, validation.Required, validation.By(parseFormat)),
		validation.Field(&c.DateDisplayFormat, validation.Required, validation.By(displayFormat)),
		validation.Field(&c.SortBy, validation.Required, validation.In(SortByStartDate, SortByStructurePos)),
		validation.Field(&c.BarHeight, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&c.LineStyle, validation.Required),
		validation.Field(&c.ColorOverrides, validation.Each(validation.By(color))),
		validation.Field(&c.Milestones, validation.Each(validation.By(milestone))),
		validation.Field(&c.Axis, validation.By(axis)),
		validation.Field(&c.Palette, validation.By(paletteRange)),
	)
}

func parseFormat(value any) error {
	s, _ := value.(string)
	_, err := timefmt.ParseLayout(s)
	return err
}

func displayFormat(value any) error {
	s, _ := value.(string)
	_, err := timefmt.FormatLayout(s)
	return err
}

func color(value any) error {
	s, _ := value.(string)
	return palette.Valid(s)
}

func milestone(value any) error {
	m, ok := value.(Milestone)
	if !ok {
		return fmt.Errorf("unexpected milestone type %T", value)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("milestone date is required")
	}
	return palette.Valid(m.Color)
}

func axis(value any) error {
	a, _ := value.(AxisStyle)
	if err := palette.Valid(a.GridColor); err != nil {
		return err
	}
	return palette.Valid(a.TickColor)
}

func paletteRange(value any) error {
	p, _ := value.(PaletteRange)
	if err := palette.Valid(p.From); err != nil {
		return err
	}
	return palette.Valid(p.To)
}
