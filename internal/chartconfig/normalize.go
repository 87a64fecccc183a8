package chartconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/palette"
	"github.com/starford/gantt/internal/timefmt"
	"github.com/starford/gantt/pkg/config"
)

// RequiredFields lists the document paths that have no default.
var RequiredFields = []string{"directories.csv", "fields.start_date", "fields.end_date"}

// Reserved keys of visualization.colors. Every other key is a label override.
const (
	gridColorKey = "chart_lines"
	tickColorKey = "x_label"
)

// noneSentinel is how documents spell an absent value.
const noneSentinel = "None"

// Load reads a chart configuration document (JSON, YAML or TOML) and
// normalizes it. Values are taken literally; "$NAME" is not expanded.
func Load(path string) (*ChartConfig, error) {
	var raw map[string]any
	if err := config.LoadLiteral(path, &raw); err != nil {
		return nil, &apperr.ConfigError{Kind: apperr.Unreadable, Source: filepath.Base(path), Err: err}
	}
	if raw == nil {
		return nil, &apperr.ConfigError{Kind: apperr.Unreadable, Source: filepath.Base(path), Err: errors.New("empty document")}
	}
	cfg, err := Normalize(raw)
	if err != nil {
		var ce *apperr.ConfigError
		if errors.As(err, &ce) && ce.Source == "" {
			ce.Source = filepath.Base(path)
		}
		return nil, err
	}
	return cfg, nil
}

// Normalize validates a raw configuration document and applies defaults.
// It performs no I/O.
func Normalize(raw map[string]any) (*ChartConfig, error) {
	var missing []string
	for _, path := range RequiredFields {
		if isMissing(lookup(raw, path)) {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.ConfigError{Kind: apperr.MissingField, Fields: missing}
	}

	if err := validateDocument(raw); err != nil {
		return nil, &apperr.ConfigError{Kind: apperr.InvalidDocument, Err: err}
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, &apperr.ConfigError{Kind: apperr.InvalidValue, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &apperr.ConfigError{Kind: apperr.InvalidValue, Err: err}
	}
	return cfg, nil
}

func build(raw map[string]any) (*ChartConfig, error) {
	cfg := &ChartConfig{
		CSVDirectory:      stringAt(raw, "directories.csv", ""),
		TargetDirectory:   stringAt(raw, "directories.target", DefaultTargetDirectory),
		StartDateField:    stringAt(raw, "fields.start_date", ""),
		EndDateField:      stringAt(raw, "fields.end_date", ""),
		LabelField:        stringAt(raw, "fields.label", DefaultLabelField),
		CategoryField:     stringAt(raw, "fields.category", DefaultCategoryField),
		StructureField:    stringAt(raw, "fields.structure", DefaultStructureField),
		DateInputFormat:   stringAt(raw, "date_format.input", DefaultDateInputFormat),
		DateDisplayFormat: stringAt(raw, "date_format.display", DefaultDateDisplayFormat),
		SortBy:            SortPolicy(stringAt(raw, "sort_by", string(DefaultSortBy))),
		LineStyle:         stringAt(raw, "visualization.chart_line_style", DefaultLineStyle),
		ColorOverrides:    map[string]string{},
		CategoryStyle:     map[string]palette.CategoryStyle{},
		Axis:              AxisStyle{GridColor: DefaultGridColor, TickColor: DefaultTickColor},
		Palette: PaletteRange{
			From: stringAt(raw, "visualization.palette.from", DefaultPaletteFrom),
			To:   stringAt(raw, "visualization.palette.to", DefaultPaletteTo),
		},
	}

	cfg.BarHeight = DefaultBarHeight
	if v := lookup(raw, "visualization.bar_height"); !isMissing(v) {
		h, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("visualization.bar_height: %w", err)
		}
		cfg.BarHeight = h
	}

	colors, err := mapAt(raw, "visualization.colors")
	if err != nil {
		return nil, err
	}
	for key, v := range colors {
		c, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("visualization.colors.%s: %w", key, err)
		}
		switch key {
		case gridColorKey:
			cfg.Axis.GridColor = c
		case tickColorKey:
			cfg.Axis.TickColor = c
		default:
			cfg.ColorOverrides[key] = c
		}
	}

	if err := buildCategories(raw, cfg); err != nil {
		return nil, err
	}
	if cfg.Filters, err = buildFilters(lookup(raw, "filters")); err != nil {
		return nil, err
	}
	if cfg.Milestones, err = buildMilestones(lookup(raw, "milestones"), cfg.DateInputFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildCategories merges the legacy fonts.y_label section with categories.
// Keys declared under categories win.
func buildCategories(raw map[string]any, cfg *ChartConfig) error {
	for _, path := range []string{"visualization.fonts.y_label", "visualization.categories"} {
		section, err := mapAt(raw, path)
		if err != nil {
			return err
		}
		for name, v := range section {
			m, err := cast.ToStringMapE(v)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", path, name, err)
			}
			style := cfg.CategoryStyle[name]
			if c, ok := m["color"]; ok {
				style.Color = cast.ToString(c)
			}
			if c, ok := m["font_color"]; ok {
				style.FontColor = cast.ToString(c)
			}
			if s, ok := m["font_size"]; ok && !isMissing(s) {
				size, err := cast.ToIntE(s)
				if err != nil {
					return fmt.Errorf("%s.%s.font_size: %w", path, name, err)
				}
				style.FontSize = size
			}
			for field, c := range map[string]string{"color": style.Color, "font_color": style.FontColor} {
				if c == "" {
					continue
				}
				if err := palette.Valid(c); err != nil {
					return fmt.Errorf("%s.%s.%s: %w", path, name, field, err)
				}
			}
			cfg.CategoryStyle[name] = style
		}
	}
	return nil
}

func buildFilters(v any) ([]Filter, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		if s == noneSentinel || s == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("filters: unexpected value %q", s)
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	filters := make([]Filter, 0, len(items))
	for i, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		f := Filter{
			Field:       cast.ToString(m["field"]),
			RawOperator: cast.ToString(m["operator"]),
		}
		// An unknown operator is kept and reported when the filter is applied.
		f.Operator, _ = ParseOperator(f.RawOperator)
		for _, key := range []string{"condition", "operand", "value"} {
			if op, ok := m[key]; ok {
				f.Operand = op
				break
			}
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func buildMilestones(v any, inputFormat string) ([]Milestone, error) {
	if v == nil {
		return nil, nil
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("milestones: %w", err)
	}
	milestones := make([]Milestone, 0, len(items))
	for i, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("milestones[%d]: %w", i, err)
		}
		date, err := milestoneDate(m["date"], inputFormat)
		if err != nil {
			return nil, fmt.Errorf("milestones[%d].date: %w", i, err)
		}
		ms := Milestone{
			Date:      date,
			Color:     DefaultMilestoneColor,
			LineStyle: DefaultMilestoneLine,
		}
		if name, ok := m["name"]; ok && name != nil {
			ms.Label = cast.ToString(name)
		}
		if pos, ok := m["pos"]; ok && !isMissing(pos) {
			if ms.VerticalPosition, err = cast.ToFloat64E(pos); err != nil {
				return nil, fmt.Errorf("milestones[%d].pos: %w", i, err)
			}
		}
		if c := cast.ToString(m["color"]); c != "" {
			ms.Color = c
		}
		if ls := cast.ToString(m["line_style"]); ls != "" {
			ms.LineStyle = ls
		}
		milestones = append(milestones, ms)
	}
	return milestones, nil
}

func milestoneDate(v any, inputFormat string) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return timefmt.Day(d), nil
	case nil:
		return time.Time{}, errors.New("missing")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := timefmt.ParseDate(s); err == nil {
		return t, nil
	}
	layout, err := timefmt.ParseLayout(inputFormat)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return timefmt.Day(t), nil
}

// lookup walks a dotted path through nested maps.
func lookup(raw map[string]any, path string) any {
	var cur any = raw
	for _, key := range strings.Split(path, ".") {
		m, err := cast.ToStringMapE(cur)
		if err != nil {
			return nil
		}
		v, ok := m[key]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func isMissing(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func stringAt(raw map[string]any, path, def string) string {
	v := lookup(raw, path)
	if isMissing(v) {
		return def
	}
	return cast.ToString(v)
}

func mapAt(raw map[string]any, path string) (map[string]any, error) {
	v := lookup(raw, path)
	if v == nil {
		return nil, nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
