package chartconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/starford/gantt/internal/apperr"
)

func minimal() map[string]any {
	return map[string]any{
		"directories": map[string]any{"csv": "csv/0"},
		"fields":      map[string]any{"start_date": "Created", "end_date": "Due Date"},
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg, err := Normalize(minimal())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.TargetDirectory != DefaultTargetDirectory {
		t.Errorf("target = %q", cfg.TargetDirectory)
	}
	if cfg.LabelField != "Summary" || cfg.CategoryField != "Issue Type" {
		t.Errorf("fields = %q, %q", cfg.LabelField, cfg.CategoryField)
	}
	if cfg.BarHeight != 0.9 || cfg.SortBy != SortByStartDate || cfg.LineStyle != "--" {
		t.Errorf("visualization defaults = %v %v %q", cfg.BarHeight, cfg.SortBy, cfg.LineStyle)
	}
	if cfg.DateInputFormat != "%d/%b/%y %I:%M %p" {
		t.Errorf("input format = %q", cfg.DateInputFormat)
	}
	if cfg.Axis.GridColor != "grey" || cfg.Axis.TickColor != "black" {
		t.Errorf("axis = %+v", cfg.Axis)
	}
	if len(cfg.Filters) != 0 || len(cfg.Milestones) != 0 {
		t.Errorf("unexpected filters/milestones: %v %v", cfg.Filters, cfg.Milestones)
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want []string
	}{
		{
			name: "end date absent",
			raw: map[string]any{
				"directories": map[string]any{"csv": "csv"},
				"fields":      map[string]any{"start_date": "Created"},
			},
			want: []string{"fields.end_date"},
		},
		{
			name: "empty string counts as missing",
			raw: map[string]any{
				"directories": map[string]any{"csv": ""},
				"fields":      map[string]any{"start_date": "Created", "end_date": "Due"},
			},
			want: []string{"directories.csv"},
		},
		{
			name: "everything missing",
			raw:  map[string]any{},
			want: []string{"directories.csv", "fields.start_date", "fields.end_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			var ce *apperr.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if ce.Kind != apperr.MissingField {
				t.Errorf("kind = %s", ce.Kind)
			}
			if !reflect.DeepEqual(ce.Fields, tt.want) {
				t.Errorf("fields = %v, want %v", ce.Fields, tt.want)
			}
		})
	}
}

func TestNormalize_InvalidDocument(t *testing.T) {
	raw := minimal()
	raw["visualization"] = map[string]any{"colors": []any{"red"}}

	_, err := Normalize(raw)
	var ce *apperr.ConfigError
	if !errors.As(err, &ce) || ce.Kind != apperr.InvalidDocument {
		t.Fatalf("expected invalid_document, got %v", err)
	}
}

func TestNormalize_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"negative bar height", func(r map[string]any) {
			r["visualization"] = map[string]any{"bar_height": -1.0}
		}},
		{"unparseable bar height", func(r map[string]any) {
			r["visualization"] = map[string]any{"bar_height": "tall"}
		}},
		{"unknown sort policy", func(r map[string]any) { r["sort_by"] = "priority" }},
		{"unknown color", func(r map[string]any) {
			r["visualization"] = map[string]any{"colors": map[string]any{"Testphase": "blurple"}}
		}},
		{"bad input format", func(r map[string]any) {
			r["date_format"] = map[string]any{"input": "%Q"}
		}},
		{"bad milestone date", func(r map[string]any) {
			r["milestones"] = []any{map[string]any{"date": "someday"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := minimal()
			tt.mutate(raw)
			_, err := Normalize(raw)
			var ce *apperr.ConfigError
			if !errors.As(err, &ce) || ce.Kind != apperr.InvalidValue {
				t.Fatalf("expected invalid_value, got %v", err)
			}
		})
	}
}

func TestNormalize_OriginalDocument(t *testing.T) {
	raw := minimal()
	raw["filters"] = []any{
		map[string]any{"field": "Status", "operator": "equals", "condition": "Done"},
		map[string]any{"field": "Status", "operator": "approximately", "condition": "Done"},
	}
	raw["sort_by"] = "structure_pos"
	raw["visualization"] = map[string]any{
		"bar_height":       "0.5",
		"chart_line_style": ":",
		"colors": map[string]any{
			"Testphase":   "grey",
			"chart_lines": "#cccccc",
			"x_label":     "#111111",
		},
		"fonts": map[string]any{
			"y_label": map[string]any{
				"Stream": map[string]any{"font_color": "#5E1914"},
			},
		},
		"categories": map[string]any{
			"Stream": map[string]any{"color": "#5E1914", "font_size": "18"},
		},
	}
	raw["milestones"] = []any{
		map[string]any{"date": "2024-03-01", "name": "None", "pos": 3},
		map[string]any{"date": "2024-04-01", "name": "Go-Live", "pos": "2.5", "color": "green", "line_style": "--"},
	}

	cfg, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if cfg.BarHeight != 0.5 || cfg.LineStyle != ":" || cfg.SortBy != SortByStructurePos {
		t.Errorf("visualization = %v %q %v", cfg.BarHeight, cfg.LineStyle, cfg.SortBy)
	}
	if cfg.Axis.GridColor != "#cccccc" || cfg.Axis.TickColor != "#111111" {
		t.Errorf("axis = %+v", cfg.Axis)
	}
	if _, ok := cfg.ColorOverrides["chart_lines"]; ok {
		t.Error("reserved key leaked into overrides")
	}
	if cfg.ColorOverrides["Testphase"] != "grey" {
		t.Errorf("overrides = %v", cfg.ColorOverrides)
	}

	stream := cfg.CategoryStyle["Stream"]
	if stream.Color != "#5E1914" || stream.FontColor != "#5E1914" || stream.FontSize != 18 {
		t.Errorf("stream style = %+v", stream)
	}

	if len(cfg.Filters) != 2 {
		t.Fatalf("filters = %d", len(cfg.Filters))
	}
	if cfg.Filters[0].Operator != OpEq || cfg.Filters[0].Operand != "Done" {
		t.Errorf("filter 0 = %+v", cfg.Filters[0])
	}
	if cfg.Filters[1].Operator != OpInvalid || cfg.Filters[1].RawOperator != "approximately" {
		t.Errorf("filter 1 = %+v", cfg.Filters[1])
	}

	if len(cfg.Milestones) != 2 {
		t.Fatalf("milestones = %d", len(cfg.Milestones))
	}
	m0, m1 := cfg.Milestones[0], cfg.Milestones[1]
	if !m0.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || m0.Color != "red" || m0.LineStyle != "-" {
		t.Errorf("milestone 0 = %+v", m0)
	}
	if m1.VerticalPosition != 2.5 || m1.Label != "Go-Live" || m1.Color != "green" {
		t.Errorf("milestone 1 = %+v", m1)
	}
}

func TestNormalize_FiltersNone(t *testing.T) {
	raw := minimal()
	raw["filters"] = "None"
	cfg, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(cfg.Filters) != 0 {
		t.Errorf("filters = %v", cfg.Filters)
	}
}

func TestParseOperator(t *testing.T) {
	for name, want := range map[string]Operator{
		"equals": OpEq, "==": OpEq, "not_equals": OpNe, "lower_than": OpLt,
		"<=": OpLe, "greater_than": OpGt, "GE": OpGe,
	} {
		got, err := ParseOperator(name)
		if err != nil || got != want {
			t.Errorf("ParseOperator(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseOperator("like"); !errors.Is(err, apperr.ErrUnknownOperator) {
		t.Errorf("expected ErrUnknownOperator, got %v", err)
	}
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"config_0.json": `{
	"directories": {"csv": "csv/0"},
	"fields": {"start_date": "Created", "end_date": "Due Date"},
	"filters": "None"
}`,
		"config_1.yaml": "directories:\n  csv: csv/1\nfields:\n  start_date: Created\n  end_date: Due Date\nmilestones:\n  - date: 2024-05-01\n    name: Release\n    pos: 1\n",
		"config_2.toml": "[directories]\ncsv = \"csv/2\"\n\n[fields]\nstart_date = \"Created\"\nend_date = \"Due Date\"\n\n[[milestones]]\ndate = 2024-05-01\nname = \"Release\"\npos = 1\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if cfg.StartDateField != "Created" || cfg.EndDateField != "Due Date" {
			t.Errorf("%s: fields = %q %q", name, cfg.StartDateField, cfg.EndDateField)
		}
		for _, m := range cfg.Milestones {
			if !m.Date.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("%s: milestone date = %v", name, m.Date)
			}
		}
	}
}

func TestLoad_DollarIsLiteral(t *testing.T) {
	t.Setenv("Q3", "expanded")
	path := filepath.Join(t.TempDir(), "config_4.json")
	doc := `{
	"directories": {"csv": "csv"},
	"fields": {"start_date": "Created", "end_date": "Due Date"},
	"visualization": {"colors": {"Budget $Q3": "crimson"}},
	"milestones": [{"date": "2024-07-01", "name": "Costs $Q3", "pos": 1}]
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ColorOverrides["Budget $Q3"] != "crimson" {
		t.Errorf("overrides = %v", cfg.ColorOverrides)
	}
	if len(cfg.Milestones) != 1 || cfg.Milestones[0].Label != "Costs $Q3" {
		t.Errorf("milestones = %+v", cfg.Milestones)
	}
}

func TestLoad_MissingFieldNamesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config_3.json")
	if err := os.WriteFile(path, []byte(`{"directories": {"csv": "csv"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var ce *apperr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.Source != "config_3.json" || ce.Kind != apperr.MissingField {
		t.Errorf("error = %+v", ce)
	}
	if !reflect.DeepEqual(ce.Fields, []string{"fields.start_date", "fields.end_date"}) {
		t.Errorf("fields = %v", ce.Fields)
	}
}

func TestLoad_Unreadable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	var ce *apperr.ConfigError
	if !errors.As(err, &ce) || ce.Kind != apperr.Unreadable {
		t.Fatalf("expected unreadable, got %v", err)
	}
}
