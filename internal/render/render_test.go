package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chart"
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/models"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func testChart(t *testing.T, format string) *chart.Chart {
	t.Helper()
	cfg := &chartconfig.ChartConfig{
		StartDateField:    "Created",
		EndDateField:      "Due",
		LabelField:        "Summary",
		CategoryField:     "Issue Type",
		DateDisplayFormat: "%Y-%m-%d",
		BarHeight:         0.9,
		LineStyle:         "--",
		Axis:              chartconfig.AxisStyle{GridColor: "grey", TickColor: "black"},
		Palette:           chartconfig.PaletteRange{From: "#d0d0d0", To: "#303030"},
		Milestones: []chartconfig.Milestone{
			{Date: day("2024-02-10"), Label: "None", VerticalPosition: 0, Color: "red", LineStyle: "-"},
			{Date: day("2024-03-01"), Label: "Go-Live <beta>", VerticalPosition: 1, Color: "green", LineStyle: "--"},
		},
	}
	tbl := &models.Table{
		Source: "csv/0_plan.csv",
		Rows: []models.Row{
			{"Summary": models.String("Build & ship"), "Created": models.Date(day("2024-02-01")), "Due": models.Date(day("2024-03-15"))},
			{"Summary": models.String("Plan"), "Created": models.Date(day("2024-01-05")), "Due": models.Date(day("2024-01-20"))},
		},
	}
	c, err := chart.Assemble(tbl, cfg, chart.RenderOptions{Format: format, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	for format, ext := range map[string]string{"svg": ".svg", "PNG": ".png"} {
		r, err := New(format)
		if err != nil || r.Extension() != ext {
			t.Errorf("New(%q) = %v, %v", format, r, err)
		}
	}
	if _, err := New("pdf"); !errors.Is(err, apperr.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSVG_Render(t *testing.T) {
	var buf bytes.Buffer
	if err := (SVG{}).Render(&buf, testChart(t, "svg")); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<svg width="800" height="600"`,
		`font-family="DejaVu Serif" font-weight="bold"`,
		`Build &amp; ship`,
		`Go-Live &lt;beta&gt;`,
		`stroke-dasharray="8,4"`,
		`>2024-02-01</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}

	// Two milestones give two marker lines, only one of them labelled.
	if n := strings.Count(out, `stroke-width="4"`); n != 2 {
		t.Errorf("marker lines = %d, want 2", n)
	}
	if n := strings.Count(out, `font-size="18"`); n != 1 {
		t.Errorf("marker labels = %d, want 1", n)
	}
	if strings.Contains(out, ">None<") {
		t.Error("None sentinel rendered as text")
	}
}

func TestSVG_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := (SVG{}).Render(&a, testChart(t, "svg")); err != nil {
		t.Fatal(err)
	}
	if err := (SVG{}).Render(&b, testChart(t, "svg")); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("SVG output differs between runs")
	}
}

func TestPNG_Render(t *testing.T) {
	var buf bytes.Buffer
	if err := (PNG{}).Render(&buf, testChart(t, "png")); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("size = %v", b)
	}
}

func TestDashPattern(t *testing.T) {
	if dashPattern("-") != nil || dashPattern("solid") != nil {
		t.Error("solid styles should have no pattern")
	}
	if p := dashPattern(":"); len(p) != 2 {
		t.Errorf("dotted = %v", p)
	}
}
