package palette

import (
	"testing"

	"github.com/starford/gantt/internal/models"
)

func testRules() Rules {
	return Rules{
		LabelField:    "Summary",
		CategoryField: "Issue Type",
		Overrides:     map[string]string{"Testphase": "grey"},
		Categories: map[string]CategoryStyle{
			"Stream":       {Color: "#5E1914", FontColor: "#5E1914", FontSize: 18},
			"Arbeitspaket": {FontColor: "#C21807"},
		},
		TickColor: "black",
		From:      "#d0d0d0",
		To:        "#303030",
	}
}

func row(summary, typ string) models.Row {
	return models.Row{"Summary": models.String(summary), "Issue Type": models.String(typ)}
}

func TestParse(t *testing.T) {
	c, err := Parse("Grey")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Hex() != "#808080" {
		t.Errorf("hex = %q", c.Hex())
	}
	if _, err := Parse("#abc"); err != nil {
		t.Errorf("short hex: %v", err)
	}
	if err := Valid("not-a-color"); err == nil {
		t.Error("expected error for unknown color")
	}
}

func TestParse_NamedColors(t *testing.T) {
	tests := map[string]string{
		"lightblue":  "#add8e6",
		"Crimson":    "#dc143c",
		"steelblue":  "#4682b4",
		"darkgrey":   "#a9a9a9",
		"tab:orange": "#ff7f0e",
		"k":          "#000000",
	}
	for name, want := range tests {
		c, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(%q): %v", name, err)
			continue
		}
		if c.Hex() != want {
			t.Errorf("Parse(%q) = %s, want %s", name, c.Hex(), want)
		}
	}
}

func TestGradient_DeterministicAndMonotonic(t *testing.T) {
	a, err := Gradient("#ffffff", "#000000", 5)
	if err != nil {
		t.Fatalf("Gradient: %v", err)
	}
	b, _ := Gradient("#ffffff", "#000000", 5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("slot %d differs: %s vs %s", i, a[i], b[i])
		}
	}
	if a[0] != "#ffffff" || a[4] != "#000000" {
		t.Errorf("endpoints = %s, %s", a[0], a[4])
	}
	prev := 2.0
	for i, h := range a {
		c, _ := Parse(h)
		l, _, _ := c.Lab()
		if l > prev {
			t.Errorf("slot %d lightness %v increased from %v", i, l, prev)
		}
		prev = l
	}
}

func TestGradient_SingleRow(t *testing.T) {
	g, err := Gradient("#d0d0d0", "#303030", 1)
	if err != nil || len(g) != 1 || g[0] != "#d0d0d0" {
		t.Errorf("got %v, %v", g, err)
	}
}

func TestColorFor_Priority(t *testing.T) {
	r, err := NewResolver(testRules(), 3)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	slots := r.Slots()

	if got := r.ColorFor(0, row("Testphase", "Stream")); got != "grey" {
		t.Errorf("override: got %q, want grey", got)
	}
	if got := r.ColorFor(1, row("Build", "Stream")); got != "#5E1914" {
		t.Errorf("category: got %q", got)
	}
	// Arbeitspaket declares only a font color, so the bar falls through to the palette.
	if got := r.ColorFor(2, row("Build", "Arbeitspaket")); got != slots[2] {
		t.Errorf("palette: got %q, want %q", got, slots[2])
	}
}

func TestColorFor_OverrideIgnoresSlot(t *testing.T) {
	r, _ := NewResolver(testRules(), 10)
	for i := 0; i < 10; i++ {
		if got := r.ColorFor(i, row("Testphase", "Stream")); got != "grey" {
			t.Fatalf("index %d: got %q", i, got)
		}
	}
}

func TestFontFor(t *testing.T) {
	r, _ := NewResolver(testRules(), 3)
	f := r.FontFor(row("x", "Stream"))
	if f.Color != "#5E1914" || f.Size != 18 {
		t.Errorf("stream font = %+v", f)
	}
	f = r.FontFor(row("x", "Bug"))
	if f.Color != "black" || f.Size != DefaultFontSize {
		t.Errorf("default font = %+v", f)
	}

	big, _ := NewResolver(testRules(), 15)
	if f := big.FontFor(row("x", "Bug")); f.Size != CompactFontSize {
		t.Errorf("compact size = %d", f.Size)
	}
	if f := big.FontFor(row("x", "Stream")); f.Size != 16 {
		t.Errorf("declared compact size = %d, want 16", f.Size)
	}
}
