package palette

import (
	"github.com/starford/gantt/internal/models"
)

// Label font sizes. Charts with more than CompactThreshold rows use the
// smaller size so that tick labels do not overlap.
const (
	DefaultFontSize  = 16
	CompactFontSize  = 14
	CompactThreshold = 14
	minFontSize      = 6
)

// CategoryStyle is the styling declared for one category value. Zero fields
// are not declared and fall through to the next rule.
type CategoryStyle struct {
	Color     string `json:"color,omitempty"`
	FontColor string `json:"font_color,omitempty"`
	FontSize  int    `json:"font_size,omitempty"`
}

// Rules configures a Resolver.
type Rules struct {
	LabelField    string
	CategoryField string
	Overrides     map[string]string
	Categories    map[string]CategoryStyle
	TickColor     string
	From          string
	To            string
}

// Font is the resolved label font for a row.
type Font struct {
	Color string
	Size  int
}

// Resolver assigns colors with the precedence override > category > palette.
type Resolver struct {
	rules    Rules
	slots    []string
	rowCount int
}

// NewResolver computes the palette for rowCount rows once.
func NewResolver(rules Rules, rowCount int) (*Resolver, error) {
	slots, err := Gradient(rules.From, rules.To, rowCount)
	if err != nil {
		return nil, err
	}
	return &Resolver{rules: rules, slots: slots, rowCount: rowCount}, nil
}

// ColorFor returns the bar color of the row at index.
func (r *Resolver) ColorFor(index int, row models.Row) string {
	if c, ok := r.rules.Overrides[r.label(row)]; ok && c != "" {
		return c
	}
	if style, ok := r.category(row); ok && style.Color != "" {
		return style.Color
	}
	if index >= 0 && index < len(r.slots) {
		return r.slots[index]
	}
	return r.rules.To
}

// FontFor returns the tick label font of a row.
func (r *Resolver) FontFor(row models.Row) Font {
	f := Font{Color: r.rules.TickColor, Size: DefaultFontSize}
	style, ok := r.category(row)
	if ok && style.FontColor != "" {
		f.Color = style.FontColor
	}
	if ok && style.FontSize > 0 {
		f.Size = style.FontSize
	}
	if r.rowCount > CompactThreshold {
		if ok && style.FontSize > 0 {
			f.Size = max(f.Size-(DefaultFontSize-CompactFontSize), minFontSize)
		} else {
			f.Size = CompactFontSize
		}
	}
	return f
}

// Slots returns a copy of the computed palette.
func (r *Resolver) Slots() []string {
	return append([]string(nil), r.slots...)
}

func (r *Resolver) label(row models.Row) string {
	return row[r.rules.LabelField].Text()
}

func (r *Resolver) category(row models.Row) (CategoryStyle, bool) {
	if r.rules.CategoryField == "" {
		return CategoryStyle{}, false
	}
	v, ok := row[r.rules.CategoryField]
	if !ok {
		return CategoryStyle{}, false
	}
	style, ok := r.rules.Categories[v.Text()]
	return style, ok
}
