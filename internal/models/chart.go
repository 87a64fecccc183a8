// Package models defines the domain types for gantt.
package models

import (
	"strconv"
	"time"
)

// Kind is the runtime type of a cell value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Value is a single table cell.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Date time.Time
}

// String builds a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Date builds a date value truncated to the calendar day in UTC.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Text returns the value as it would appear in the source file.
func (v Value) Text() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format(time.DateOnly)
	default:
		return v.Str
	}
}

// IsZero reports whether the cell is empty.
func (v Value) IsZero() bool {
	return v.Kind == KindString && v.Str == ""
}

// Row maps column names to cell values.
type Row map[string]Value

// Table is the per-file working set of rows.
type Table struct {
	Source  string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is one of the table's header columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// FileMetadata describes a source export or rendered image on disk.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chart record statuses.
const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
)

// ChartRecord is the catalog entry for one source file.
type ChartRecord struct {
	Source     string    `json:"source"`
	Profile    string    `json:"profile"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	Rows       int       `json:"rows"`
	Dropped    int       `json:"dropped"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	RenderedAt time.Time `json:"rendered_at"`
}
