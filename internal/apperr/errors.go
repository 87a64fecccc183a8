// Package apperr defines the error taxonomy shared by the chart pipeline.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownOperator   = errors.New("unknown filter operator")
	ErrMissingColumn     = errors.New("column not present in table")
	ErrNotOrderable      = errors.New("field does not support ordering")
	ErrOperandType       = errors.New("operand does not match field type")
	ErrNegativeDuration  = errors.New("end date before start date")
	ErrNoProfile         = errors.New("no profile matches file")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ConfigErrorKind classifies configuration failures.
type ConfigErrorKind string

// Configuration failure kinds.
const (
	MissingField    ConfigErrorKind = "missing_field"
	InvalidDocument ConfigErrorKind = "invalid_document"
	InvalidValue    ConfigErrorKind = "invalid_value"
	Unreadable      ConfigErrorKind = "unreadable"
)

// ConfigError is fatal: nothing can be rendered from a configuration that produced it.
type ConfigError struct {
	Kind   ConfigErrorKind
	Source string
	Fields []string
	Err    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Fields, ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FilterError reports a filter that was skipped. The remaining filters still apply.
type FilterError struct {
	Index    int
	Field    string
	Operator string
	Err      error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter %d (%s %s): %v", e.Index, e.Field, e.Operator, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// OrderingErrorKind classifies ordering failures.
type OrderingErrorKind string

// MissingStructurePosition means a row carries no trailing integer in its structure field.
const MissingStructurePosition OrderingErrorKind = "missing_structure_position"

// OrderingError aborts the current file.
type OrderingError struct {
	Kind  OrderingErrorKind
	Row   int
	Field string
	Value string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("ordering: %s: row %d field %q value %q", e.Kind, e.Row, e.Field, e.Value)
}

// RenderError wraps any failure that stops one source file from producing a chart.
type RenderError struct {
	Source string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Source, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsConfig reports whether err carries a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
