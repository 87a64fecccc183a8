package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/timefmt"
)

var errMissingValue = errors.New("missing value")

// ApplyFilters keeps the rows that satisfy every filter, in configured order.
// A filter that cannot be evaluated is skipped as a whole and reported; the
// remaining filters still apply.
func ApplyFilters(t *models.Table, filters []chartconfig.Filter, inputFormat string) []error {
	var errs []error
	for i, f := range filters {
		keep, err := evaluate(t, f, inputFormat)
		if err != nil {
			errs = append(errs, &apperr.FilterError{Index: i, Field: f.Field, Operator: f.RawOperator, Err: err})
			continue
		}
		kept := t.Rows[:0]
		for j, row := range t.Rows {
			if keep[j] {
				kept = append(kept, row)
			}
		}
		clear(t.Rows[len(kept):])
		t.Rows = kept
	}
	return errs
}

// evaluate computes the filter mask without touching the table, so that a
// failure on any row leaves the table unchanged.
func evaluate(t *models.Table, f chartconfig.Filter, inputFormat string) ([]bool, error) {
	if f.Operator == chartconfig.OpInvalid {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownOperator, f.RawOperator)
	}
	if !t.HasColumn(f.Field) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrMissingColumn, f.Field)
	}

	keep := make([]bool, len(t.Rows))
	for i, row := range t.Rows {
		ok, err := match(row[f.Field], f.Operator, f.Operand, inputFormat)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		keep[i] = ok
	}
	return keep, nil
}

// match compares one cell against the operand. An empty cell equals nothing.
func match(v models.Value, op chartconfig.Operator, operand any, inputFormat string) (bool, error) {
	if v.IsZero() {
		return op == chartconfig.OpNe, nil
	}

	var c int
	switch v.Kind {
	case models.KindNumber:
		want, err := cast.ToFloat64E(operand)
		if err != nil {
			if !op.Ordering() {
				return literalMatch(v, op, operand)
			}
			return false, fmt.Errorf("%w: %v", apperr.ErrOperandType, err)
		}
		c = compareFloat(v.Num, want)
	case models.KindDate:
		want, err := operandDate(operand, inputFormat)
		if err != nil {
			if !op.Ordering() {
				return literalMatch(v, op, operand)
			}
			return false, fmt.Errorf("%w: %v", apperr.ErrOperandType, err)
		}
		c = v.Date.Compare(want)
	default:
		if op.Ordering() {
			return false, fmt.Errorf("%w: %s on string value", apperr.ErrNotOrderable, op)
		}
		want, err := cast.ToStringE(operand)
		if err != nil {
			return false, fmt.Errorf("%w: %v", apperr.ErrOperandType, err)
		}
		c = strings.Compare(v.Str, want)
	}

	switch op {
	case chartconfig.OpEq:
		return c == 0, nil
	case chartconfig.OpNe:
		return c != 0, nil
	case chartconfig.OpLt:
		return c < 0, nil
	case chartconfig.OpLe:
		return c <= 0, nil
	case chartconfig.OpGt:
		return c > 0, nil
	case chartconfig.OpGe:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("%w: %s", apperr.ErrUnknownOperator, op)
	}
}

// literalMatch compares the cell text with the operand text. eq and ne use
// it when the operand does not convert to the cell's type, so such a filter
// matches nothing (or everything, for ne) instead of failing.
func literalMatch(v models.Value, op chartconfig.Operator, operand any) (bool, error) {
	want, err := cast.ToStringE(operand)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperr.ErrOperandType, err)
	}
	equal := v.Text() == want
	if op == chartconfig.OpNe {
		return !equal, nil
	}
	return equal, nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func operandDate(operand any, inputFormat string) (time.Time, error) {
	if d, ok := operand.(time.Time); ok {
		return timefmt.Day(d), nil
	}
	s, err := cast.ToStringE(operand)
	if err != nil {
		return time.Time{}, err
	}
	if d, err := timefmt.ParseDate(s); err == nil {
		return d, nil
	}
	layout, err := timefmt.ParseLayout(inputFormat)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return timefmt.Day(d), nil
}
