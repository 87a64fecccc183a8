package chartconfig

import (
	"fmt"
	"strings"

	"github.com/starford/gantt/internal/apperr"
)

// Operator is the closed set of filter comparisons.
type Operator int

// Filter operators. OpInvalid marks a filter whose configured operator name
// was not recognised; such filters are reported and skipped.
const (
	OpInvalid Operator = iota
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var operatorNames = map[string]Operator{
	"eq": OpEq, "equals": OpEq, "==": OpEq, "=": OpEq,
	"ne": OpNe, "not_equals": OpNe, "!=": OpNe,
	"lt": OpLt, "lower_than": OpLt, "<": OpLt,
	"le": OpLe, "lower_equals": OpLe, "<=": OpLe,
	"gt": OpGt, "greater_than": OpGt, ">": OpGt,
	"ge": OpGe, "greater_equals": OpGe, ">=": OpGe,
}

// ParseOperator resolves a configured operator name.
func ParseOperator(name string) (Operator, error) {
	op, ok := operatorNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return OpInvalid, fmt.Errorf("%w: %q", apperr.ErrUnknownOperator, name)
	}
	return op, nil
}

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	default:
		return "invalid"
	}
}

// Ordering reports whether the operator needs an orderable field.
func (o Operator) Ordering() bool {
	switch o {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// MarshalText encodes the operator by its short name.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
