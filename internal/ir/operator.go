package ir

import (
	"cmp"
	"fmt"
	"math"
	"strings"
)

// Operator is a comparison used by stage predicate links.
type Operator int

const (
	OpEqual Operator = iota + 1
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

var operatorNames = map[Operator]string{
	OpEqual:          "EQUAL",
	OpNotEqual:       "NOT_EQUAL",
	OpLess:           "LESS",
	OpLessOrEqual:    "LESS_OR_EQUAL",
	OpGreater:        "GREATER",
	OpGreaterOrEqual: "GREATER_OR_EQUAL",
}

var operatorSymbols = map[Operator]string{
	OpEqual:          "=",
	OpNotEqual:       "<>",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
}

// String implements fmt.Stringer.
func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Symbol returns the SQL-like symbol for op, e.g. "<=".
func (op Operator) Symbol() string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return "?"
}

// Valid reports whether op is one of the six defined operators.
func (op Operator) Valid() bool {
	_, ok := operatorNames[op]
	return ok
}

// IsEquality reports whether op is OpEqual.
func (op Operator) IsEquality() bool {
	return op == OpEqual
}

// ParseOperator accepts the operator name (EQUAL, less_or_equal, ...) or its
// symbol (=, ==, !=, <>, <, <=, >, >=).
func ParseOperator(s string) (Operator, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "=", "==":
		return OpEqual, nil
	case "!=", "<>":
		return OpNotEqual, nil
	case "<":
		return OpLess, nil
	case "<=":
		return OpLessOrEqual, nil
	case ">":
		return OpGreater, nil
	case ">=":
		return OpGreaterOrEqual, nil
	}
	upper := strings.ToUpper(s)
	for op, name := range operatorNames {
		if name == upper {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Supports reports whether columns of type left and right can be compared
// with op. Numeric widths compare with each other, strings with strings,
// booleans only under equality and inequality.
func (op Operator) Supports(left, right ColumnType) bool {
	if !op.Valid() {
		return false
	}
	switch {
	case left.IsNumeric() && right.IsNumeric():
		return true
	case left == TypeString && right == TypeString:
		return true
	case left == TypeBool && right == TypeBool:
		return op == OpEqual || op == OpNotEqual
	default:
		return false
	}
}

// Apply evaluates "left op right".
// Null on either side, or values of incomparable types, yield false.
func (op Operator) Apply(left, right Value) bool {
	switch op {
	case OpEqual:
		eq, ok := Equal(left, right)
		return ok && eq
	case OpNotEqual:
		eq, ok := Equal(left, right)
		return ok && !eq
	}

	c, ok := Compare(left, right)
	if !ok {
		return false
	}
	switch op {
	case OpLess:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	default:
		return false
	}
}

// Equal reports whether two values are equal. The second result is false
// when the values are not comparable (Null involved or type mismatch).
//
// Doubles are equal only when their IEEE-754 bit patterns match, so NaN
// equals an identical NaN and 0.0 differs from -0.0. Mixed integer/double
// comparisons convert the integer to float64 first.
func Equal(left, right Value) (bool, bool) {
	if IsNull(left) || IsNull(right) {
		return false, false
	}
	if li, ok := asInteger(left); ok {
		if ri, ok := asInteger(right); ok {
			return li == ri, true
		}
	}
	if lf, ok := asFloat(left); ok {
		if rf, ok := asFloat(right); ok {
			return math.Float64bits(lf) == math.Float64bits(rf), true
		}
		return false, false
	}
	switch l := left.(type) {
	case String:
		r, ok := right.(String)
		return ok && l == r, ok
	case Bool:
		r, ok := right.(Bool)
		return ok && l == r, ok
	}
	return false, false
}

// Compare orders two values: -1, 0 or +1. The second result is false when
// the values have no ordering (Null involved, booleans, type mismatch).
// Doubles use cmp.Compare, a total order in which NaN sorts first.
func Compare(left, right Value) (int, bool) {
	if IsNull(left) || IsNull(right) {
		return 0, false
	}
	if li, ok := asInteger(left); ok {
		if ri, ok := asInteger(right); ok {
			return cmp.Compare(li, ri), true
		}
	}
	if lf, ok := asFloat(left); ok {
		if rf, ok := asFloat(right); ok {
			return cmp.Compare(lf, rf), true
		}
		return 0, false
	}
	if l, ok := left.(String); ok {
		if r, ok := right.(String); ok {
			return strings.Compare(string(l), string(r)), true
		}
	}
	return 0, false
}

func asInteger(v Value) (int64, bool) {
	switch n := v.(type) {
	case Int:
		return int64(n), true
	case Long:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Long:
		return float64(n), true
	case Double:
		return float64(n), true
	}
	return 0, false
}
