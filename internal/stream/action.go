package stream

import (
	"fmt"
	"iter"
)

// Op classifies an Action. The tag is what pipeline analysis (merging,
// Describe) looks at; the operand is opaque to it.
type Op int

const (
	OpSkip Op = iota + 1
	OpLimit
	OpFilter
	OpMap
	OpSorted
	OpDistinct
	OpPeek
	OpFlatMap
)

var opNames = map[Op]string{
	OpSkip:     "skip",
	OpLimit:    "limit",
	OpFilter:   "filter",
	OpMap:      "map",
	OpSorted:   "sorted",
	OpDistinct: "distinct",
	OpPeek:     "peek",
	OpFlatMap:  "flat_map",
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Stateful reports whether realizing the op needs per-realization state.
func (o Op) Stateful() bool {
	switch o {
	case OpSkip, OpLimit, OpSorted, OpDistinct:
		return true
	default:
		return false
	}
}

// Kind is the value-kind of the elements an action or pipeline handles.
type Kind int

const (
	KindObject Kind = iota + 1
	KindInt
	KindLong
	KindDouble
)

var kindNames = map[Kind]string{
	KindObject: "object",
	KindInt:    "int",
	KindLong:   "long",
	KindDouble: "double",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf derives the value-kind for element type T.
// int32, int64 and float64 map to the primitive kinds; every other type
// (including named types over those) is an object.
func KindOf[T any]() Kind {
	var zero T
	switch any(zero).(type) {
	case int32:
		return KindInt
	case int64:
		return KindLong
	case float64:
		return KindDouble
	default:
		return KindObject
	}
}

// Action is one immutable pipeline step.
//
// The zero Action is not valid; build actions with the constructors below.
type Action[T any] struct {
	op   Op
	kind Kind

	count int64
	pred  func(T) bool
	fn    func(T) T
	cmp   func(a, b T) int
	dedup func(Seq[T]) Seq[T]
	peek  func(T)
	flat  func(T) iter.Seq[T]
}

// Op returns the classification tag.
func (a Action[T]) Op() Op { return a.op }

// Kind returns the value-kind the action was declared for.
func (a Action[T]) Kind() Kind { return a.kind }

// Count returns the operand of a SKIP or LIMIT action, and 0 otherwise.
func (a Action[T]) Count() int64 { return a.count }

// String renders the action for explain output, e.g. "limit(5)".
func (a Action[T]) String() string {
	switch a.op {
	case OpSkip, OpLimit:
		return fmt.Sprintf("%s(%d)", a.op, a.count)
	default:
		return a.op.String()
	}
}

// Skip returns an action dropping the first n elements.
func Skip[T any](n int64) (Action[T], error) {
	if n < 0 {
		return Action[T]{}, invalidArgument("skip count must be non-negative, got %d", n)
	}
	return Action[T]{op: OpSkip, kind: KindOf[T](), count: n}, nil
}

// Limit returns an action truncating the sequence to at most n elements.
func Limit[T any](n int64) (Action[T], error) {
	if n < 0 {
		return Action[T]{}, invalidArgument("limit count must be non-negative, got %d", n)
	}
	return Action[T]{op: OpLimit, kind: KindOf[T](), count: n}, nil
}

// Filter keeps elements for which pred returns true.
func Filter[T any](pred func(T) bool) Action[T] {
	return Action[T]{op: OpFilter, kind: KindOf[T](), pred: pred}
}

// Map replaces each element with fn(element).
// Mapping to a different element type is done on sequences with MapTo.
func Map[T any](fn func(T) T) Action[T] {
	return Action[T]{op: OpMap, kind: KindOf[T](), fn: fn}
}

// Sorted buffers the sequence and re-emits it ordered by cmp.
// The sort is stable.
func Sorted[T any](cmp func(a, b T) int) Action[T] {
	return Action[T]{op: OpSorted, kind: KindOf[T](), cmp: cmp}
}

// Distinct drops elements equal to one already emitted.
func Distinct[T comparable]() Action[T] {
	return Action[T]{op: OpDistinct, kind: KindOf[T](), dedup: func(in Seq[T]) Seq[T] {
		return distinctSeq(in, func(v T) T { return v })
	}}
}

// DistinctBy drops elements whose key was already emitted.
// Use it for element types that are not comparable.
func DistinctBy[T any, K comparable](key func(T) K) Action[T] {
	if key == nil {
		return Action[T]{op: OpDistinct, kind: KindOf[T]()}
	}
	return Action[T]{op: OpDistinct, kind: KindOf[T](), dedup: func(in Seq[T]) Seq[T] {
		return distinctSeq(in, key)
	}}
}

// Peek calls fn for every element passing through, without changing it.
func Peek[T any](fn func(T)) Action[T] {
	return Action[T]{op: OpPeek, kind: KindOf[T](), peek: fn}
}

// FlatMap replaces each element with the elements of fn(element).
func FlatMap[T any](fn func(T) iter.Seq[T]) Action[T] {
	return Action[T]{op: OpFlatMap, kind: KindOf[T](), flat: fn}
}

// validate checks that the operand required by the op is present.
func (a Action[T]) validate() error {
	var missing bool
	switch a.op {
	case OpSkip, OpLimit:
		if a.count < 0 {
			return invalidArgument("%s count must be non-negative, got %d", a.op, a.count)
		}
	case OpFilter:
		missing = a.pred == nil
	case OpMap:
		missing = a.fn == nil
	case OpSorted:
		missing = a.cmp == nil
	case OpDistinct:
		missing = a.dedup == nil
	case OpPeek:
		missing = a.peek == nil
	case OpFlatMap:
		missing = a.flat == nil
	default:
		return invalidArgument("action has no operation")
	}
	if missing {
		return invalidArgument("%s action requires a non-nil operand", a.op)
	}
	return nil
}
