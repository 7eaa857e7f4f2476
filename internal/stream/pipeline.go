package stream

import (
	"math"
	"strings"

	"github.com/roach88/joinkit/internal/ir"
)

// Pipeline is an ordered, append-only sequence of actions bound to the
// value-kind of T.
//
// A Pipeline is a persistent list: Append returns a new value that shares
// every earlier action with its parent, and the parent stays usable.
// The zero value is the empty pipeline.
type Pipeline[T any] struct {
	head *node[T]
	size int
}

type node[T any] struct {
	action Action[T]
	prev   *node[T]
}

// New returns an empty pipeline over T.
func New[T any]() Pipeline[T] {
	return Pipeline[T]{}
}

// NewInt returns an empty pipeline over unboxed int values.
func NewInt() Pipeline[int32] { return Pipeline[int32]{} }

// NewLong returns an empty pipeline over unboxed long values.
func NewLong() Pipeline[int64] { return Pipeline[int64]{} }

// NewDouble returns an empty pipeline over unboxed double values.
func NewDouble() Pipeline[float64] { return Pipeline[float64]{} }

// Kind returns the value-kind of the pipeline.
func (p Pipeline[T]) Kind() Kind { return KindOf[T]() }

// Len returns the number of actions.
func (p Pipeline[T]) Len() int { return p.size }

// Empty reports whether the pipeline has no actions.
func (p Pipeline[T]) Empty() bool { return p.size == 0 }

// Append returns a new pipeline with a added after every existing action.
// p itself is unchanged. Fails with INVALID_ARGUMENT when a has no operand
// or was declared for another value-kind.
func (p Pipeline[T]) Append(a Action[T]) (Pipeline[T], error) {
	if err := a.validate(); err != nil {
		return p, err
	}
	if a.kind != p.Kind() {
		return p, invalidArgument("%s action of kind %s cannot be appended to a %s pipeline", a.op, a.kind, p.Kind())
	}
	return Pipeline[T]{head: &node[T]{action: a, prev: p.head}, size: p.size + 1}, nil
}

// Actions returns the actions in execution order.
func (p Pipeline[T]) Actions() []Action[T] {
	out := make([]Action[T], p.size)
	i := p.size - 1
	for n := p.head; n != nil; n = n.prev {
		out[i] = n.action
		i--
	}
	return out
}

// Skip appends a SKIP action.
func (p Pipeline[T]) Skip(n int64) (Pipeline[T], error) {
	a, err := Skip[T](n)
	if err != nil {
		return p, err
	}
	return p.Append(a)
}

// Limit appends a LIMIT action.
func (p Pipeline[T]) Limit(n int64) (Pipeline[T], error) {
	a, err := Limit[T](n)
	if err != nil {
		return p, err
	}
	return p.Append(a)
}

// Filter appends a FILTER action. It panics if pred is nil; use Append
// with the Filter constructor to get an error instead.
func (p Pipeline[T]) Filter(pred func(T) bool) Pipeline[T] {
	return must(p.Append(Filter(pred)))
}

// Map appends a MAP action. It panics if fn is nil.
func (p Pipeline[T]) Map(fn func(T) T) Pipeline[T] {
	return must(p.Append(Map(fn)))
}

// Sorted appends a SORTED action. It panics if cmp is nil.
func (p Pipeline[T]) Sorted(cmp func(a, b T) int) Pipeline[T] {
	return must(p.Append(Sorted(cmp)))
}

// Peek appends a PEEK action. It panics if fn is nil.
func (p Pipeline[T]) Peek(fn func(T)) Pipeline[T] {
	return must(p.Append(Peek(fn)))
}

// Optimized returns an equivalent pipeline in which runs of adjacent SKIP
// actions are merged into one (counts summed) and runs of adjacent LIMIT
// actions into one (smallest count). Other actions are kept as they are.
func (p Pipeline[T]) Optimized() Pipeline[T] {
	var out []Action[T]
	for _, a := range p.Actions() {
		if len(out) > 0 {
			last := &out[len(out)-1]
			switch {
			case a.op == OpSkip && last.op == OpSkip:
				last.count = addSaturating(last.count, a.count)
				continue
			case a.op == OpLimit && last.op == OpLimit:
				last.count = min(last.count, a.count)
				continue
			}
		}
		out = append(out, a)
	}

	var q Pipeline[T]
	for _, a := range out {
		q = Pipeline[T]{head: &node[T]{action: a, prev: q.head}, size: q.size + 1}
	}
	return q
}

// Describe renders the pipeline as "filter -> skip(2) -> limit(5)".
// The empty pipeline renders as "identity".
func (p Pipeline[T]) Describe() string {
	if p.size == 0 {
		return "identity"
	}
	parts := make([]string, 0, p.size)
	for _, a := range p.Actions() {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " -> ")
}

// Realize returns a lazy sequence applying every action to src in order.
//
// Nothing is read from src until the result is ranged over, and each range
// over the result re-executes against src with fresh SKIP/LIMIT/SORTED/
// DISTINCT state. Stopping early stops pulling from src.
func (p Pipeline[T]) Realize(src Seq[T]) Seq[T] {
	actions := p.Actions()
	return func(yield func(T, error) bool) {
		seq := src
		for _, a := range actions {
			seq = apply(a, seq)
		}
		for v, err := range seq {
			if !yield(v, err) {
				return
			}
		}
	}
}

func must[T any](p Pipeline[T], err error) Pipeline[T] {
	if err != nil {
		panic(err)
	}
	return p
}

func addSaturating(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func invalidArgument(format string, args ...any) error {
	return ir.Errorf(ir.ErrCodeInvalidArgument, format, args...)
}
