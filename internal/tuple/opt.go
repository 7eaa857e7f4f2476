package tuple

import "fmt"

// Opt holds a value that may be absent. Join tuples use it for every
// element so that the missing side of an outer join is explicit rather
// than a zero value.
type Opt[T any] struct {
	v  T
	ok bool
}

// Present wraps v.
func Present[T any](v T) Opt[T] {
	return Opt[T]{v: v, ok: true}
}

// Absent returns the empty Opt.
func Absent[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// IsPresent reports whether a value is held.
func (o Opt[T]) IsPresent() bool { return o.ok }

// IsAbsent reports whether no value is held.
func (o Opt[T]) IsAbsent() bool { return !o.ok }

// OrElse returns the value, or def when absent.
func (o Opt[T]) OrElse(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// MustGet returns the value and panics when absent.
func (o Opt[T]) MustGet() T {
	if !o.ok {
		panic(fmt.Sprintf("tuple: MustGet on absent %T", o.v))
	}
	return o.v
}

// Any erases the element type.
func (o Opt[T]) Any() Opt[any] {
	if !o.ok {
		return Opt[any]{}
	}
	return Opt[any]{v: o.v, ok: true}
}

// String renders the value with %v, or "absent".
func (o Opt[T]) String() string {
	if !o.ok {
		return "absent"
	}
	return fmt.Sprintf("%v", o.v)
}
