package tuple

import (
	"fmt"
	"strings"
)

// Tuple is the degree-independent view of a join result.
type Tuple interface {
	// Degree returns the number of elements.
	Degree() int
	// Get returns element i (0-based). An index outside [0, Degree())
	// returns an error.
	Get(i int) (Opt[any], error)
}

func outOfRange(i, degree int) error {
	return fmt.Errorf("tuple index %d out of range for degree %d", i, degree)
}

func format(elems ...Opt[any]) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Tuple2 is an immutable tuple of degree 2.
type Tuple2[T1, T2 any] struct {
	e1 Opt[T1]
	e2 Opt[T2]
}

// Of2 builds a Tuple2. Its signature matches the constructor expected
// by join.Create2.
func Of2[T1, T2 any](e1 Opt[T1], e2 Opt[T2]) Tuple2[T1, T2] {
	return Tuple2[T1, T2]{e1: e1, e2: e2}
}

// First returns element 0.
func (t Tuple2[T1, T2]) First() Opt[T1] { return t.e1 }

// Second returns element 1.
func (t Tuple2[T1, T2]) Second() Opt[T2] { return t.e2 }

// Degree implements Tuple.
func (t Tuple2[T1, T2]) Degree() int { return 2 }

// Get implements Tuple.
func (t Tuple2[T1, T2]) Get(i int) (Opt[any], error) {
	switch i {
	case 0:
		return t.e1.Any(), nil
	case 1:
		return t.e2.Any(), nil
	default:
		return Opt[any]{}, outOfRange(i, 2)
	}
}

func (t Tuple2[T1, T2]) String() string {
	return format(t.e1.Any(), t.e2.Any())
}

// Tuple3 is an immutable tuple of degree 3.
type Tuple3[T1, T2, T3 any] struct {
	e1 Opt[T1]
	e2 Opt[T2]
	e3 Opt[T3]
}

// Of3 builds a Tuple3.
func Of3[T1, T2, T3 any](e1 Opt[T1], e2 Opt[T2], e3 Opt[T3]) Tuple3[T1, T2, T3] {
	return Tuple3[T1, T2, T3]{e1: e1, e2: e2, e3: e3}
}

func (t Tuple3[T1, T2, T3]) First() Opt[T1] { return t.e1 }

func (t Tuple3[T1, T2, T3]) Second() Opt[T2] { return t.e2 }

func (t Tuple3[T1, T2, T3]) Third() Opt[T3] { return t.e3 }

// Degree implements Tuple.
func (t Tuple3[T1, T2, T3]) Degree() int { return 3 }

// Get implements Tuple.
func (t Tuple3[T1, T2, T3]) Get(i int) (Opt[any], error) {
	switch i {
	case 0:
		return t.e1.Any(), nil
	case 1:
		return t.e2.Any(), nil
	case 2:
		return t.e3.Any(), nil
	default:
		return Opt[any]{}, outOfRange(i, 3)
	}
}

func (t Tuple3[T1, T2, T3]) String() string {
	return format(t.e1.Any(), t.e2.Any(), t.e3.Any())
}

// Tuple4 is an immutable tuple of degree 4.
type Tuple4[T1, T2, T3, T4 any] struct {
	e1 Opt[T1]
	e2 Opt[T2]
	e3 Opt[T3]
	e4 Opt[T4]
}

// Of4 builds a Tuple4.
func Of4[T1, T2, T3, T4 any](e1 Opt[T1], e2 Opt[T2], e3 Opt[T3], e4 Opt[T4]) Tuple4[T1, T2, T3, T4] {
	return Tuple4[T1, T2, T3, T4]{e1: e1, e2: e2, e3: e3, e4: e4}
}

func (t Tuple4[T1, T2, T3, T4]) First() Opt[T1] { return t.e1 }

func (t Tuple4[T1, T2, T3, T4]) Second() Opt[T2] { return t.e2 }

func (t Tuple4[T1, T2, T3, T4]) Third() Opt[T3] { return t.e3 }

func (t Tuple4[T1, T2, T3, T4]) Fourth() Opt[T4] { return t.e4 }

// Degree implements Tuple.
func (t Tuple4[T1, T2, T3, T4]) Degree() int { return 4 }

// Get implements Tuple.
func (t Tuple4[T1, T2, T3, T4]) Get(i int) (Opt[any], error) {
	switch i {
	case 0:
		return t.e1.Any(), nil
	case 1:
		return t.e2.Any(), nil
	case 2:
		return t.e3.Any(), nil
	case 3:
		return t.e4.Any(), nil
	default:
		return Opt[any]{}, outOfRange(i, 4)
	}
}

func (t Tuple4[T1, T2, T3, T4]) String() string {
	return format(t.e1.Any(), t.e2.Any(), t.e3.Any(), t.e4.Any())
}

// Tuple5 is an immutable tuple of degree 5.
type Tuple5[T1, T2, T3, T4, T5 any] struct {
	e1 Opt[T1]
	e2 Opt[T2]
	e3 Opt[T3]
	e4 Opt[T4]
	e5 Opt[T5]
}

// Of5 builds a Tuple5.
func Of5[T1, T2, T3, T4, T5 any](e1 Opt[T1], e2 Opt[T2], e3 Opt[T3], e4 Opt[T4], e5 Opt[T5]) Tuple5[T1, T2, T3, T4, T5] {
	return Tuple5[T1, T2, T3, T4, T5]{e1: e1, e2: e2, e3: e3, e4: e4, e5: e5}
}

func (t Tuple5[T1, T2, T3, T4, T5]) First() Opt[T1] { return t.e1 }

func (t Tuple5[T1, T2, T3, T4, T5]) Second() Opt[T2] { return t.e2 }

func (t Tuple5[T1, T2, T3, T4, T5]) Third() Opt[T3] { return t.e3 }

func (t Tuple5[T1, T2, T3, T4, T5]) Fourth() Opt[T4] { return t.e4 }

func (t Tuple5[T1, T2, T3, T4, T5]) Fifth() Opt[T5] { return t.e5 }

// Degree implements Tuple.
func (t Tuple5[T1, T2, T3, T4, T5]) Degree() int { return 5 }

// Get implements Tuple.
func (t Tuple5[T1, T2, T3, T4, T5]) Get(i int) (Opt[any], error) {
	switch i {
	case 0:
		return t.e1.Any(), nil
	case 1:
		return t.e2.Any(), nil
	case 2:
		return t.e3.Any(), nil
	case 3:
		return t.e4.Any(), nil
	case 4:
		return t.e5.Any(), nil
	default:
		return Opt[any]{}, outOfRange(i, 5)
	}
}

func (t Tuple5[T1, T2, T3, T4, T5]) String() string {
	return format(t.e1.Any(), t.e2.Any(), t.e3.Any(), t.e4.Any(), t.e5.Any())
}

// Tuple6 is an immutable tuple of degree 6.
type Tuple6[T1, T2, T3, T4, T5, T6 any] struct {
	e1 Opt[T1]
	e2 Opt[T2]
	e3 Opt[T3]
	e4 Opt[T4]
	e5 Opt[T5]
	e6 Opt[T6]
}

// Of6 builds a Tuple6.
func Of6[T1, T2, T3, T4, T5, T6 any](e1 Opt[T1], e2 Opt[T2], e3 Opt[T3], e4 Opt[T4], e5 Opt[T5], e6 Opt[T6]) Tuple6[T1, T2, T3, T4, T5, T6] {
	return Tuple6[T1, T2, T3, T4, T5, T6]{e1: e1, e2: e2, e3: e3, e4: e4, e5: e5, e6: e6}
}

func (t Tuple6[T1, T2, T3, T4, T5, T6]) First() Opt[T1] { return t.e1 }

func (t Tuple6[T1, T2, T3, T4, T5, T6]) Second() Opt[T2] { return t.e2 }

func (t Tuple6[T1, T2, T3, T4, T5, T6]) Third() Opt[T3] { return t.e3 }

func (t Tuple6[T1, T2, T3, T4, T5, T6]) Fourth() Opt[T4] { return t.e4 }

func (t Tuple6[T1, T2, T3, T4, T5, T6]) Fifth() Opt[T5] { return t.e5 }

func (t Tuple6[T1, T2, T3, T4, T5, T6]) Sixth() Opt[T6] { return t.e6 }

// Degree implements Tuple.
func (t Tuple6[T1, T2, T3, T4, T5, T6]) Degree() int { return 6 }

// Get implements Tuple.
func (t Tuple6[T1, T2, T3, T4, T5, T6]) Get(i int) (Opt[any], error) {
	switch i {
	case 0:
		return t.e1.Any(), nil
	case 1:
		return t.e2.Any(), nil
	case 2:
		return t.e3.Any(), nil
	case 3:
		return t.e4.Any(), nil
	case 4:
		return t.e5.Any(), nil
	case 5:
		return t.e6.Any(), nil
	default:
		return Opt[any]{}, outOfRange(i, 6)
	}
}

func (t Tuple6[T1, T2, T3, T4, T5, T6]) String() string {
	return format(t.e1.Any(), t.e2.Any(), t.e3.Any(), t.e4.Any(), t.e5.Any(), t.e6.Any())
}
