package tuple

// List is a tuple whose degree is only known at run time. Record-typed
// joins produce it.
type List[T any] []Opt[T]

// Degree implements Tuple.
func (l List[T]) Degree() int { return len(l) }

// Get implements Tuple.
func (l List[T]) Get(i int) (Opt[any], error) {
	if i < 0 || i >= len(l) {
		return Opt[any]{}, outOfRange(i, len(l))
	}
	return l[i].Any(), nil
}

// At returns element i with its static type. It panics when i is out of
// range, like a slice index.
func (l List[T]) At(i int) Opt[T] { return l[i] }

func (l List[T]) String() string {
	elems := make([]Opt[any], len(l))
	for i, e := range l {
		elems[i] = e.Any()
	}
	return format(elems...)
}
