package stream

import (
	"iter"
)

// Seq is a lazy, restartable sequence of T in which a non-nil error is the
// final element. Every producer and consumer in this module uses it.
type Seq[T any] = iter.Seq2[T, error]

// FromSlice returns a sequence over xs. The slice is not copied.
func FromSlice[T any](xs []T) Seq[T] {
	return func(yield func(T, error) bool) {
		for _, v := range xs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// FromSeq adapts an infallible iterator.
func FromSeq[T any](seq iter.Seq[T]) Seq[T] {
	return func(yield func(T, error) bool) {
		for v := range seq {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Fail returns a sequence whose only element is err.
func Fail[T any](err error) Seq[T] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Collect drains seq. On error it returns the elements read so far along
// with the error.
func Collect[T any](seq Seq[T]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Count drains seq and returns the number of elements.
func Count[T any](seq Seq[T]) (int64, error) {
	var n int64
	for _, err := range seq {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// MapTo converts every element with fn. Use it to move between pipelines of
// different element types, e.g. from tuples to a projected column.
func MapTo[T, U any](seq Seq[T], fn func(T) U) Seq[U] {
	return func(yield func(U, error) bool) {
		for v, err := range seq {
			if err != nil {
				var zero U
				yield(zero, err)
				return
			}
			if !yield(fn(v), nil) {
				return
			}
		}
	}
}

// MapToInt converts to an unboxed int sequence.
func MapToInt[T any](seq Seq[T], fn func(T) int32) Seq[int32] {
	return MapTo(seq, fn)
}

// MapToLong converts to an unboxed long sequence.
func MapToLong[T any](seq Seq[T], fn func(T) int64) Seq[int64] {
	return MapTo(seq, fn)
}

// MapToDouble converts to an unboxed double sequence.
func MapToDouble[T any](seq Seq[T], fn func(T) float64) Seq[float64] {
	return MapTo(seq, fn)
}
