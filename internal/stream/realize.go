package stream

import (
	"iter"
	"slices"
)

// apply wraps in with the behavior of a. State for stateful actions is
// allocated inside the returned sequence, so every range over it starts
// from scratch.
//
// An upstream error is forwarded as-is and ends the sequence.
func apply[T any](a Action[T], in Seq[T]) Seq[T] {
	switch a.op {
	case OpSkip:
		return skipSeq(in, a.count)
	case OpLimit:
		return limitSeq(in, a.count)
	case OpFilter:
		return filterSeq(in, a.pred)
	case OpMap:
		return mapSeq(in, a.fn)
	case OpSorted:
		return sortedSeq(in, a.cmp)
	case OpDistinct:
		return a.dedup(in)
	case OpPeek:
		return peekSeq(in, a.peek)
	case OpFlatMap:
		return flatMapSeq(in, a.flat)
	default:
		return in
	}
}

func skipSeq[T any](in Seq[T], n int64) Seq[T] {
	return func(yield func(T, error) bool) {
		var skipped int64
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			if skipped < n {
				skipped++
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func limitSeq[T any](in Seq[T], n int64) Seq[T] {
	return func(yield func(T, error) bool) {
		if n == 0 {
			return
		}
		var taken int64
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			taken++
			if !yield(v, nil) || taken >= n {
				return
			}
		}
	}
}

func filterSeq[T any](in Seq[T], pred func(T) bool) Seq[T] {
	return func(yield func(T, error) bool) {
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			if !pred(v) {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func mapSeq[T any](in Seq[T], fn func(T) T) Seq[T] {
	return func(yield func(T, error) bool) {
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			if !yield(fn(v), nil) {
				return
			}
		}
	}
}

func peekSeq[T any](in Seq[T], fn func(T)) Seq[T] {
	return func(yield func(T, error) bool) {
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			fn(v)
			if !yield(v, nil) {
				return
			}
		}
	}
}

func sortedSeq[T any](in Seq[T], cmp func(a, b T) int) Seq[T] {
	return func(yield func(T, error) bool) {
		var buf []T
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			buf = append(buf, v)
		}
		slices.SortStableFunc(buf, cmp)
		for _, v := range buf {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// distinctSeq keys its set by K, so int, long and double elements are
// stored unboxed.
func distinctSeq[T any, K comparable](in Seq[T], key func(T) K) Seq[T] {
	return func(yield func(T, error) bool) {
		seen := make(map[K]struct{})
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func flatMapSeq[T any](in Seq[T], fn func(T) iter.Seq[T]) Seq[T] {
	return func(yield func(T, error) bool) {
		for v, err := range in {
			if err != nil {
				yield(v, err)
				return
			}
			for w := range fn(v) {
				if !yield(w, nil) {
					return
				}
			}
		}
	}
}
