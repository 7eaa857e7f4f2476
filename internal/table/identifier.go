package table

import (
	"context"

	"github.com/roach88/joinkit/internal/stream"
)

// Identifier names a table whose rows have Go type T.
type Identifier[T any] struct {
	name string
}

// ID returns the identifier of table name.
func ID[T any](name string) Identifier[T] {
	return Identifier[T]{name: name}
}

// Name returns the table name.
func (id Identifier[T]) Name() string { return id.name }

func (id Identifier[T]) String() string { return id.name }

// Source streams the rows of one table.
//
// Rows must be restartable: every call starts a fresh read, and the
// returned sequence reads nothing until it is ranged over. A read failure
// is reported as the final element of the sequence.
type Source[T any] interface {
	Rows(ctx context.Context) stream.Seq[T]
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context) stream.Seq[T]

// Rows implements Source.
func (f SourceFunc[T]) Rows(ctx context.Context) stream.Seq[T] { return f(ctx) }

// SliceSource serves rows from memory.
type SliceSource[T any] struct {
	rows []T
}

// FromSlice returns a Source over rows. The slice is copied.
func FromSlice[T any](rows []T) *SliceSource[T] {
	return &SliceSource[T]{rows: append([]T(nil), rows...)}
}

// Rows implements Source.
func (s *SliceSource[T]) Rows(context.Context) stream.Seq[T] {
	return stream.FromSlice(s.rows)
}

// Len returns the number of rows held.
func (s *SliceSource[T]) Len() int { return len(s.rows) }
