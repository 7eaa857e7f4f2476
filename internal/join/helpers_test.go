package join

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/table"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type rowA struct {
	ID   int32
	Name string
}

type rowB struct {
	ID  int32
	Tag string
}

var (
	tableA = table.ID[rowA]("a")
	tableB = table.ID[rowB]("b")

	aID   = table.Int(tableA, "id", func(r rowA) int32 { return r.ID })
	aName = table.String(tableA, "name", func(r rowA) string { return r.Name })
	bID   = table.Int(tableB, "id", func(r rowB) int32 { return r.ID })
	bTag  = table.String(tableB, "tag", func(r rowB) string { return r.Tag })
)

func descA() table.Descriptor {
	return table.Descriptor{
		Name:    "a",
		Columns: []table.Column{{Name: "id", Type: ir.TypeInt}, {Name: "name", Type: ir.TypeString}},
	}
}

func descB() table.Descriptor {
	return table.Descriptor{
		Name:    "b",
		Columns: []table.Column{{Name: "id", Type: ir.TypeInt}, {Name: "tag", Type: ir.TypeString}},
	}
}

// abRegistry registers tables a and b with the rows used by the join
// examples: A = {(1,"x"),(2,"y")}, B = {(1,"p"),(3,"q")}.
func abRegistry(t *testing.T) *table.Registry {
	t.Helper()
	return abRegistryWith(t,
		table.FromSlice([]rowA{{1, "x"}, {2, "y"}}),
		table.FromSlice([]rowB{{1, "p"}, {3, "q"}}),
	)
}

func abRegistryWith(t *testing.T, a table.Source[rowA], b table.Source[rowB]) *table.Registry {
	t.Helper()
	reg := table.NewRegistry()
	require.NoError(t, table.Register(reg, tableA, descA(), a))
	require.NoError(t, table.Register(reg, tableB, descB(), b))
	return reg
}

// failingSource yields rows and then fails with err.
type failingSource[T any] struct {
	rows []T
	err  error
}

func (s failingSource[T]) Rows(context.Context) stream.Seq[T] {
	return func(yield func(T, error) bool) {
		for _, r := range s.rows {
			if !yield(r, nil) {
				return
			}
		}
		var zero T
		yield(zero, s.err)
	}
}

// countingSource counts how often it is opened and how many rows it hands
// out.
type countingSource[T any] struct {
	rows   []T
	opened int
	pulled int
}

func (s *countingSource[T]) Rows(context.Context) stream.Seq[T] {
	s.opened++
	return func(yield func(T, error) bool) {
		for _, r := range s.rows {
			s.pulled++
			if !yield(r, nil) {
				return
			}
		}
	}
}

// collectStrings drains seq and renders every element with %v.
func collectStrings[T any](t *testing.T, seq stream.Seq[T]) []string {
	t.Helper()
	items, err := stream.Collect(seq)
	require.NoError(t, err)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = fmt.Sprintf("%v", it)
	}
	return out
}

func sorted(xs []string) []string {
	out := slices.Clone(xs)
	slices.Sort(out)
	return out
}

// recordTable describes a record table with the given columns and hint.
func recordTable(name string, hint int64, cols ...table.Column) table.Descriptor {
	return table.Descriptor{Name: name, Columns: cols, SizeHint: hint}
}

func col(name string, typ ir.ColumnType) table.Column {
	return table.Column{Name: name, Type: typ}
}

func registerRecords(t *testing.T, reg *table.Registry, desc table.Descriptor, rows ...ir.Record) table.Identifier[ir.Record] {
	t.Helper()
	id := table.ID[ir.Record](desc.Name)
	require.NoError(t, table.Register(reg, id, desc, table.FromSlice(rows)))
	return id
}
