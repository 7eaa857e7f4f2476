package table

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/joinkit/internal/ir"
)

// Field is the untyped view of a column, as used by join stage links.
type Field interface {
	// Table returns the name of the table the column belongs to.
	Table() string

	// Column returns the column name.
	Column() string

	// Extract reads the column from row. It returns false when row is not
	// a row of the field's table type.
	Extract(row any) (ir.Value, bool)

	// Type is the column type of the values Extract returns, or
	// ir.TypeUnknown when the field takes its type from the descriptor.
	Type() ir.ColumnType
}

// FieldString renders f as "table.column".
func FieldString(f Field) string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s.%s", f.Table(), f.Column())
}

// column is the part every typed field shares: where the column lives and
// how to read it as an ir.Value.
type column[T any] struct {
	table string
	name  string
	typ   ir.ColumnType
	value func(T) ir.Value
}

func (c column[T]) Table() string  { return c.table }
func (c column[T]) Column() string { return c.name }

func (c column[T]) Type() ir.ColumnType { return c.typ }

func (c column[T]) String() string { return c.table + "." + c.name }

func (c column[T]) Extract(row any) (ir.Value, bool) {
	r, ok := row.(T)
	if !ok {
		return ir.Null{}, false
	}
	return c.value(r), true
}

// Value reads the column from row.
func (c column[T]) Value(row T) ir.Value { return c.value(row) }

// Is returns a predicate "column op v", with the comparison rules of
// ir.Operator.Apply. Null never matches.
func (c column[T]) Is(op ir.Operator, v ir.Value) func(T) bool {
	return func(row T) bool { return op.Apply(c.value(row), v) }
}

// IsNull returns a predicate matching rows whose column is Null.
func (c column[T]) IsNull() func(T) bool {
	return func(row T) bool { return ir.IsNull(c.value(row)) }
}

// IsNotNull returns a predicate matching rows whose column is not Null.
func (c column[T]) IsNotNull() func(T) bool {
	return func(row T) bool { return !ir.IsNull(c.value(row)) }
}

// ComparableField is a typed, ordered column of a table with rows of type T.
type ComparableField[T any, V cmp.Ordered] struct {
	column[T]
	get  func(T) V
	wrap func(V) ir.Value
}

// IntField is an int column.
type IntField[T any] = ComparableField[T, int32]

// LongField is a long column.
type LongField[T any] = ComparableField[T, int64]

// DoubleField is a double column.
type DoubleField[T any] = ComparableField[T, float64]

func newComparable[T any, V cmp.Ordered](id Identifier[T], name string, typ ir.ColumnType, get func(T) V, wrap func(V) ir.Value) ComparableField[T, V] {
	return ComparableField[T, V]{
		column: column[T]{
			table: id.Name(),
			name:  name,
			typ:   typ,
			value: func(row T) ir.Value { return wrap(get(row)) },
		},
		get:  get,
		wrap: wrap,
	}
}

// Int declares an int column read by get.
func Int[T any](id Identifier[T], name string, get func(T) int32) IntField[T] {
	return newComparable(id, name, ir.TypeInt, get, func(v int32) ir.Value { return ir.Int(v) })
}

// Long declares a long column read by get.
func Long[T any](id Identifier[T], name string, get func(T) int64) LongField[T] {
	return newComparable(id, name, ir.TypeLong, get, func(v int64) ir.Value { return ir.Long(v) })
}

// Double declares a double column read by get.
func Double[T any](id Identifier[T], name string, get func(T) float64) DoubleField[T] {
	return newComparable(id, name, ir.TypeDouble, get, func(v float64) ir.Value { return ir.Double(v) })
}

// Get reads the column from row.
func (f ComparableField[T, V]) Get(row T) V { return f.get(row) }

// Equal matches rows whose column equals v.
func (f ComparableField[T, V]) Equal(v V) func(T) bool {
	return f.Is(ir.OpEqual, f.wrap(v))
}

// NotEqual matches rows whose column differs from v.
func (f ComparableField[T, V]) NotEqual(v V) func(T) bool {
	return f.Is(ir.OpNotEqual, f.wrap(v))
}

// LessThan matches rows whose column is below v.
func (f ComparableField[T, V]) LessThan(v V) func(T) bool {
	return f.Is(ir.OpLess, f.wrap(v))
}

// LessOrEqual matches rows whose column is at most v.
func (f ComparableField[T, V]) LessOrEqual(v V) func(T) bool {
	return f.Is(ir.OpLessOrEqual, f.wrap(v))
}

// GreaterThan matches rows whose column is above v.
func (f ComparableField[T, V]) GreaterThan(v V) func(T) bool {
	return f.Is(ir.OpGreater, f.wrap(v))
}

// GreaterOrEqual matches rows whose column is at least v.
func (f ComparableField[T, V]) GreaterOrEqual(v V) func(T) bool {
	return f.Is(ir.OpGreaterOrEqual, f.wrap(v))
}

// Between matches rows with start <= column < end.
func (f ComparableField[T, V]) Between(start, end V) func(T) bool {
	lo, hi := f.wrap(start), f.wrap(end)
	return func(row T) bool {
		v := f.value(row)
		return ir.OpGreaterOrEqual.Apply(v, lo) && ir.OpLess.Apply(v, hi)
	}
}

// In matches rows whose column equals any of vs.
func (f ComparableField[T, V]) In(vs ...V) func(T) bool {
	wrapped := make([]ir.Value, len(vs))
	for i, v := range vs {
		wrapped[i] = f.wrap(v)
	}
	return func(row T) bool {
		v := f.value(row)
		for _, w := range wrapped {
			if ir.OpEqual.Apply(v, w) {
				return true
			}
		}
		return false
	}
}

// StringField is a string column with text predicates on top of the
// ordered ones.
type StringField[T any] struct {
	ComparableField[T, string]
}

// String declares a string column read by get.
func String[T any](id Identifier[T], name string, get func(T) string) StringField[T] {
	return StringField[T]{newComparable(id, name, ir.TypeString, get, func(v string) ir.Value { return ir.String(v) })}
}

// StartsWith matches rows whose column has prefix.
func (f StringField[T]) StartsWith(prefix string) func(T) bool {
	return func(row T) bool { return strings.HasPrefix(f.get(row), prefix) }
}

// EndsWith matches rows whose column has suffix.
func (f StringField[T]) EndsWith(suffix string) func(T) bool {
	return func(row T) bool { return strings.HasSuffix(f.get(row), suffix) }
}

// Contains matches rows whose column contains substr.
func (f StringField[T]) Contains(substr string) func(T) bool {
	return func(row T) bool { return strings.Contains(f.get(row), substr) }
}

// EqualIgnoreCase matches rows whose column equals v under Unicode case
// folding.
func (f StringField[T]) EqualIgnoreCase(v string) func(T) bool {
	want := cases.Fold().String(v)
	return func(row T) bool {
		// Casers carry state; each call gets its own.
		return cases.Fold().String(f.get(row)) == want
	}
}

// IsEmpty matches rows whose column is the empty string.
func (f StringField[T]) IsEmpty() func(T) bool {
	return func(row T) bool { return f.get(row) == "" }
}

// BoolField is a bool column. Booleans are unordered.
type BoolField[T any] struct {
	column[T]
	get func(T) bool
}

// Bool declares a bool column read by get.
func Bool[T any](id Identifier[T], name string, get func(T) bool) BoolField[T] {
	return BoolField[T]{
		column: column[T]{
			table: id.Name(),
			name:  name,
			typ:   ir.TypeBool,
			value: func(row T) ir.Value { return ir.Bool(get(row)) },
		},
		get: get,
	}
}

// Get reads the column from row.
func (f BoolField[T]) Get(row T) bool { return f.get(row) }

// IsTrue matches rows whose column is true.
func (f BoolField[T]) IsTrue() func(T) bool {
	return func(row T) bool { return f.get(row) }
}

// IsFalse matches rows whose column is false.
func (f BoolField[T]) IsFalse() func(T) bool {
	return func(row T) bool { return !f.get(row) }
}

// RecordField is a column of a schema-driven table whose rows are
// ir.Record values. Its type comes from the table descriptor.
type RecordField struct {
	column[ir.Record]
}

// Col declares column name of a record table.
func Col(id Identifier[ir.Record], name string) RecordField {
	return RecordField{column[ir.Record]{
		table: id.Name(),
		name:  name,
		value: func(row ir.Record) ir.Value { return row.Get(name) },
	}}
}

// ColumnOf declares a record column by table name. Query files use it,
// where tables are only known by name.
func ColumnOf(table, name string) RecordField {
	return Col(ID[ir.Record](table), name)
}
