// Package stage declares the steps of a multi-table join.
//
// A Stage introduces one table into the join and says how its rows relate
// to rows of tables introduced by earlier stages. Stages are plain values;
// validation against table metadata happens in the join compiler.
package stage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/table"
)

// JoinKind selects how unmatched rows are treated.
type JoinKind int

const (
	Inner JoinKind = iota + 1
	Left
	Right
	Cross
)

var joinKindNames = map[JoinKind]string{
	Inner: "INNER",
	Left:  "LEFT",
	Right: "RIGHT",
	Cross: "CROSS",
}

// String implements fmt.Stringer.
func (k JoinKind) String() string {
	if name, ok := joinKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("JoinKind(%d)", int(k))
}

// Valid reports whether k is one of the four join kinds.
func (k JoinKind) Valid() bool {
	_, ok := joinKindNames[k]
	return ok
}

// ParseJoinKind parses "inner", "LEFT", ... case-insensitively.
func ParseJoinKind(s string) (JoinKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range joinKindNames {
		if name == upper {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown join kind %q", s)
}

// Link is one predicate "existing op new" between a column of a table
// already in the join and a column of the stage's table.
type Link struct {
	Existing table.Field
	Op       ir.Operator
	New      table.Field
}

// On builds a link.
func On(existing table.Field, op ir.Operator, newField table.Field) Link {
	return Link{Existing: existing, Op: op, New: newField}
}

// Equal builds an equality link.
func Equal(existing, newField table.Field) Link {
	return On(existing, ir.OpEqual, newField)
}

func (l Link) String() string {
	return fmt.Sprintf("%s %s %s", table.FieldString(l.Existing), l.Op.Symbol(), table.FieldString(l.New))
}

// Stage introduces Table into a join.
type Stage struct {
	Table string
	Kind  JoinKind
	Links []Link
}

// New returns a stage of any kind. The links slice is copied.
func New(kind JoinKind, tableName string, links ...Link) Stage {
	return Stage{Table: tableName, Kind: kind, Links: slices.Clone(links)}
}

// InnerJoin keeps only combinations where every link holds.
func InnerJoin[T any](id table.Identifier[T], links ...Link) Stage {
	return New(Inner, id.Name(), links...)
}

// LeftJoin keeps every existing combination; those without a match get
// an absent element for this stage's table.
func LeftJoin[T any](id table.Identifier[T], links ...Link) Stage {
	return New(Left, id.Name(), links...)
}

// RightJoin keeps every row of this stage's table; rows without a match get
// absent elements for all earlier tables.
func RightJoin[T any](id table.Identifier[T], links ...Link) Stage {
	return New(Right, id.Name(), links...)
}

// CrossJoin pairs every existing combination with every row.
func CrossJoin[T any](id table.Identifier[T]) Stage {
	return New(Cross, id.Name())
}

// HasEquality reports whether any link uses OpEqual.
func (s Stage) HasEquality() bool {
	return slices.ContainsFunc(s.Links, func(l Link) bool { return l.Op.IsEquality() })
}

// String renders the stage SQL-style, e.g.
// "LEFT JOIN orders ON users.id = orders.user_id".
func (s Stage) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s JOIN %s", s.Kind, s.Table)
	for i, l := range s.Links {
		if i == 0 {
			b.WriteString(" ON ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(l.String())
	}
	return b.String()
}
