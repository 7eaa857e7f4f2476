// Package query reads declarative join queries from YAML files and turns
// them into stages, per-table filters and a result pipeline over record
// tables.
//
// Example:
//
//	name: orders per user
//	from: users
//	where:
//	  orders:
//	    - {column: amount, op: ">=", value: 10}
//	stages:
//	  - table: orders
//	    kind: left
//	    on:
//	      - {left: users.id, op: "=", right: orders.user_id}
//	order_by: [users.id, orders.amount desc]
//	limit: 20
package query

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stage"
)

// Query is one join query file.
type Query struct {
	// Name labels the query in output. Optional.
	Name string `yaml:"name,omitempty"`

	// From is the anchor table.
	From string `yaml:"from"`

	// Stages join further tables in order.
	Stages []Stage `yaml:"stages"`

	// Where filters rows of individual tables before they are joined.
	// Conditions on one table are combined with AND.
	Where map[string][]Condition `yaml:"where,omitempty"`

	// OrderBy sorts the joined tuples. Each entry is "table.column",
	// optionally followed by "asc" or "desc".
	OrderBy []string `yaml:"order_by,omitempty"`

	// Skip and Limit page through the (sorted) tuples.
	Skip  int64  `yaml:"skip,omitempty"`
	Limit *int64 `yaml:"limit,omitempty"`

	// Strategy forces a join strategy: auto, nested-loop or indexed.
	Strategy string `yaml:"strategy,omitempty"`
}

// Stage is one join step of a query file.
type Stage struct {
	Table string `yaml:"table"`
	Kind  string `yaml:"kind,omitempty"`
	On    []Link `yaml:"on,omitempty"`
}

// Link compares a column of an earlier table (Left) with a column of the
// stage's table (Right). Op defaults to "=".
type Link struct {
	Left  string `yaml:"left"`
	Op    string `yaml:"op,omitempty"`
	Right string `yaml:"right"`
}

// Condition is a row filter on one column.
//
// Op is a comparison operator, or "is null" / "is not null" in which case
// Value is ignored.
type Condition struct {
	Column string `yaml:"column"`
	Op     string `yaml:"op"`
	Value  any    `yaml:"value,omitempty"`
}

// Load reads and parses a query file.
func Load(path string) (*Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return Parse(data)
}

// Parse parses a query document. Unknown fields are rejected so typos
// surface instead of being ignored.
func Parse(data []byte) (*Query, error) {
	var q Query
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&q); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := q.validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return &q, nil
}

// validate checks the document shape. Table and column references are
// resolved later, against a catalog, by the join compiler.
func (q *Query) validate() error {
	if q.From == "" {
		return fmt.Errorf("from is required")
	}
	if q.Skip < 0 {
		return fmt.Errorf("skip must be non-negative, got %d", q.Skip)
	}
	if q.Limit != nil && *q.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", *q.Limit)
	}

	for i, s := range q.Stages {
		if s.Table == "" {
			return fmt.Errorf("stages[%d]: table is required", i)
		}
		if _, err := s.kind(); err != nil {
			return fmt.Errorf("stages[%d]: %w", i, err)
		}
		for j, l := range s.On {
			if _, _, err := splitRef(l.Left); err != nil {
				return fmt.Errorf("stages[%d].on[%d].left: %w", i, j, err)
			}
			if _, _, err := splitRef(l.Right); err != nil {
				return fmt.Errorf("stages[%d].on[%d].right: %w", i, j, err)
			}
			if _, err := l.operator(); err != nil {
				return fmt.Errorf("stages[%d].on[%d]: %w", i, j, err)
			}
		}
	}

	for name, conds := range q.Where {
		for j, c := range conds {
			if c.Column == "" {
				return fmt.Errorf("where.%s[%d]: column is required", name, j)
			}
			if _, err := c.predicate(name); err != nil {
				return fmt.Errorf("where.%s[%d]: %w", name, j, err)
			}
		}
	}

	for i, o := range q.OrderBy {
		if _, err := parseOrder(o); err != nil {
			return fmt.Errorf("order_by[%d]: %w", i, err)
		}
	}

	return nil
}

// Tables lists the joined tables in position order.
func (q *Query) Tables() []string {
	tables := make([]string, 0, len(q.Stages)+1)
	tables = append(tables, q.From)
	for _, s := range q.Stages {
		tables = append(tables, s.Table)
	}
	return tables
}

// kind parses the join kind. An empty kind means INNER.
func (s Stage) kind() (stage.JoinKind, error) {
	if strings.TrimSpace(s.Kind) == "" {
		return stage.Inner, nil
	}
	return stage.ParseJoinKind(s.Kind)
}

func (l Link) operator() (ir.Operator, error) {
	if l.Op == "" {
		return ir.OpEqual, nil
	}
	return ir.ParseOperator(l.Op)
}

// splitRef splits "table.column".
func splitRef(ref string) (string, string, error) {
	tbl, col, ok := strings.Cut(strings.TrimSpace(ref), ".")
	if !ok || tbl == "" || col == "" {
		return "", "", fmt.Errorf("column reference %q must be table.column", ref)
	}
	return tbl, col, nil
}

// String renders the condition as "amount >= 10" or "name is null".
func (c Condition) String() string {
	if isNullCheck(c.Op) {
		return c.Column + " " + normalizeOp(c.Op)
	}
	v, err := ir.FromAny(c.Value)
	if err != nil {
		return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Value)
	}
	op, err := ir.ParseOperator(c.Op)
	if err != nil {
		return fmt.Sprintf("%s %s %s", c.Column, c.Op, ir.Format(v))
	}
	return fmt.Sprintf("%s %s %s", c.Column, op.Symbol(), ir.Format(v))
}

// Filters renders the where conditions of each table, joined with AND.
func (q *Query) Filters() map[string]string {
	if len(q.Where) == 0 {
		return nil
	}
	out := make(map[string]string, len(q.Where))
	for name, conds := range q.Where {
		parts := make([]string, len(conds))
		for i, c := range conds {
			parts[i] = c.String()
		}
		out[name] = strings.Join(parts, " AND ")
	}
	return out
}
