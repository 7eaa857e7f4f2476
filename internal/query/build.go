package query

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/join"
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/table"
	"github.com/roach88/joinkit/internal/tuple"
)

// Result is one joined tuple: a record per table, absent where an outer
// join found no partner.
type Result = tuple.List[ir.Record]

// Build translates the query's stages. Links are rendered as record
// columns; whether they resolve is decided by the join compiler.
func (q *Query) Build() []stage.Stage {
	stages := make([]stage.Stage, len(q.Stages))
	for i, s := range q.Stages {
		kind, _ := s.kind()
		links := make([]stage.Link, len(s.On))
		for j, l := range s.On {
			lt, lc, _ := splitRef(l.Left)
			rt, rc, _ := splitRef(l.Right)
			op, _ := l.operator()
			links[j] = stage.On(table.ColumnOf(lt, lc), op, table.ColumnOf(rt, rc))
		}
		stages[i] = stage.New(kind, s.Table, links...)
	}
	return stages
}

// Options returns the join options the query asks for: its strategy and a
// filter pipeline per table listed under where.
func (q *Query) Options() ([]join.Option, error) {
	var opts []join.Option
	if q.Strategy != "" {
		s, err := join.ParseStrategy(q.Strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, join.WithStrategy(s))
	}

	for _, name := range sortedKeys(q.Where) {
		p := stream.New[ir.Record]()
		for _, c := range q.Where[name] {
			pred, err := c.predicate(name)
			if err != nil {
				return nil, fmt.Errorf("where.%s: %w", name, err)
			}
			p = p.Filter(pred)
		}
		opts = append(opts, join.Where(table.ID[ir.Record](name), p))
	}
	return opts, nil
}

// Pipeline returns the actions applied to joined tuples: ordering, then
// skip and limit.
func (q *Query) Pipeline() (stream.Pipeline[Result], error) {
	p := stream.New[Result]()

	if len(q.OrderBy) > 0 {
		positions := make(map[string]int)
		for i, t := range q.Tables() {
			positions[t] = i
		}
		keys := make([]orderKey, len(q.OrderBy))
		for i, o := range q.OrderBy {
			k, err := parseOrder(o)
			if err != nil {
				return p, err
			}
			pos, ok := positions[k.table]
			if !ok {
				return p, ir.Errorf(ir.ErrCodeInvalidArgument, "order_by: table %s is not joined", k.table)
			}
			k.pos = pos
			keys[i] = k
		}
		p = p.Sorted(func(a, b Result) int { return compareResults(keys, a, b) })
	}

	var err error
	if q.Skip > 0 {
		if p, err = p.Skip(q.Skip); err != nil {
			return p, err
		}
	}
	if q.Limit != nil {
		if p, err = p.Limit(*q.Limit); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Plan validates the query against meta without binding row sources.
// Filter and ordering columns are checked as well.
func (q *Query) Plan(meta table.Metadata, opts ...join.Option) (*join.Plan, error) {
	qopts, err := q.Options()
	if err != nil {
		return nil, err
	}
	opts = append(qopts, opts...)
	plan, err := join.NewCompiler(meta, nil, opts...).Compile(q.Build(), q.Tables())
	if err != nil {
		return nil, err
	}
	if err := q.checkFilters(meta); err != nil {
		return nil, err
	}
	if _, err := q.Pipeline(); err != nil {
		return nil, err
	}
	return plan, nil
}

// checkFilters resolves every where and order_by column against meta.
func (q *Query) checkFilters(meta table.Metadata) error {
	tables := q.Tables()
	for _, name := range sortedKeys(q.Where) {
		if !slices.Contains(tables, name) {
			return ir.Errorf(ir.ErrCodeInvalidArgument, "where: table %s is not joined", name)
		}
		for _, c := range q.Where[name] {
			typ, ok := meta.Column(name, c.Column)
			if !ok {
				return ir.Errorf(ir.ErrCodeUnresolvedTableReference, "where: unknown column %s.%s", name, c.Column)
			}
			if isNullCheck(c.Op) {
				continue
			}
			op, _ := ir.ParseOperator(c.Op)
			v, _ := ir.FromAny(c.Value)
			if vt := ir.TypeOf(v); !op.Supports(typ, vt) {
				return ir.Errorf(ir.ErrCodeIncompatibleComparison,
					"where: %s.%s (%s) %s %s", name, c.Column, typ, op.Symbol(), vt)
			}
		}
	}
	for _, o := range q.OrderBy {
		k, _ := parseOrder(o)
		if _, ok := meta.Column(k.table, k.column); !ok {
			return ir.Errorf(ir.ErrCodeUnresolvedTableReference, "order_by: unknown column %s.%s", k.table, k.column)
		}
	}
	return nil
}

// Join compiles the query into a record join bound to the registry's
// sources.
func (q *Query) Join(reg *table.Registry, opts ...join.Option) (*join.Join[Result], error) {
	qopts, err := q.Options()
	if err != nil {
		return nil, err
	}
	ids := make([]table.Identifier[ir.Record], 0, len(q.Stages)+1)
	for _, t := range q.Tables() {
		ids = append(ids, table.ID[ir.Record](t))
	}
	return join.CreateRecords(join.ForRegistry(reg), q.Build(), ids, append(qopts, opts...)...)
}

// Run compiles the query and streams its result through the query's
// pipeline.
func (q *Query) Run(ctx context.Context, reg *table.Registry, opts ...join.Option) (stream.Seq[Result], error) {
	j, err := q.Join(reg, opts...)
	if err != nil {
		return nil, err
	}
	p, err := q.Pipeline()
	if err != nil {
		return nil, err
	}
	return j.Stream(ctx, p), nil
}

// predicate builds the row filter for a condition on table name.
func (c Condition) predicate(name string) (func(ir.Record) bool, error) {
	f := table.ColumnOf(name, c.Column)
	switch normalizeOp(c.Op) {
	case "is null":
		return f.IsNull(), nil
	case "is not null":
		return f.IsNotNull(), nil
	}

	op, err := ir.ParseOperator(c.Op)
	if err != nil {
		return nil, err
	}
	v, err := ir.FromAny(c.Value)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", c.Column, err)
	}
	if ir.IsNull(v) {
		return nil, fmt.Errorf("column %s: value is required for %s, use \"is null\" to match nulls", c.Column, op.Symbol())
	}
	return f.Is(op, v), nil
}

func normalizeOp(op string) string {
	return strings.ToLower(strings.Join(strings.Fields(op), " "))
}

func isNullCheck(op string) bool {
	norm := normalizeOp(op)
	return norm == "is null" || norm == "is not null"
}

type orderKey struct {
	table  string
	column string
	desc   bool
	pos    int
}

func parseOrder(s string) (orderKey, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return orderKey{}, fmt.Errorf("order %q must be \"table.column [asc|desc]\"", s)
	}
	tbl, col, err := splitRef(fields[0])
	if err != nil {
		return orderKey{}, err
	}
	k := orderKey{table: tbl, column: col}
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "asc":
		case "desc":
			k.desc = true
		default:
			return orderKey{}, fmt.Errorf("order %q: direction must be asc or desc", s)
		}
	}
	return k, nil
}

// compareResults orders by each key in turn. Absent rows and Null values
// sort first.
func compareResults(keys []orderKey, a, b Result) int {
	for _, k := range keys {
		c := compareValues(orderValue(a, k), orderValue(b, k))
		if k.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func orderValue(r Result, k orderKey) ir.Value {
	rec, ok := r.At(k.pos).Get()
	if !ok {
		return ir.Null{}
	}
	return rec.Get(k.column)
}

func compareValues(a, b ir.Value) int {
	an, bn := ir.IsNull(a), ir.IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	c, ok := ir.Compare(a, b)
	if !ok {
		return strings.Compare(ir.Format(a), ir.Format(b))
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
