package join

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/stream"
)

// absentRow fills a table position that has no row: the missing side of
// an outer join, or a position not reached yet.
type absentRow struct{}

// combo holds one row (or absentRow) per table position.
type combo []any

func newCombo(degree, pos int, row any) combo {
	c := make(combo, degree)
	for i := range c {
		c[i] = absentRow{}
	}
	c[pos] = row
	return c
}

// with returns a copy of c with row at pos. Emitted combos are never
// modified afterwards.
func (c combo) with(pos int, row any) combo {
	out := slices.Clone(c)
	out[pos] = row
	return out
}

// input opens the rows of one table position, with its per-table pipeline
// already applied.
type input struct {
	table    string
	pipeline string
	open     func(ctx context.Context) stream.Seq[any]
}

// realization is the mutable state of one range over a join. Nothing in it
// is shared with other realizations.
type realization struct {
	ctx    context.Context
	plan   *Plan
	inputs []input
	id     string
	log    *slog.Logger
}

// rows reads table position pos, turning source errors into
// SOURCE_READ_FAILURE.
func (r *realization) rows(pos int) stream.Seq[any] {
	in := r.inputs[pos]
	return func(yield func(any, error) bool) {
		for row, err := range in.open(r.ctx) {
			if err != nil {
				yield(nil, sourceFailure(in.table, err))
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func sourceFailure(table string, err error) error {
	if ir.IsSourceReadFailure(err) {
		return err
	}
	return ir.NewSourceReadFailure(table, err)
}

// combos streams the fully joined combinations.
func (r *realization) combos() stream.Seq[combo] {
	degree := r.plan.Degree()
	var seq stream.Seq[combo] = stream.MapTo(r.rows(0), func(row any) combo {
		return newCombo(degree, 0, row)
	})
	for i := range r.plan.Nodes {
		n := &r.plan.Nodes[i]
		r.log.Debug("stage realized",
			"realization", r.id,
			"stage", n.Stage,
			"table", n.Table,
			"kind", n.Kind.String(),
			"strategy", n.Strategy.String(),
			"build", n.Build.String(),
		)
		seq = r.stage(n, seq)
	}
	return seq
}

func (r *realization) stage(n *Node, left stream.Seq[combo]) stream.Seq[combo] {
	switch {
	case n.Strategy == StrategyIndexed && n.Build == BuildExisting:
		return r.indexExisting(n, left)
	case n.Strategy == StrategyIndexed:
		return r.indexNew(n, left)
	default:
		return r.nestedLoop(n, left)
	}
}

// nestedLoop tests every left combination against every row of the
// stage's table, reading the table afresh for each combination. A RIGHT
// join keeps only the ordinals of matched rows and emits the others on a
// final read.
func (r *realization) nestedLoop(n *Node, left stream.Seq[combo]) stream.Seq[combo] {
	return func(yield func(combo, error) bool) {
		var matched []bool
		mark := func(i int) {
			if i >= len(matched) {
				matched = append(matched, make([]bool, i+1-len(matched))...)
			}
			matched[i] = true
		}

		for c, err := range left {
			if err != nil {
				yield(nil, err)
				return
			}

			found := false
			i := -1
			for row, err := range r.rows(n.Position) {
				if err != nil {
					yield(nil, err)
					return
				}
				i++
				if !matches(n, c, row) {
					continue
				}
				found = true
				if n.Kind == stage.Right {
					mark(i)
				}
				if !yield(c.with(n.Position, row), nil) {
					return
				}
			}
			if !found && n.Kind == stage.Left {
				if !yield(c.with(n.Position, absentRow{}), nil) {
					return
				}
			}
		}

		if n.Kind != stage.Right {
			return
		}
		i := -1
		for row, err := range r.rows(n.Position) {
			if err != nil {
				yield(nil, err)
				return
			}
			i++
			if i < len(matched) && matched[i] {
				continue
			}
			if !yield(newCombo(r.plan.Degree(), n.Position, row), nil) {
				return
			}
		}
	}
}

// indexNew indexes the stage's table and looks up each left
// combination as it arrives.
func (r *realization) indexNew(n *Node, left stream.Seq[combo]) stream.Seq[combo] {
	keys := n.keyLinks()
	return func(yield func(combo, error) bool) {
		var (
			idx     *keyIndex[any]
			matched []bool
		)
		build := func() error {
			rows, err := stream.Collect(r.rows(n.Position))
			if err != nil {
				return err
			}
			idx = buildIndex(rows, func(buf []byte, row any) ([]byte, bool) {
				return newKey(buf, keys, row)
			})
			if n.Kind == stage.Right {
				matched = make([]bool, len(rows))
			}
			r.log.Debug("index built",
				"realization", r.id,
				"stage", n.Stage,
				"table", n.Table,
				"rows", len(rows),
				"keys", len(idx.buckets),
			)
			return nil
		}

		var buf []byte
		for c, err := range left {
			if err != nil {
				yield(nil, err)
				return
			}
			if idx == nil {
				if err := build(); err != nil {
					yield(nil, err)
					return
				}
			}

			found := false
			var ok bool
			buf, ok = existingKey(buf[:0], keys, c)
			if ok {
				for _, i := range idx.lookup(buf) {
					row := idx.entries[i]
					if !matches(n, c, row) {
						continue
					}
					found = true
					if matched != nil {
						matched[i] = true
					}
					if !yield(c.with(n.Position, row), nil) {
						return
					}
				}
			}
			if !found && n.Kind == stage.Left {
				if !yield(c.with(n.Position, absentRow{}), nil) {
					return
				}
			}
		}

		if n.Kind != stage.Right {
			return
		}
		if idx == nil {
			if err := build(); err != nil {
				yield(nil, err)
				return
			}
		}
		for i, row := range idx.entries {
			if matched[i] {
				continue
			}
			if !yield(newCombo(r.plan.Degree(), n.Position, row), nil) {
				return
			}
		}
	}
}

// indexExisting indexes the accumulated left combinations and looks up
// each row of the stage's table.
func (r *realization) indexExisting(n *Node, left stream.Seq[combo]) stream.Seq[combo] {
	keys := n.keyLinks()
	return func(yield func(combo, error) bool) {
		combos, err := stream.Collect(left)
		if err != nil {
			yield(nil, err)
			return
		}
		idx := buildIndex(combos, func(buf []byte, c combo) ([]byte, bool) {
			return existingKey(buf, keys, c)
		})
		r.log.Debug("index built",
			"realization", r.id,
			"stage", n.Stage,
			"table", n.Table,
			"combinations", len(combos),
			"keys", len(idx.buckets),
		)

		var matched []bool
		if n.Kind == stage.Left {
			matched = make([]bool, len(combos))
		}

		var buf []byte
		for row, err := range r.rows(n.Position) {
			if err != nil {
				yield(nil, err)
				return
			}

			found := false
			var ok bool
			buf, ok = newKey(buf[:0], keys, row)
			if ok {
				for _, i := range idx.lookup(buf) {
					c := idx.entries[i]
					if !matches(n, c, row) {
						continue
					}
					found = true
					if matched != nil {
						matched[i] = true
					}
					if !yield(c.with(n.Position, row), nil) {
						return
					}
				}
			}
			if !found && n.Kind == stage.Right {
				if !yield(newCombo(r.plan.Degree(), n.Position, row), nil) {
					return
				}
			}
		}

		if n.Kind != stage.Left {
			return
		}
		for i, c := range combos {
			if matched[i] {
				continue
			}
			if !yield(c.with(n.Position, absentRow{}), nil) {
				return
			}
		}
	}
}

// matches reports whether every link of n holds between c and row.
// A stage without links matches everything.
func matches(n *Node, c combo, row any) bool {
	for _, l := range n.Links {
		if !l.Op.Apply(fieldValue(l.Existing, c[l.ExistingPos]), fieldValue(l.New, row)) {
			return false
		}
	}
	return true
}

func existingKey(buf []byte, keys []ResolvedLink, c combo) ([]byte, bool) {
	return appendKey(buf, keys, func(l ResolvedLink) ir.Value {
		return fieldValue(l.Existing, c[l.ExistingPos])
	})
}

func newKey(buf []byte, keys []ResolvedLink, row any) ([]byte, bool) {
	return appendKey(buf, keys, func(l ResolvedLink) ir.Value {
		return fieldValue(l.New, row)
	})
}
