package join

import (
	"context"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/table"
	"github.com/roach88/joinkit/internal/tuple"
)

// Join is a compiled join bound to row sources and a tuple constructor.
//
// A Join is immutable and safe to realize from several goroutines at
// once; each realization reads its sources independently.
type Join[T any] struct {
	plan   *Plan
	inputs []input
	build  func(c combo) T
	cfg    config
}

// Plan returns the validated plan.
func (j *Join[T]) Plan() *Plan { return j.plan }

// Pipelines returns the per-table pipeline descriptions, by position.
func (j *Join[T]) Pipelines() []string {
	out := make([]string, len(j.inputs))
	for i, in := range j.inputs {
		out[i] = in.pipeline
	}
	return out
}

// Seq returns the joined tuples as a lazy sequence. Each range over it
// re-reads every source; ctx is passed to the sources and is otherwise
// unused. A source failure ends the sequence with SOURCE_READ_FAILURE
// after the tuples already produced.
func (j *Join[T]) Seq(ctx context.Context) stream.Seq[T] {
	return func(yield func(T, error) bool) {
		r := &realization{
			ctx:    ctx,
			plan:   j.plan,
			inputs: j.inputs,
			id:     j.cfg.ids(),
			log:    j.cfg.log(),
		}
		r.log.Debug("join realization started", "realization", r.id, "tables", j.plan.Tables)

		var produced int64
		for c, err := range r.combos() {
			if err != nil {
				r.log.Debug("join realization failed", "realization", r.id, "tuples", produced, "error", err)
				var zero T
				yield(zero, err)
				return
			}
			produced++
			if !yield(j.build(c), nil) {
				r.log.Debug("join realization stopped by consumer", "realization", r.id, "tuples", produced)
				return
			}
		}
		r.log.Debug("join realization finished", "realization", r.id, "tuples", produced)
	}
}

// Stream realizes p over the joined tuples.
func (j *Join[T]) Stream(ctx context.Context, p stream.Pipeline[T]) stream.Seq[T] {
	return p.Realize(j.Seq(ctx))
}

// compile validates and binds a join over tables, leaving only the
// per-position inputs to the typed callers.
func (c *Compiler) compile(stages []stage.Stage, tables []string, opts []Option) (*Plan, config, error) {
	cfg := c.cfg.with(opts)
	plan, err := c.Compile(stages, tables, opts...)
	if err != nil {
		return nil, cfg, err
	}
	for name := range cfg.where {
		if _, ok := positionsOf(tables)[name]; !ok {
			return nil, cfg, ir.Errorf(ir.ErrCodeInvalidArgument, "pipeline given for table %q, which is not joined", name)
		}
	}
	if c.registry == nil {
		return nil, cfg, ir.Errorf(ir.ErrCodeInvalidArgument, "compiler has no registry to read rows from")
	}
	return plan, cfg, nil
}

// bind looks up the source of id and applies the table's pipeline, if any.
func bind[T any](c *Compiler, cfg config, pos int, id table.Identifier[T]) (input, error) {
	src, err := table.SourceOf(c.registry, id)
	if err != nil {
		return input{}, &ir.Error{
			Code:    ir.ErrCodeUnresolvedTableReference,
			Message: "table has no usable row source",
			Stage:   pos - 1,
			Table:   id.Name(),
			Err:     err,
		}
	}

	pipe := stream.New[T]()
	if p, ok := cfg.where[id.Name()]; ok {
		typed, ok := p.(stream.Pipeline[T])
		if !ok {
			return input{}, ir.StageErrorf(ir.ErrCodeInvalidArgument, pos-1, id.Name(),
				"pipeline of type %T does not match rows of the table", p)
		}
		pipe = typed
	}

	return input{
		table:    id.Name(),
		pipeline: pipe.Describe(),
		open: func(ctx context.Context) stream.Seq[any] {
			return stream.MapTo(pipe.Realize(src.Rows(ctx)), func(row T) any { return row })
		},
	}, nil
}

// element converts a combo slot back to its table's row type.
func element[T any](v any) tuple.Opt[T] {
	if _, ok := v.(absentRow); ok {
		return tuple.Absent[T]()
	}
	row, _ := v.(T)
	return tuple.Present(row)
}

// CreateList joins tables whose rows share one type T, producing
// run-time-degree tuples. It accepts up to MaxDegree tables.
func CreateList[T any](c *Compiler, stages []stage.Stage, ids []table.Identifier[T], opts ...Option) (*Join[tuple.List[T]], error) {
	tables := make([]string, len(ids))
	for i, id := range ids {
		tables[i] = id.Name()
	}
	plan, cfg, err := c.compile(stages, tables, opts)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, len(ids))
	for i, id := range ids {
		if inputs[i], err = bind(c, cfg, i, id); err != nil {
			return nil, err
		}
	}

	return &Join[tuple.List[T]]{
		plan:   plan,
		inputs: inputs,
		cfg:    cfg,
		build: func(cb combo) tuple.List[T] {
			out := make(tuple.List[T], len(cb))
			for i, v := range cb {
				out[i] = element[T](v)
			}
			return out
		},
	}, nil
}

// CreateRecords joins schema-driven tables whose rows are ir.Record.
func CreateRecords(c *Compiler, stages []stage.Stage, ids []table.Identifier[ir.Record], opts ...Option) (*Join[tuple.List[ir.Record]], error) {
	return CreateList(c, stages, ids, opts...)
}
