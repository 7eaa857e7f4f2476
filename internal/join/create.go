package join

import (
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/table"
	"github.com/roach88/joinkit/internal/tuple"
)

// Create2 compiles a two-table join: an anchor and one stage. ctor builds
// a result from one optional row per table; tuple.Of2 fits directly.
//
// Construction errors (arity, references, types, malformed stages, a
// missing row source) are returned here, before any row is read.
func Create2[T1, T2, R any](c *Compiler, stages []stage.Stage, ctor func(tuple.Opt[T1], tuple.Opt[T2]) R, id1 table.Identifier[T1], id2 table.Identifier[T2], opts ...Option) (*Join[R], error) {
	plan, cfg, err := c.compile(stages, []string{id1.Name(), id2.Name()}, opts)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 2)
	if inputs[0], err = bind(c, cfg, 0, id1); err != nil {
		return nil, err
	}
	if inputs[1], err = bind(c, cfg, 1, id2); err != nil {
		return nil, err
	}

	return &Join[R]{
		plan:   plan,
		inputs: inputs,
		cfg:    cfg,
		build: func(cb combo) R {
			return ctor(element[T1](cb[0]), element[T2](cb[1]))
		},
	}, nil
}

// Create3 compiles a 3-table join. See Create2.
func Create3[T1, T2, T3, R any](c *Compiler, stages []stage.Stage, ctor func(tuple.Opt[T1], tuple.Opt[T2], tuple.Opt[T3]) R, id1 table.Identifier[T1], id2 table.Identifier[T2], id3 table.Identifier[T3], opts ...Option) (*Join[R], error) {
	plan, cfg, err := c.compile(stages, []string{id1.Name(), id2.Name(), id3.Name()}, opts)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 3)
	if inputs[0], err = bind(c, cfg, 0, id1); err != nil {
		return nil, err
	}
	if inputs[1], err = bind(c, cfg, 1, id2); err != nil {
		return nil, err
	}
	if inputs[2], err = bind(c, cfg, 2, id3); err != nil {
		return nil, err
	}

	return &Join[R]{
		plan:   plan,
		inputs: inputs,
		cfg:    cfg,
		build: func(cb combo) R {
			return ctor(element[T1](cb[0]), element[T2](cb[1]), element[T3](cb[2]))
		},
	}, nil
}

// Create4 compiles a 4-table join. See Create2.
func Create4[T1, T2, T3, T4, R any](c *Compiler, stages []stage.Stage, ctor func(tuple.Opt[T1], tuple.Opt[T2], tuple.Opt[T3], tuple.Opt[T4]) R, id1 table.Identifier[T1], id2 table.Identifier[T2], id3 table.Identifier[T3], id4 table.Identifier[T4], opts ...Option) (*Join[R], error) {
	plan, cfg, err := c.compile(stages, []string{id1.Name(), id2.Name(), id3.Name(), id4.Name()}, opts)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 4)
	if inputs[0], err = bind(c, cfg, 0, id1); err != nil {
		return nil, err
	}
	if inputs[1], err = bind(c, cfg, 1, id2); err != nil {
		return nil, err
	}
	if inputs[2], err = bind(c, cfg, 2, id3); err != nil {
		return nil, err
	}
	if inputs[3], err = bind(c, cfg, 3, id4); err != nil {
		return nil, err
	}

	return &Join[R]{
		plan:   plan,
		inputs: inputs,
		cfg:    cfg,
		build: func(cb combo) R {
			return ctor(element[T1](cb[0]), element[T2](cb[1]), element[T3](cb[2]), element[T4](cb[3]))
		},
	}, nil
}

// Create5 compiles a 5-table join. See Create2.
func Create5[T1, T2, T3, T4, T5, R any](c *Compiler, stages []stage.Stage, ctor func(tuple.Opt[T1], tuple.Opt[T2], tuple.Opt[T3], tuple.Opt[T4], tuple.Opt[T5]) R, id1 table.Identifier[T1], id2 table.Identifier[T2], id3 table.Identifier[T3], id4 table.Identifier[T4], id5 table.Identifier[T5], opts ...Option) (*Join[R], error) {
	plan, cfg, err := c.compile(stages, []string{id1.Name(), id2.Name(), id3.Name(), id4.Name(), id5.Name()}, opts)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 5)
	if inputs[0], err = bind(c, cfg, 0, id1); err != nil {
		return nil, err
	}
	if inputs[1], err = bind(c, cfg, 1, id2); err != nil {
		return nil, err
	}
	if inputs[2], err = bind(c, cfg, 2, id3); err != nil {
		return nil, err
	}
	if inputs[3], err = bind(c, cfg, 3, id4); err != nil {
		return nil, err
	}
	if inputs[4], err = bind(c, cfg, 4, id5); err != nil {
		return nil, err
	}

	return &Join[R]{
		plan:   plan,
		inputs: inputs,
		cfg:    cfg,
		build: func(cb combo) R {
			return ctor(element[T1](cb[0]), element[T2](cb[1]), element[T3](cb[2]), element[T4](cb[3]), element[T5](cb[4]))
		},
	}, nil
}

// Create6 compiles a 6-table join. See Create2.
func Create6[T1, T2, T3, T4, T5, T6, R any](c *Compiler, stages []stage.Stage, ctor func(tuple.Opt[T1], tuple.Opt[T2], tuple.Opt[T3], tuple.Opt[T4], tuple.Opt[T5], tuple.Opt[T6]) R, id1 table.Identifier[T1], id2 table.Identifier[T2], id3 table.Identifier[T3], id4 table.Identifier[T4], id5 table.Identifier[T5], id6 table.Identifier[T6], opts ...Option) (*Join[R], error) {
	plan, cfg, err := c.compile(stages, []string{id1.Name(), id2.Name(), id3.Name(), id4.Name(), id5.Name(), id6.Name()}, opts)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 6)
	if inputs[0], err = bind(c, cfg, 0, id1); err != nil {
		return nil, err
	}
	if inputs[1], err = bind(c, cfg, 1, id2); err != nil {
		return nil, err
	}
	if inputs[2], err = bind(c, cfg, 2, id3); err != nil {
		return nil, err
	}
	if inputs[3], err = bind(c, cfg, 3, id4); err != nil {
		return nil, err
	}
	if inputs[4], err = bind(c, cfg, 4, id5); err != nil {
		return nil, err
	}
	if inputs[5], err = bind(c, cfg, 5, id6); err != nil {
		return nil, err
	}

	return &Join[R]{
		plan:   plan,
		inputs: inputs,
		cfg:    cfg,
		build: func(cb combo) R {
			return ctor(element[T1](cb[0]), element[T2](cb[1]), element[T3](cb[2]), element[T4](cb[3]), element[T5](cb[4]), element[T6](cb[5]))
		},
	}, nil
}
