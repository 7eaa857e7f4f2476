package join

import (
	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/table"
)

// MaxDegree is the largest number of tables one join may combine.
const MaxDegree = 10

// Compiler validates stage lists and turns them into plans.
//
// Options given to NewCompiler are defaults for every join it creates;
// options given to CreateN override them for that join.
type Compiler struct {
	meta     table.Metadata
	registry *table.Registry
	cfg      config
}

// NewCompiler returns a compiler that validates against meta. Row sources
// are looked up in registry when joins are created; registry may be nil
// for a compiler that only validates and explains.
func NewCompiler(meta table.Metadata, registry *table.Registry, opts ...Option) *Compiler {
	return &Compiler{
		meta:     meta,
		registry: registry,
		cfg:      defaultConfig().with(opts),
	}
}

// ForRegistry returns a compiler using reg as both metadata and sources.
func ForRegistry(reg *table.Registry, opts ...Option) *Compiler {
	return NewCompiler(reg, reg, opts...)
}

// Compile validates stages against the anchor and stage tables and
// returns the plan. It performs no I/O.
func (c *Compiler) Compile(stages []stage.Stage, tables []string, opts ...Option) (*Plan, error) {
	cfg := c.cfg.with(opts)

	if err := checkArity(stages, tables); err != nil {
		return nil, err
	}
	if err := c.checkReferences(stages, tables); err != nil {
		return nil, err
	}
	if err := c.checkTypes(stages); err != nil {
		return nil, err
	}
	if err := checkStructure(stages, tables); err != nil {
		return nil, err
	}

	plan := &Plan{
		Tables: append([]string(nil), tables...),
		Nodes:  make([]Node, len(stages)),
	}
	positions := positionsOf(tables)
	for i, st := range stages {
		node := Node{
			Stage:    i,
			Position: i + 1,
			Table:    st.Table,
			Kind:     st.Kind,
			Links:    make([]ResolvedLink, len(st.Links)),
		}
		for j, l := range st.Links {
			lt, _ := c.meta.Column(l.Existing.Table(), l.Existing.Column())
			rt, _ := c.meta.Column(l.New.Table(), l.New.Column())
			rl := ResolvedLink{
				Link:         l,
				ExistingPos:  positions[l.Existing.Table()],
				ExistingType: lt,
				NewType:      rt,
			}
			if l.Op.IsEquality() {
				rl.Domain = ir.KeyDomainFor(lt, rt)
			}
			node.Links[j] = rl
		}
		node.Strategy = chooseStrategy(&node, cfg.strategy)
		if node.Strategy == StrategyIndexed {
			node.Build = c.chooseBuild(&node, tables)
		}
		plan.Nodes[i] = node

		cfg.log().Debug("plan node",
			"stage", i,
			"table", st.Table,
			"kind", st.Kind.String(),
			"strategy", node.Strategy.String(),
			"build", node.Build.String(),
		)
	}
	return plan, nil
}

func checkArity(stages []stage.Stage, tables []string) error {
	if len(tables) != len(stages)+1 {
		return ir.Errorf(ir.ErrCodeArityMismatch,
			"%d table identifiers given for %d stages, want %d", len(tables), len(stages), len(stages)+1)
	}
	if len(tables) > MaxDegree {
		return ir.Errorf(ir.ErrCodeArityMismatch,
			"join of %d tables exceeds the maximum degree %d", len(tables), MaxDegree)
	}
	return nil
}

// checkReferences verifies that every table and column is described and
// that each link's existing side was joined before its stage.
func (c *Compiler) checkReferences(stages []stage.Stage, tables []string) error {
	for pos, name := range tables {
		if !c.meta.HasTable(name) {
			st := pos - 1
			return ir.StageErrorf(ir.ErrCodeUnresolvedTableReference, st, name, "table %q is not described", name)
		}
	}

	positions := positionsOf(tables)
	for i, st := range stages {
		for j, l := range st.Links {
			if l.Existing == nil || l.New == nil {
				continue
			}
			p, ok := positions[l.Existing.Table()]
			if !ok || p > i {
				return ir.StageErrorf(ir.ErrCodeUnresolvedTableReference, i, st.Table,
					"link %d (%s) references table %q, which is not joined before this stage",
					j, l, l.Existing.Table())
			}
			for _, f := range []table.Field{l.Existing, l.New} {
				if _, ok := c.meta.Column(f.Table(), f.Column()); !ok {
					return ir.StageErrorf(ir.ErrCodeUnresolvedTableReference, i, st.Table,
						"link %d references unknown column %s", j, table.FieldString(f))
				}
			}
		}
	}
	return nil
}

func (c *Compiler) checkTypes(stages []stage.Stage) error {
	for i, st := range stages {
		for j, l := range st.Links {
			if l.Existing == nil || l.New == nil {
				continue
			}
			lt, _ := c.meta.Column(l.Existing.Table(), l.Existing.Column())
			rt, _ := c.meta.Column(l.New.Table(), l.New.Column())
			for _, side := range []struct {
				f        table.Field
				declared ir.ColumnType
			}{{l.Existing, lt}, {l.New, rt}} {
				if ft := side.f.Type(); ft != ir.TypeUnknown && ft != side.declared {
					return ir.StageErrorf(ir.ErrCodeIncompatibleComparison, i, st.Table,
						"link %d: field %s reads %s values but the column is declared %s",
						j, table.FieldString(side.f), ft, side.declared)
				}
			}
			if !l.Op.Supports(lt, rt) {
				return ir.StageErrorf(ir.ErrCodeIncompatibleComparison, i, st.Table,
					"link %d: %s (%s) %s %s (%s) is not a valid comparison",
					j, table.FieldString(l.Existing), lt, l.Op, table.FieldString(l.New), rt)
			}
		}
	}
	return nil
}

func checkStructure(stages []stage.Stage, tables []string) error {
	seen := make(map[string]int, len(tables))
	for pos, name := range tables {
		if first, dup := seen[name]; dup {
			return ir.StageErrorf(ir.ErrCodeMalformedStage, pos-1, name,
				"table %q is joined twice (positions %d and %d)", name, first, pos)
		}
		seen[name] = pos
	}

	for i, st := range stages {
		switch {
		case !st.Kind.Valid():
			return ir.StageErrorf(ir.ErrCodeMalformedStage, i, st.Table, "unknown join kind %s", st.Kind)
		case st.Kind == stage.Cross && len(st.Links) > 0:
			return ir.StageErrorf(ir.ErrCodeMalformedStage, i, st.Table,
				"CROSS join cannot have predicate links, got %d", len(st.Links))
		case st.Table != tables[i+1]:
			return ir.StageErrorf(ir.ErrCodeMalformedStage, i, st.Table,
				"stage joins %q but table identifier %d is %q", st.Table, i+1, tables[i+1])
		}
		for j, l := range st.Links {
			if l.Existing == nil || l.New == nil {
				return ir.StageErrorf(ir.ErrCodeMalformedStage, i, st.Table, "link %d has a nil field", j)
			}
			if l.New.Table() != st.Table {
				return ir.StageErrorf(ir.ErrCodeMalformedStage, i, st.Table,
					"link %d: new side %s does not belong to the stage's table",
					j, table.FieldString(l.New))
			}
		}
	}
	return nil
}

// chooseStrategy picks indexed execution for stages with an indexable
// equality link unless nested loops are forced.
func chooseStrategy(n *Node, forced Strategy) Strategy {
	if n.Kind == stage.Cross || forced == StrategyNestedLoop {
		return StrategyNestedLoop
	}
	for _, l := range n.Links {
		if l.Domain != ir.KeyNone {
			return StrategyIndexed
		}
	}
	return StrategyNestedLoop
}

// chooseBuild picks the side to index. The existing side is indexed only
// when it is expected to be smaller than the new table; an estimate exists
// for it only when every earlier table has a size hint (the largest one is
// used). On a tie the side whose key columns the store indexes wins, and
// the new table otherwise.
func (c *Compiler) chooseBuild(n *Node, tables []string) BuildSide {
	newSize, ok := c.meta.SizeHint(n.Table)
	if !ok {
		return BuildNew
	}
	var existingSize int64
	for _, name := range tables[:n.Position] {
		hint, ok := c.meta.SizeHint(name)
		if !ok {
			return BuildNew
		}
		existingSize = max(existingSize, hint)
	}

	switch {
	case existingSize < newSize:
		return BuildExisting
	case existingSize > newSize:
		return BuildNew
	}

	newIndexed, existingIndexed := true, true
	for _, l := range n.keyLinks() {
		newIndexed = newIndexed && c.meta.IsIndexed(l.New.Table(), l.New.Column())
		existingIndexed = existingIndexed && c.meta.IsIndexed(l.Existing.Table(), l.Existing.Column())
	}
	if existingIndexed && !newIndexed {
		return BuildExisting
	}
	return BuildNew
}

func positionsOf(tables []string) map[string]int {
	positions := make(map[string]int, len(tables))
	for i, name := range tables {
		if _, ok := positions[name]; !ok {
			positions[name] = i
		}
	}
	return positions
}
