package join

import (
	"fmt"
	"strings"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/table"
)

// Strategy is how a plan node finds matching rows.
type Strategy int

const (
	// StrategyAuto lets the compiler choose: indexed when the stage has an
	// equality link, nested-loop otherwise.
	StrategyAuto Strategy = iota
	// StrategyNestedLoop tests every left combination against every row.
	StrategyNestedLoop
	// StrategyIndexed builds a key index over one side and looks up rows of
	// the other.
	StrategyIndexed
)

var strategyNames = map[Strategy]string{
	StrategyAuto:       "auto",
	StrategyNestedLoop: "nested-loop",
	StrategyIndexed:    "indexed",
}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses "auto", "nested-loop" or "indexed".
func ParseStrategy(s string) (Strategy, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, name := range strategyNames {
		if name == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// BuildSide is the side an indexed node keeps in memory.
type BuildSide int

const (
	// BuildNew indexes the rows of the stage's table and streams the
	// combinations accumulated so far.
	BuildNew BuildSide = iota
	// BuildExisting indexes the accumulated combinations and streams the
	// stage's table.
	BuildExisting
)

func (b BuildSide) String() string {
	if b == BuildExisting {
		return "existing"
	}
	return "new"
}

// ResolvedLink is a stage link with its positions and column types looked
// up.
type ResolvedLink struct {
	stage.Link

	// ExistingPos is the table position (0 = anchor) of the existing side.
	ExistingPos int

	ExistingType ir.ColumnType
	NewType      ir.ColumnType

	// Domain is the shared key encoding for equality links, KeyNone for
	// other operators.
	Domain ir.KeyDomain
}

// Node is the executable form of one stage.
type Node struct {
	// Stage is the 0-based stage index.
	Stage int

	// Position is the table position the stage fills (Stage + 1).
	Position int

	Table string
	Kind  stage.JoinKind
	Links []ResolvedLink

	Strategy Strategy
	Build    BuildSide
}

// keyLinks returns the links the index key is built from.
func (n *Node) keyLinks() []ResolvedLink {
	var keys []ResolvedLink
	for _, l := range n.Links {
		if l.Domain != ir.KeyNone {
			keys = append(keys, l)
		}
	}
	return keys
}

// String renders the node for explain output.
func (n *Node) String() string {
	var b strings.Builder
	b.WriteString(stage.New(n.Kind, n.Table, linksOf(n.Links)...).String())
	fmt.Fprintf(&b, " [strategy=%s", n.Strategy)
	if n.Strategy == StrategyIndexed {
		fmt.Fprintf(&b, ", build=%s", n.Build)
	}
	b.WriteString("]")
	return b.String()
}

func linksOf(resolved []ResolvedLink) []stage.Link {
	links := make([]stage.Link, len(resolved))
	for i, l := range resolved {
		links[i] = l.Link
	}
	return links
}

// Plan is a validated join: the table order and one node per stage.
// Plans are immutable and hold no row sources.
type Plan struct {
	Tables []string
	Nodes  []Node
}

// Degree returns the number of joined tables.
func (p *Plan) Degree() int { return len(p.Tables) }

// Explain renders one line per table position.
func (p *Plan) Explain() []string {
	lines := make([]string, 0, len(p.Tables))
	lines = append(lines, fmt.Sprintf("0: FROM %s", p.Tables[0]))
	for i := range p.Nodes {
		lines = append(lines, fmt.Sprintf("%d: %s", p.Nodes[i].Position, p.Nodes[i].String()))
	}
	return lines
}

func (p *Plan) String() string {
	return strings.Join(p.Explain(), "\n")
}

// fieldValue reads f from row, treating an absent row or a row of the
// wrong type as Null.
func fieldValue(f table.Field, row any) ir.Value {
	if _, ok := row.(absentRow); ok {
		return ir.Null{}
	}
	v, ok := f.Extract(row)
	if !ok || v == nil {
		return ir.Null{}
	}
	return v
}
