package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/joinkit/internal/join"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Catalog  string
	Strategy string
}

// ExplainResult is the JSON form of a plan.
type ExplainResult struct {
	Query    string            `json:"query,omitempty"`
	Tables   []string          `json:"tables"`
	Stages   []ExplainStage    `json:"stages"`
	Where    map[string]string `json:"where,omitempty"`
	Pipeline string            `json:"pipeline"`
}

// ExplainStage describes one planned stage.
type ExplainStage struct {
	Position int      `json:"position"`
	Table    string   `json:"table"`
	Kind     string   `json:"kind"`
	Links    []string `json:"links,omitempty"`
	Strategy string   `json:"strategy"`
	Build    string   `json:"build,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query-file>",
		Short: "Show how a join query would be executed",
		Long: `Validate a join query and print its plan: one line per table
position with the strategy chosen for each stage, the filters applied to
each table and the actions applied to the joined tuples.

Example:
  joinkit explain --catalog ./catalog orders.yaml
  joinkit explain --catalog ./catalog --strategy nested-loop orders.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "directory of CUE table descriptors (required)")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "force a join strategy (auto|nested-loop|indexed)")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func runExplain(opts *ExplainOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	joinOpts, err := strategyOption(opts.Strategy)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	ws, err := LoadWorkspace(queryPath, opts.Catalog)
	if err != nil {
		return failLoad(formatter, err)
	}

	plan, err := ws.Query.Plan(ws.Registry, joinOpts...)
	if err != nil {
		return outputValidationError(formatter, err)
	}
	pipeline, err := ws.Query.Pipeline()
	if err != nil {
		return outputValidationError(formatter, err)
	}

	result := explainResult(plan)
	result.Query = ws.Query.Name
	result.Where = ws.Query.Filters()
	result.Pipeline = pipeline.Describe()

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Query != "" {
		fmt.Fprintf(w, "query: %s\n", result.Query)
	}
	for _, line := range plan.Explain() {
		fmt.Fprintln(w, line)
	}
	for _, name := range plan.Tables {
		if cond, ok := result.Where[name]; ok {
			fmt.Fprintf(w, "where %s: %s\n", name, cond)
		}
	}
	fmt.Fprintf(w, "result: %s\n", result.Pipeline)
	return nil
}

func explainResult(plan *join.Plan) ExplainResult {
	result := ExplainResult{
		Tables: slices.Clone(plan.Tables),
		Stages: make([]ExplainStage, len(plan.Nodes)),
	}
	for i, n := range plan.Nodes {
		s := ExplainStage{
			Position: n.Position,
			Table:    n.Table,
			Kind:     n.Kind.String(),
			Strategy: n.Strategy.String(),
		}
		for _, l := range n.Links {
			s.Links = append(s.Links, l.Link.String())
		}
		if n.Strategy == join.StrategyIndexed {
			s.Build = n.Build.String()
		}
		result.Stages[i] = s
	}
	return result
}

// strategyOption turns the --strategy flag into join options.
func strategyOption(name string) ([]join.Option, error) {
	if name == "" {
		return nil, nil
	}
	s, err := join.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return []join.Option{join.WithStrategy(s)}, nil
}
