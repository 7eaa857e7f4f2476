package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/join"
	"github.com/roach88/joinkit/internal/query"
	"github.com/roach88/joinkit/internal/sqlsource"
	"github.com/roach88/joinkit/internal/table"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Catalog  string
	Database string
	Strategy string
	Limit    int64
}

// RunResult is the JSON form of a query result. Each row holds one record
// per table, or null where an outer join found no partner.
type RunResult struct {
	Query  string   `json:"query,omitempty"`
	Tables []string `json:"tables"`
	Rows   [][]any  `json:"rows"`
	Count  int      `json:"count"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query-file>",
		Short: "Run a join query against a SQLite database",
		Long: `Run a join query and print the joined rows.

Tables are described by the CUE catalog and read from the SQLite
database, one streaming SELECT per table per run. Rows are printed as
they are produced unless the query sorts them.

Example:
  joinkit run --catalog ./catalog --db ./shop.db orders.yaml
  joinkit run --catalog ./catalog --db ./shop.db --limit 10 --format json orders.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "directory of CUE table descriptors (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "force a join strategy (auto|nested-loop|indexed)")
	cmd.Flags().Int64Var(&opts.Limit, "limit", -1, "maximum number of rows to print (overrides the query's limit)")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *RunOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	joinOpts, err := strategyOption(opts.Strategy)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	joinOpts = append(joinOpts, join.WithLogger(logger))

	ws, err := LoadWorkspace(queryPath, opts.Catalog)
	if err != nil {
		return failLoad(formatter, err)
	}
	if cmd.Flags().Changed("limit") {
		if opts.Limit < 0 {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric,
				fmt.Errorf("--limit must be non-negative, got %d", opts.Limit))
		}
		ws.Query.Limit = &opts.Limit
	}

	plan, err := ws.Query.Plan(ws.Registry, joinOpts...)
	if err != nil {
		return outputValidationError(formatter, err)
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("database not found: %s", opts.Database))
	}
	logger.Debug("opening database", "path", opts.Database)
	db, err := sqlsource.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Bind(ctx, ws.Registry, ws.Query.Tables()...); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}

	seq, err := ws.Query.Run(ctx, ws.Registry, joinOpts...)
	if err != nil {
		return outputValidationError(formatter, err)
	}

	printer := newRowPrinter(formatter, ws.Registry, plan.Tables)
	for r, err := range seq {
		if err != nil {
			return printer.fail(err)
		}
		printer.add(r)
	}
	return printer.finish(ws.Query.Name)
}

// rowPrinter streams text rows as they arrive and buffers JSON rows for a
// single response.
type rowPrinter struct {
	f       *OutputFormatter
	tables  []string
	columns [][]string
	rows    [][]any
	count   int
}

func newRowPrinter(f *OutputFormatter, reg *table.Registry, tables []string) *rowPrinter {
	p := &rowPrinter{f: f, tables: tables, columns: make([][]string, len(tables)), rows: [][]any{}}
	for i, name := range tables {
		if desc, ok := reg.Descriptor(name); ok {
			p.columns[i] = desc.ColumnNames()
		}
	}
	return p
}

func (p *rowPrinter) add(r query.Result) {
	p.count++
	if p.f.IsJSON() {
		row := make([]any, len(p.tables))
		for i := range p.tables {
			if rec, ok := r.At(i).Get(); ok {
				row[i] = rec
			}
		}
		p.rows = append(p.rows, row)
		return
	}
	fmt.Fprintln(p.f.Writer, p.format(r))
}

// format renders one tuple as
//
//	users(id=1, name="ada") orders(absent)
func (p *rowPrinter) format(r query.Result) string {
	parts := make([]string, len(p.tables))
	for i, name := range p.tables {
		rec, ok := r.At(i).Get()
		if !ok {
			parts[i] = name + "(absent)"
			continue
		}
		fields := make([]string, len(p.columns[i]))
		for j, col := range p.columns[i] {
			fields[j] = col + "=" + ir.Format(rec.Get(col))
		}
		parts[i] = name + "(" + strings.Join(fields, ", ") + ")"
	}
	return strings.Join(parts, " ")
}

// fail reports a failure that ended the result stream. Text output keeps
// the rows already printed.
func (p *rowPrinter) fail(err error) error {
	code := CodeFor(err, ErrCodeGeneric)
	if p.f.IsJSON() {
		_ = p.f.Error(code, err.Error(), map[string]int{"rows_before_failure": p.count})
	} else {
		_ = p.f.Error(code, err.Error(), nil)
	}
	return WrapExitError(ExitFailure, "query failed", err)
}

func (p *rowPrinter) finish(name string) error {
	if p.f.IsJSON() {
		return p.f.Success(RunResult{Query: name, Tables: p.tables, Rows: p.rows, Count: p.count})
	}
	fmt.Fprintf(p.f.Writer, "(%d rows)\n", p.count)
	return nil
}
