package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Catalog string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Query  string   `json:"query,omitempty"`
	Tables []string `json:"tables,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Check a join query against a catalog",
		Long: `Check a join query against the table catalog without reading rows.

Reports the first problem the join compiler finds: wrong table count,
references to tables or columns not yet joined, comparisons between
incompatible column types and malformed stages.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "directory of CUE table descriptors (required)")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func runValidate(opts *ValidateOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := LoadWorkspace(queryPath, opts.Catalog)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Loaded %d table(s) from %s", len(ws.Registry.Tables()), opts.Catalog)

	plan, err := ws.Query.Plan(ws.Registry)
	if err != nil {
		return outputValidationError(formatter, err)
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Query: ws.Query.Name, Tables: plan.Tables})
	}

	fmt.Fprintf(formatter.Writer, "✓ Query valid (%d tables)\n", plan.Degree())
	return nil
}

// outputValidationError reports a rejected query. Rejections are
// validation failures (exit code 1), not command errors.
func outputValidationError(formatter *OutputFormatter, err error) error {
	code := CodeFor(err, ErrCodeGeneric)
	if formatter.IsJSON() {
		_ = formatter.Error(code, err.Error(), ValidationResult{Valid: false})
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, err.Error())
	return WrapExitError(ExitFailure, "validation failed", err)
}
