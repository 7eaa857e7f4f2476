package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/joinkit/internal/catalog"
	"github.com/roach88/joinkit/internal/query"
	"github.com/roach88/joinkit/internal/table"
)

// LoadError represents an error that occurred while loading a command's
// inputs.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Workspace is the loaded input of a command: the query and the table
// metadata it is checked against.
type Workspace struct {
	Query    *query.Query
	Registry *table.Registry
}

// LoadWorkspace reads the catalog directory and the query file.
func LoadWorkspace(queryPath, catalogDir string) (*Workspace, error) {
	if catalogDir == "" {
		return nil, &LoadError{Code: ErrCodeCatalog, Message: "--catalog is required"}
	}
	if _, err := os.Stat(catalogDir); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", catalogDir)}
	}
	if _, err := os.Stat(queryPath); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", queryPath)}
	}

	reg, err := catalog.LoadRegistry(catalogDir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCatalog, Message: "failed to load catalog", Err: err}
	}

	q, err := query.Load(queryPath)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeQuery, Message: "failed to load query", Err: err}
	}

	return &Workspace{Query: q, Registry: reg}, nil
}

// failLoad reports a LoadWorkspace error as a command error.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.Fail(ExitCommandError, loadErr.Code, loadErr)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err)
}
