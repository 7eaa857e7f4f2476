package table

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/joinkit/internal/ir"
)

// Column is one typed column of a table.
type Column struct {
	Name string
	Type ir.ColumnType
}

// Descriptor is the read-only metadata of one table.
type Descriptor struct {
	Name    string
	Columns []Column

	// SizeHint is the expected row count. Zero means unknown.
	SizeHint int64

	// Indexed lists columns the underlying store keeps an index on.
	Indexed []string
}

// Column returns the column called name.
func (d Descriptor) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns column names in declaration order.
func (d Descriptor) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// IsIndexed reports whether column is listed in Indexed.
func (d Descriptor) IsIndexed(column string) bool {
	return slices.Contains(d.Indexed, column)
}

// Validate reports every structural problem of d at once.
func (d Descriptor) Validate() error {
	var errs *multierror.Error

	if d.Name == "" {
		errs = multierror.Append(errs, fmt.Errorf("table name is empty"))
	}
	if len(d.Columns) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("table %q has no columns", d.Name))
	}
	if d.SizeHint < 0 {
		errs = multierror.Append(errs, fmt.Errorf("table %q: size hint must be non-negative, got %d", d.Name, d.SizeHint))
	}

	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		switch {
		case c.Name == "":
			errs = multierror.Append(errs, fmt.Errorf("table %q: column name is empty", d.Name))
		case seen[c.Name]:
			errs = multierror.Append(errs, fmt.Errorf("table %q: duplicate column %q", d.Name, c.Name))
		}
		seen[c.Name] = true
		if c.Type == ir.TypeUnknown {
			errs = multierror.Append(errs, fmt.Errorf("table %q: column %q has no type", d.Name, c.Name))
		}
	}

	for _, col := range d.Indexed {
		if !seen[col] {
			errs = multierror.Append(errs, fmt.Errorf("table %q: indexed column %q is not declared", d.Name, col))
		}
	}

	return errs.ErrorOrNil()
}
