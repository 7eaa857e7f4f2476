// Package catalog loads table descriptors from CUE files.
//
// A catalog directory holds one or more .cue files of a single package that
// declare tables under the top-level "table" struct:
//
//	table: users: {
//		columns: {
//			id:   "long"
//			name: "string"
//		}
//		size_hint: 1000
//		indexed: ["id"]
//	}
//
// Columns keep their declaration order. Every problem found in the files is
// reported at once, with file positions where CUE provides them.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/table"
)

// Error is one problem in a catalog file.
type Error struct {
	Table   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Table != "" {
		msg = fmt.Sprintf("table %s: %s", e.Table, msg)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	return msg
}

// Load reads the CUE package in dir and returns its table descriptors
// sorted by name.
func Load(dir string) ([]table.Descriptor, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &Error{Message: fmt.Sprintf("catalog directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("error accessing catalog directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &Error{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &Error{Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &Error{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fromCUE(inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fromCUE(err)
	}
	return Parse(value)
}

// Parse extracts descriptors from an already built CUE value. Tables are
// returned sorted by name.
func Parse(v cue.Value) ([]table.Descriptor, error) {
	if err := v.Err(); err != nil {
		return nil, fromCUE(err)
	}

	tables := v.LookupPath(cue.ParsePath("table"))
	if !tables.Exists() {
		return nil, &Error{Message: "no tables declared", Pos: v.Pos()}
	}

	iter, err := tables.Fields()
	if err != nil {
		return nil, fromCUE(err)
	}

	var (
		descs []table.Descriptor
		errs  *multierror.Error
	)
	for iter.Next() {
		desc, err := parseTable(iter.Label(), iter.Value())
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		descs = append(descs, desc)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	if len(descs) == 0 {
		return nil, &Error{Message: "no tables declared", Pos: tables.Pos()}
	}

	slices.SortFunc(descs, func(a, b table.Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return descs, nil
}

func parseTable(name string, v cue.Value) (table.Descriptor, error) {
	desc := table.Descriptor{Name: name}
	var errs *multierror.Error
	fail := func(pos token.Pos, format string, args ...any) {
		errs = multierror.Append(errs, &Error{Table: name, Message: fmt.Sprintf(format, args...), Pos: pos})
	}

	cols := v.LookupPath(cue.ParsePath("columns"))
	if !cols.Exists() {
		fail(v.Pos(), "columns are required")
	} else if iter, err := cols.Fields(); err != nil {
		fail(cols.Pos(), "columns must be a struct: %v", err)
	} else {
		for iter.Next() {
			colVal := iter.Value()
			typeName, err := colVal.String()
			if err != nil {
				fail(colVal.Pos(), "column %s: type must be a string", iter.Label())
				continue
			}
			typ, err := ir.ParseColumnType(typeName)
			if err != nil {
				fail(colVal.Pos(), "column %s: %v", iter.Label(), err)
				continue
			}
			desc.Columns = append(desc.Columns, table.Column{Name: iter.Label(), Type: typ})
		}
	}

	if hint := v.LookupPath(cue.ParsePath("size_hint")); hint.Exists() {
		n, err := hint.Int64()
		if err != nil {
			fail(hint.Pos(), "size_hint must be an integer")
		} else {
			desc.SizeHint = n
		}
	}

	if indexed := v.LookupPath(cue.ParsePath("indexed")); indexed.Exists() {
		list, err := indexed.List()
		if err != nil {
			fail(indexed.Pos(), "indexed must be a list of column names")
		} else {
			for list.Next() {
				col, err := list.Value().String()
				if err != nil {
					fail(list.Value().Pos(), "indexed entries must be strings")
					continue
				}
				desc.Indexed = append(desc.Indexed, col)
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return table.Descriptor{}, err
	}
	if err := desc.Validate(); err != nil {
		return table.Descriptor{}, &Error{Table: name, Message: err.Error(), Pos: v.Pos()}
	}
	return desc, nil
}

// Define adds every descriptor to reg. All failures are reported together.
func Define(reg *table.Registry, descs []table.Descriptor) error {
	var errs *multierror.Error
	for _, d := range descs {
		if err := reg.Define(d); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// LoadRegistry loads dir and defines its tables in a fresh registry.
func LoadRegistry(dir string) (*table.Registry, error) {
	descs, err := Load(dir)
	if err != nil {
		return nil, err
	}
	reg := table.NewRegistry()
	if err := Define(reg, descs); err != nil {
		return nil, err
	}
	return reg, nil
}

// fromCUE converts a CUE error list into catalog errors with positions.
func fromCUE(err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return &Error{Message: err.Error()}
	}
	var errs *multierror.Error
	for _, e := range list {
		ce := &Error{Message: e.Error()}
		if pos := cueerrors.Positions(e); len(pos) > 0 {
			ce.Pos = pos[0]
		}
		errs = multierror.Append(errs, ce)
	}
	return errs.ErrorOrNil()
}
