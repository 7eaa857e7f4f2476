package table

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/joinkit/internal/ir"
)

// Metadata answers the compiler's questions about tables.
// Registry is the implementation used throughout the module.
type Metadata interface {
	// HasTable reports whether table is described.
	HasTable(table string) bool

	// Column returns the declared type of table.column.
	Column(table, column string) (ir.ColumnType, bool)

	// SizeHint returns the expected row count of table, when known.
	SizeHint(table string) (int64, bool)

	// IsIndexed reports whether the store indexes table.column.
	IsIndexed(table, column string) bool
}

var (
	// ErrUnknownTable is returned for a table with no descriptor.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNoSource is returned for a described table with no row source.
	ErrNoSource = errors.New("table has no row source")

	// ErrRowType is returned when a table is bound to rows of another type.
	ErrRowType = errors.New("row type mismatch")
)

// Registry holds table descriptors and the row sources bound to them.
//
// Registration normally happens once at startup; lookups are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*binding
}

type binding struct {
	desc   Descriptor
	source any // Source[T] for the T the table was bound with
}

var _ Metadata = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*binding)}
}

// Define adds a descriptor. Defining the same table twice is an error.
func (r *Registry) Define(desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("invalid descriptor: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[desc.Name]; exists {
		return fmt.Errorf("table %q already defined", desc.Name)
	}
	desc.Columns = slices.Clone(desc.Columns)
	desc.Indexed = slices.Clone(desc.Indexed)
	r.tables[desc.Name] = &binding{desc: desc}
	return nil
}

// Bind attaches src to the already defined table id. Rebinding replaces
// the previous source.
func Bind[T any](r *Registry, id Identifier[T], src Source[T]) error {
	if src == nil {
		return fmt.Errorf("table %q: source is nil", id.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.tables[id.Name()]
	if !ok {
		return fmt.Errorf("table %q: %w", id.Name(), ErrUnknownTable)
	}
	b.source = src
	return nil
}

// Register defines desc and binds src in one step. An empty desc.Name
// defaults to the identifier's name.
func Register[T any](r *Registry, id Identifier[T], desc Descriptor, src Source[T]) error {
	if desc.Name == "" {
		desc.Name = id.Name()
	}
	if desc.Name != id.Name() {
		return fmt.Errorf("descriptor %q does not describe table %q", desc.Name, id.Name())
	}
	if err := r.Define(desc); err != nil {
		return err
	}
	return Bind(r, id, src)
}

// SourceOf returns the source bound to id.
func SourceOf[T any](r *Registry, id Identifier[T]) (Source[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.tables[id.Name()]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", id.Name(), ErrUnknownTable)
	}
	if b.source == nil {
		return nil, fmt.Errorf("table %q: %w", id.Name(), ErrNoSource)
	}
	src, ok := b.source.(Source[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("table %q is not bound to rows of type %T: %w", id.Name(), zero, ErrRowType)
	}
	return src, nil
}

// Descriptor returns the descriptor of table.
func (r *Registry) Descriptor(table string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.tables[table]
	if !ok {
		return Descriptor{}, false
	}
	return b.desc, true
}

// Tables returns the defined table names in sorted order.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasTable implements Metadata.
func (r *Registry) HasTable(table string) bool {
	_, ok := r.Descriptor(table)
	return ok
}

// Column implements Metadata.
func (r *Registry) Column(table, column string) (ir.ColumnType, bool) {
	desc, ok := r.Descriptor(table)
	if !ok {
		return ir.TypeUnknown, false
	}
	c, ok := desc.Column(column)
	if !ok {
		return ir.TypeUnknown, false
	}
	return c.Type, true
}

// SizeHint implements Metadata.
func (r *Registry) SizeHint(table string) (int64, bool) {
	desc, ok := r.Descriptor(table)
	if !ok || desc.SizeHint <= 0 {
		return 0, false
	}
	return desc.SizeHint, true
}

// IsIndexed implements Metadata.
func (r *Registry) IsIndexed(table, column string) bool {
	desc, ok := r.Descriptor(table)
	return ok && desc.IsIndexed(column)
}
