package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/table"
)

// DB is a SQLite database holding join input tables.
type DB struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxIdleConns(2)

	return &DB{db: db}, nil
}

// dsn appends the connection pragmas understood by go-sqlite3.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// DB returns the underlying sql.DB.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Table returns a row source over the table desc describes.
func (d *DB) Table(desc table.Descriptor) *Table {
	return &Table{db: d.db, desc: desc, query: selectAll(desc)}
}

// BindAll binds a SQLite source to every table defined in reg.
func (d *DB) BindAll(ctx context.Context, reg *table.Registry) error {
	return d.Bind(ctx, reg, reg.Tables()...)
}

// Bind binds a SQLite source to each named table of reg after checking
// that the database has it. Tables that already have a source are left
// alone; tables not named are neither checked nor bound.
func (d *DB) Bind(ctx context.Context, reg *table.Registry, names ...string) error {
	var errs *multierror.Error
	for _, name := range names {
		desc, ok := reg.Descriptor(name)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("table %s is not described in the catalog", name))
			continue
		}
		id := table.ID[ir.Record](name)
		if _, err := table.SourceOf(reg, id); err == nil {
			continue
		}
		if err := d.checkColumns(ctx, desc); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := table.Bind(reg, id, table.Source[ir.Record](d.Table(desc))); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// checkColumns verifies that the table exists and has every declared
// column, so a bad catalog fails before any join starts.
func (d *DB) checkColumns(ctx context.Context, desc table.Descriptor) error {
	rows, err := d.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", desc.Name)
	if err != nil {
		return fmt.Errorf("inspect table %s: %w", desc.Name, err)
	}
	defer rows.Close()

	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("inspect table %s: %w", desc.Name, err)
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect table %s: %w", desc.Name, err)
	}

	if len(have) == 0 {
		return fmt.Errorf("table %s does not exist in database", desc.Name)
	}
	var errs *multierror.Error
	for _, c := range desc.Columns {
		if !have[c.Name] {
			errs = multierror.Append(errs, fmt.Errorf("table %s: column %s does not exist in database", desc.Name, c.Name))
		}
	}
	return errs.ErrorOrNil()
}

// Create creates the table desc describes. It is a no-op if the table
// already exists.
func (d *DB) Create(ctx context.Context, desc table.Descriptor) error {
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, createTable(desc)); err != nil {
		return fmt.Errorf("create table %s: %w", desc.Name, err)
	}
	return nil
}

// Insert appends rows to the table desc describes inside one transaction.
// Columns missing from a record are stored as NULL.
func (d *DB) Insert(ctx context.Context, desc table.Descriptor, rows ...ir.Record) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", desc.Name, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRow(desc))
	if err != nil {
		return fmt.Errorf("insert into %s: %w", desc.Name, err)
	}
	defer stmt.Close()

	for i, r := range rows {
		args := make([]any, len(desc.Columns))
		for j, c := range desc.Columns {
			args[j] = driverValue(r.Get(c.Name))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: row %d: %w", desc.Name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert into %s: %w", desc.Name, err)
	}
	return nil
}

// Count returns the number of rows in the table called name.
func (d *DB) Count(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}

// driverValue converts v for database/sql.
func driverValue(v ir.Value) any {
	switch val := v.(type) {
	case ir.String:
		return string(val)
	case ir.Int:
		return int64(val)
	case ir.Long:
		return int64(val)
	case ir.Double:
		return float64(val)
	case ir.Bool:
		return bool(val)
	default:
		return nil
	}
}
