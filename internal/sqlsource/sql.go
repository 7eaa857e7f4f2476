package sqlsource

import (
	"fmt"
	"strings"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/table"
)

// selectAll builds the scan query for desc. Columns are listed in
// declaration order and rows are ordered by rowid for deterministic results.
//
// Example:
//
//	SELECT "id", "name" FROM "users" ORDER BY rowid ASC
func selectAll(desc table.Descriptor) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid ASC",
		columnList(desc), quote(desc.Name))
}

// createTable builds CREATE TABLE for desc.
func createTable(desc table.Descriptor) string {
	defs := make([]string, len(desc.Columns))
	for i, c := range desc.Columns {
		defs[i] = quote(c.Name) + " " + sqlType(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(desc.Name), strings.Join(defs, ", "))
}

// insertRow builds a parameterized INSERT for desc.
func insertRow(desc table.Descriptor) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(desc.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(desc.Name), columnList(desc), marks)
}

func columnList(desc table.Descriptor) string {
	cols := make([]string, len(desc.Columns))
	for i, c := range desc.Columns {
		cols[i] = quote(c.Name)
	}
	return strings.Join(cols, ", ")
}

// quote returns name as a SQLite identifier.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlType maps a column type to its SQLite declared type. BOOLEAN makes
// go-sqlite3 hand back Go bools on scan.
func sqlType(t ir.ColumnType) string {
	switch t {
	case ir.TypeInt, ir.TypeLong:
		return "INTEGER"
	case ir.TypeDouble:
		return "REAL"
	case ir.TypeBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}
