// Package sqlsource reads join input tables from SQLite.
//
// A Table is a restartable row source: every call to Rows issues a fresh
// SELECT and streams the result set one row at a time, converting each
// column to the ir.Value variant its descriptor declares.
//
// # Ordering
//
// Rows come back in rowid order, so two realizations over an unchanged
// database see the same sequence.
//
// # Connections
//
// A join holds one open cursor per table it is currently reading, so the
// pool is not limited to a single connection. Pragmas are passed in the DSN
// so that every pooled connection gets them.
//
//   - WAL mode: readers do not block each other
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
package sqlsource
