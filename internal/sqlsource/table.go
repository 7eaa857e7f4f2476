package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/table"
)

// Table streams the rows of one SQLite table as ir.Records.
type Table struct {
	db    *sql.DB
	desc  table.Descriptor
	query string
}

// Descriptor returns the table's metadata.
func (t *Table) Descriptor() table.Descriptor {
	return t.desc
}

// Rows implements table.Source. The query runs when the sequence is first
// pulled and the cursor is closed when the consumer stops or the rows run
// out. Query, scan and conversion failures end the sequence with an error.
func (t *Table) Rows(ctx context.Context) stream.Seq[ir.Record] {
	return func(yield func(ir.Record, error) bool) {
		rows, err := t.db.QueryContext(ctx, t.query)
		if err != nil {
			yield(nil, fmt.Errorf("query %s: %w", t.desc.Name, err))
			return
		}
		defer rows.Close()

		raw := make([]any, len(t.desc.Columns))
		ptrs := make([]any, len(raw))
		for i := range raw {
			ptrs[i] = &raw[i]
		}

		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, fmt.Errorf("scan %s: %w", t.desc.Name, err))
				return
			}
			rec, err := t.record(raw)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate %s: %w", t.desc.Name, err))
		}
	}
}

func (t *Table) record(raw []any) (ir.Record, error) {
	rec := make(ir.Record, len(raw))
	for i, c := range t.desc.Columns {
		v, err := convert(c.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("table %s: column %s: %w", t.desc.Name, c.Name, err)
		}
		rec[c.Name] = v
	}
	return rec, nil
}

// convert turns a scanned driver value into the Value variant of typ.
// SQLite is loosely typed, so numeric text and integer booleans are
// accepted; anything else that does not fit is an error.
func convert(typ ir.ColumnType, v any) (ir.Value, error) {
	if v == nil {
		return ir.Null{}, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch typ {
	case ir.TypeInt:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows int", n)
		}
		return ir.Int(n), nil
	case ir.TypeLong:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return ir.Long(n), nil
	case ir.TypeDouble:
		switch val := v.(type) {
		case float64:
			return ir.Double(val), nil
		case int64:
			return ir.Double(float64(val)), nil
		case string:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot read %q as double", val)
			}
			return ir.Double(f), nil
		}
	case ir.TypeString:
		switch val := v.(type) {
		case string:
			return ir.String(val), nil
		case int64:
			return ir.String(strconv.FormatInt(val, 10)), nil
		case float64:
			return ir.String(strconv.FormatFloat(val, 'g', -1, 64)), nil
		}
	case ir.TypeBool:
		switch val := v.(type) {
		case bool:
			return ir.Bool(val), nil
		case int64:
			if val == 0 || val == 1 {
				return ir.Bool(val == 1), nil
			}
		case string:
			b, err := strconv.ParseBool(val)
			if err == nil {
				return ir.Bool(b), nil
			}
		}
	}
	return nil, fmt.Errorf("cannot read %T value %v as %s", v, v, typ)
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return int64(val), nil
		}
		return 0, fmt.Errorf("value %v is not an integer", val)
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot read %q as integer", val)
		}
		return n, nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot read %T value %v as integer", v, v)
}
