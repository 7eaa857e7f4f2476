package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface representing a single column value.
// Only Null, String, Int, Long, Double and Bool implement this.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents a missing column value (SQL NULL).
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) irValue() {}

// String represents a text column value.
type String string

func (String) irValue() {}

// Int represents a 32-bit integer column value.
type Int int32

func (Int) irValue() {}

// Long represents a 64-bit integer column value.
type Long int64

func (Long) irValue() {}

// Double represents a 64-bit floating point column value.
// Equality is decided on the IEEE-754 bit pattern, see Equal.
type Double float64

func (Double) irValue() {}

// Bool represents a boolean column value.
type Bool bool

func (Bool) irValue() {}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Record is a dynamically typed row: column name to value.
// Records are produced by schema-driven row sources (SQLite, query files).
// Use SortedKeys() for deterministic iteration.
type Record map[string]Value

// Get returns the value stored under column, or Null when the column is missing.
func (r Record) Get(column string) Value {
	v, ok := r[column]
	if !ok || v == nil {
		return Null{}
	}
	return v
}

// SortedKeys returns keys in UTF-16 code unit order, the order used by
// canonical JSON. Go's sort.Strings uses UTF-8 byte order which differs for
// characters outside the BMP.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON implements json.Marshaler for Record with sorted keys.
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for golden output.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to JSON bytes.
// Non-finite doubles have no JSON representation and are rejected.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Long:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Double:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite double has no JSON form: %v", f)
		}
		return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case Bool:
		return []byte(strconv.FormatBool(bool(val))), nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// FromAny converts a Go value into a Value.
// Used by row sources that scan driver values (database/sql) and by the
// query loader for YAML literals.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(string(val)), nil
	case int32:
		return Int(val), nil
	case int:
		return Long(int64(val)), nil
	case int64:
		return Long(val), nil
	case float32:
		return Double(float64(val)), nil
	case float64:
		return Double(val), nil
	case bool:
		return Bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// Format renders a Value for human-readable output.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return strconv.Quote(string(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Long:
		return strconv.FormatInt(int64(val), 10)
	case Double:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}
