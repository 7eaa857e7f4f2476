package ir

import (
	"fmt"
	"strings"
)

// ColumnType is the declared type of a table column, as reported by the
// metadata collaborator.
type ColumnType int

const (
	// TypeUnknown is the zero value; it is never valid in a descriptor.
	TypeUnknown ColumnType = iota
	TypeInt
	TypeLong
	TypeDouble
	TypeString
	TypeBool
)

var columnTypeNames = map[ColumnType]string{
	TypeUnknown: "unknown",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeDouble:  "double",
	TypeString:  "string",
	TypeBool:    "bool",
}

// String implements fmt.Stringer.
func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// IsNumeric reports whether t is one of the numeric widths.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt || t == TypeLong || t == TypeDouble
}

// ParseColumnType parses a type name as written in catalog files.
// Matching is case-insensitive; "integer" and "float" are accepted aliases.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return TypeInt, nil
	case "long", "bigint":
		return TypeLong, nil
	case "double", "float":
		return TypeDouble, nil
	case "string", "text":
		return TypeString, nil
	case "bool", "boolean":
		return TypeBool, nil
	default:
		return TypeUnknown, fmt.Errorf("unknown column type %q", s)
	}
}

// TypeOf returns the column type a Value belongs to.
// Null has no type and returns TypeUnknown.
func TypeOf(v Value) ColumnType {
	switch v.(type) {
	case Int:
		return TypeInt
	case Long:
		return TypeLong
	case Double:
		return TypeDouble
	case String:
		return TypeString
	case Bool:
		return TypeBool
	default:
		return TypeUnknown
	}
}
