package ir

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// KeyDomain selects how values are encoded into index keys for an equality
// link. Both sides of a link must be encoded in the same domain so that
// values which compare Equal produce identical key bytes.
type KeyDomain byte

const (
	// KeyNone marks a pair of column types that cannot share an index key.
	KeyNone KeyDomain = iota
	// KeyInteger encodes Int and Long as big-endian int64.
	KeyInteger
	// KeyFloat encodes every numeric width as IEEE-754 bits of a float64.
	KeyFloat
	// KeyString encodes length-prefixed bytes.
	KeyString
	// KeyBool encodes a single byte.
	KeyBool
)

// KeyDomainFor returns the shared key domain for an equality link between
// columns of type left and right.
func KeyDomainFor(left, right ColumnType) KeyDomain {
	switch {
	case (left == TypeInt || left == TypeLong) && (right == TypeInt || right == TypeLong):
		return KeyInteger
	case left.IsNumeric() && right.IsNumeric():
		return KeyFloat
	case left == TypeString && right == TypeString:
		return KeyString
	case left == TypeBool && right == TypeBool:
		return KeyBool
	default:
		return KeyNone
	}
}

// AppendKey appends the key encoding of v in domain d to buf.
// Returns false when v is Null or cannot be represented in d; such rows can
// never match under equality and are left out of indexes.
//
// Encoding equality is necessary for Equal to hold, never sufficient on its
// own: callers re-check candidates with Equal to discard hash collisions.
func AppendKey(buf []byte, d KeyDomain, v Value) ([]byte, bool) {
	if IsNull(v) {
		return buf, false
	}
	buf = append(buf, byte(d))
	switch d {
	case KeyInteger:
		n, ok := asInteger(v)
		if !ok {
			return buf, false
		}
		return binary.BigEndian.AppendUint64(buf, uint64(n)), true
	case KeyFloat:
		f, ok := asFloat(v)
		if !ok {
			return buf, false
		}
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(f)), true
	case KeyString:
		s, ok := v.(String)
		if !ok {
			return buf, false
		}
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		return append(buf, s...), true
	case KeyBool:
		b, ok := v.(Bool)
		if !ok {
			return buf, false
		}
		if b {
			return append(buf, 1), true
		}
		return append(buf, 0), true
	default:
		return buf, false
	}
}

// HashKey hashes encoded key bytes for index bucketing.
func HashKey(key []byte) uint64 {
	return xxhash.Sum64(key)
}
