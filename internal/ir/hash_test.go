package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDomainFor(t *testing.T) {
	assert.Equal(t, KeyInteger, KeyDomainFor(TypeInt, TypeLong))
	assert.Equal(t, KeyFloat, KeyDomainFor(TypeLong, TypeDouble))
	assert.Equal(t, KeyString, KeyDomainFor(TypeString, TypeString))
	assert.Equal(t, KeyBool, KeyDomainFor(TypeBool, TypeBool))
	assert.Equal(t, KeyNone, KeyDomainFor(TypeString, TypeInt))
}

func TestAppendKeyEqualValuesShareKeys(t *testing.T) {
	a, ok := AppendKey(nil, KeyInteger, Int(42))
	assert.True(t, ok)
	b, ok := AppendKey(nil, KeyInteger, Long(42))
	assert.True(t, ok)
	assert.Equal(t, a, b)
	assert.Equal(t, HashKey(a), HashKey(b))

	f1, _ := AppendKey(nil, KeyFloat, Long(2))
	f2, _ := AppendKey(nil, KeyFloat, Double(2.0))
	assert.Equal(t, f1, f2)
}

func TestAppendKeyDistinguishesStrings(t *testing.T) {
	// length prefix keeps ("ab","c") apart from ("a","bc") in composite keys
	k1, _ := AppendKey(nil, KeyString, String("ab"))
	k1, _ = AppendKey(k1, KeyString, String("c"))
	k2, _ := AppendKey(nil, KeyString, String("a"))
	k2, _ = AppendKey(k2, KeyString, String("bc"))

	assert.NotEqual(t, k1, k2)
}

func TestAppendKeyRejectsNullAndMismatch(t *testing.T) {
	_, ok := AppendKey(nil, KeyInteger, Null{})
	assert.False(t, ok)

	_, ok = AppendKey(nil, KeyInteger, String("1"))
	assert.False(t, ok)

	_, ok = AppendKey(nil, KeyNone, Long(1))
	assert.False(t, ok)
}
