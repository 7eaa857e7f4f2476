package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Verify all types implement Value (compile-time check via assignment)
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Long(42)
	var _ Value = Double(4.2)
	var _ Value = Bool(true)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))
	assert.False(t, IsNull(Long(0)))
}

func TestRecordSortedKeys(t *testing.T) {
	r := Record{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, r.SortedKeys())
}

func TestRecordSortedKeysUTF16Order(t *testing.T) {
	// 'A' = 65, 'a' = 97, so uppercase sorts first at each position
	r := Record{"a": Int(1), "A": Int(2), "aa": Int(3), "aA": Int(4), "Aa": Int(5), "AA": Int(6)}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, r.SortedKeys())
}

func TestRecordGet(t *testing.T) {
	r := Record{"id": Long(7), "gone": nil}

	assert.Equal(t, Long(7), r.Get("id"))
	assert.Equal(t, Null{}, r.Get("missing"))
	assert.Equal(t, Null{}, r.Get("gone"))
}

func TestRecordMarshalJSON(t *testing.T) {
	r := Record{"name": String("x"), "id": Long(1), "score": Double(2.5), "ok": Bool(true), "nothing": Null{}}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"x","nothing":null,"ok":true,"score":2.5}`, string(data))
}

func TestMarshalValueRejectsNonFinite(t *testing.T) {
	_, err := MarshalValue(Double(math.NaN()))
	require.Error(t, err)

	_, err = MarshalValue(Double(math.Inf(1)))
	require.Error(t, err)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "a", String("a")},
		{"bytes", []byte("b"), String("b")},
		{"int32", int32(3), Int(3)},
		{"int", 4, Long(4)},
		{"int64", int64(5), Long(5)},
		{"float64", 1.5, Double(1.5)},
		{"bool", true, Bool(true)},
		{"value passthrough", Long(9), Long(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FromAny(struct{}{})
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "null", Format(Null{}))
	assert.Equal(t, `"x"`, Format(String("x")))
	assert.Equal(t, "12", Format(Int(12)))
	assert.Equal(t, "-3", Format(Long(-3)))
	assert.Equal(t, "0.25", Format(Double(0.25)))
	assert.Equal(t, "false", Format(Bool(false)))
}
