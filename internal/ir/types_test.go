package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		in   string
		want ColumnType
	}{
		{"int", TypeInt},
		{"INTEGER", TypeInt},
		{"long", TypeLong},
		{"bigint", TypeLong},
		{" double ", TypeDouble},
		{"float", TypeDouble},
		{"string", TypeString},
		{"text", TypeString},
		{"Bool", TypeBool},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColumnType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseColumnType("decimal")
	require.Error(t, err)
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "long", TypeLong.String())
	assert.Equal(t, "ColumnType(99)", ColumnType(99).String())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeInt, TypeOf(Int(1)))
	assert.Equal(t, TypeLong, TypeOf(Long(1)))
	assert.Equal(t, TypeDouble, TypeOf(Double(1)))
	assert.Equal(t, TypeString, TypeOf(String("")))
	assert.Equal(t, TypeBool, TypeOf(Bool(false)))
	assert.Equal(t, TypeUnknown, TypeOf(Null{}))
}
