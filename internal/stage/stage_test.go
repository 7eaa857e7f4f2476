package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/table"
)

var (
	users  = table.ID[ir.Record]("users")
	orders = table.ID[ir.Record]("orders")
)

func TestStage_String(t *testing.T) {
	s := LeftJoin(orders,
		Equal(table.Col(users, "id"), table.Col(orders, "user_id")),
		On(table.Col(users, "limit"), ir.OpGreaterOrEqual, table.Col(orders, "total")),
	)

	assert.Equal(t, "LEFT JOIN orders ON users.id = orders.user_id AND users.limit >= orders.total", s.String())
	assert.True(t, s.HasEquality())
	assert.Equal(t, "CROSS JOIN orders", CrossJoin(orders).String())
	assert.False(t, CrossJoin(orders).HasEquality())
}

func TestNew_CopiesLinks(t *testing.T) {
	links := []Link{Equal(table.Col(users, "id"), table.Col(orders, "user_id"))}
	s := New(Inner, "orders", links...)
	links[0].Op = ir.OpLess

	assert.Equal(t, ir.OpEqual, s.Links[0].Op)
}

func TestParseJoinKind(t *testing.T) {
	for _, k := range []JoinKind{Inner, Left, Right, Cross} {
		got, err := ParseJoinKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseJoinKind(" left ")
	require.NoError(t, err)
	assert.Equal(t, Left, got)

	_, err = ParseJoinKind("outer")
	assert.Error(t, err)
	assert.False(t, JoinKind(0).Valid())
	assert.Equal(t, "JoinKind(9)", JoinKind(9).String())
}
