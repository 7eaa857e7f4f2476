package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinkit/internal/ir"
	"github.com/roach88/joinkit/internal/join"
	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/table"
)

const ordersQuery = `
name: orders per user
from: users
where:
  orders:
    - {column: amount, op: ">=", value: 10}
stages:
  - table: orders
    kind: left
    on:
      - {left: users.id, op: "=", right: orders.user_id}
order_by: [users.id, orders.amount desc]
`

func shopRegistry(t *testing.T) *table.Registry {
	t.Helper()
	reg := table.NewRegistry()

	users := table.Descriptor{
		Name:    "users",
		Columns: []table.Column{{Name: "id", Type: ir.TypeLong}, {Name: "name", Type: ir.TypeString}},
	}
	orders := table.Descriptor{
		Name:    "orders",
		Columns: []table.Column{{Name: "user_id", Type: ir.TypeLong}, {Name: "amount", Type: ir.TypeDouble}},
	}
	require.NoError(t, table.Register(reg, table.ID[ir.Record]("users"), users, table.FromSlice([]ir.Record{
		{"id": ir.Long(2), "name": ir.String("bob")},
		{"id": ir.Long(1), "name": ir.String("ada")},
		{"id": ir.Long(3), "name": ir.Null{}},
	})))
	require.NoError(t, table.Register(reg, table.ID[ir.Record]("orders"), orders, table.FromSlice([]ir.Record{
		{"user_id": ir.Long(1), "amount": ir.Double(15)},
		{"user_id": ir.Long(1), "amount": ir.Double(40)},
		{"user_id": ir.Long(1), "amount": ir.Double(5)},
		{"user_id": ir.Long(2), "amount": ir.Double(3)},
	})))
	return reg
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ordersQuery), 0o644))

	q, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "orders per user", q.Name)
	assert.Equal(t, []string{"users", "orders"}, q.Tables())
	require.Len(t, q.Stages, 1)
	assert.Equal(t, "left", q.Stages[0].Kind)
	assert.Nil(t, q.Limit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read query file")
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "from: users\nstagez: []\n", "stagez"},
		{"missing from", "stages: []\n", "from is required"},
		{"negative skip", "from: users\nskip: -1\n", "skip must be non-negative"},
		{"negative limit", "from: users\nlimit: -2\n", "limit must be non-negative"},
		{"stage without table", "from: users\nstages: [{kind: inner}]\n", "stages[0]: table is required"},
		{"bad kind", "from: users\nstages: [{table: b, kind: outer}]\n", "unknown join kind"},
		{"bad reference", "from: a\nstages: [{table: b, on: [{left: id, right: b.id}]}]\n", "stages[0].on[0].left"},
		{"bad operator", "from: a\nstages: [{table: b, on: [{left: a.id, op: '~', right: b.id}]}]\n", "unknown operator"},
		{"condition without column", "from: a\nwhere: {a: [{op: '=', value: 1}]}\n", "column is required"},
		{"condition without value", "from: a\nwhere: {a: [{column: id, op: '='}]}\n", "value is required"},
		{"bad order", "from: a\norder_by: ['a.id sideways']\n", "direction must be asc or desc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild(t *testing.T) {
	q, err := Parse([]byte(`
from: a
stages:
  - table: b
    on:
      - {left: a.id, right: b.a_id}
      - {left: a.n, op: "<", right: b.n}
  - table: c
    kind: cross
`))
	require.NoError(t, err)

	stages := q.Build()
	require.Len(t, stages, 2)
	assert.Equal(t, stage.Inner, stages[0].Kind)
	assert.Equal(t, "INNER JOIN b ON a.id = b.a_id AND a.n < b.n", stages[0].String())
	assert.Equal(t, stage.Cross, stages[1].Kind)
	assert.Empty(t, stages[1].Links)
}

func TestRun(t *testing.T) {
	q, err := Parse([]byte(ordersQuery))
	require.NoError(t, err)

	seq, err := q.Run(context.Background(), shopRegistry(t))
	require.NoError(t, err)

	results, err := stream.Collect(seq)
	require.NoError(t, err)

	var got []string
	for _, r := range results {
		got = append(got, r.String())
	}
	// The filter drops orders under 10 before joining, so bob and user 3
	// keep no order.
	assert.Equal(t, []string{
		"(map[id:1 name:ada], map[amount:40 user_id:1])",
		"(map[id:1 name:ada], map[amount:15 user_id:1])",
		"(map[id:2 name:bob], absent)",
		"(map[id:3 name:{}], absent)",
	}, got)
}

func TestRun_SkipAndLimit(t *testing.T) {
	q, err := Parse([]byte(ordersQuery + "skip: 1\nlimit: 2\n"))
	require.NoError(t, err)

	seq, err := q.Run(context.Background(), shopRegistry(t), join.WithStrategy(join.StrategyNestedLoop))
	require.NoError(t, err)
	results, err := stream.Collect(seq)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "(map[id:1 name:ada], map[amount:15 user_id:1])", results[0].String())
	assert.Equal(t, "(map[id:2 name:bob], absent)", results[1].String())
}

func TestRun_NullChecks(t *testing.T) {
	q, err := Parse([]byte(`
from: users
where:
  users:
    - {column: name, op: is null}
`))
	require.NoError(t, err)

	seq, err := q.Run(context.Background(), shopRegistry(t))
	require.NoError(t, err)
	results, err := stream.Collect(seq)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "(map[id:3 name:{}])", results[0].String())
}

func TestPlan(t *testing.T) {
	q, err := Parse([]byte(ordersQuery))
	require.NoError(t, err)

	plan, err := q.Plan(shopRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0: FROM users",
		"1: LEFT JOIN orders ON users.id = orders.user_id [strategy=indexed, build=new]",
	}, plan.Explain())
}

func TestPlan_ForcedStrategy(t *testing.T) {
	q, err := Parse([]byte(ordersQuery + "strategy: nested-loop\n"))
	require.NoError(t, err)

	plan, err := q.Plan(shopRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, join.StrategyNestedLoop, plan.Nodes[0].Strategy)
}

func TestPlan_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code ir.ErrorCode
	}{
		{"unknown table", "from: users\nstages: [{table: refunds, kind: cross}]\n", ir.ErrCodeUnresolvedTableReference},
		{"unknown link column", "from: users\nstages: [{table: orders, on: [{left: users.email, right: orders.user_id}]}]\n", ir.ErrCodeUnresolvedTableReference},
		{"incompatible link", "from: users\nstages: [{table: orders, on: [{left: users.name, right: orders.amount}]}]\n", ir.ErrCodeIncompatibleComparison},
		{"unknown filter column", "from: users\nwhere: {users: [{column: email, op: '=', value: x}]}\n", ir.ErrCodeUnresolvedTableReference},
		{"incompatible filter", "from: users\nwhere: {users: [{column: id, op: '<', value: abc}]}\n", ir.ErrCodeIncompatibleComparison},
		{"filter on unjoined table", "from: users\nwhere: {orders: [{column: amount, op: '>', value: 1}]}\n", ir.ErrCodeInvalidArgument},
		{"unknown order column", "from: users\norder_by: [users.email]\n", ir.ErrCodeUnresolvedTableReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse([]byte(tt.doc))
			require.NoError(t, err)

			_, err = q.Plan(shopRegistry(t))
			require.Error(t, err)
			assert.Equal(t, tt.code, ir.CodeOf(err), err.Error())
		})
	}
}

func TestOptions_BadStrategy(t *testing.T) {
	q, err := Parse([]byte("from: users\nstrategy: hash\n"))
	require.NoError(t, err)
	_, err = q.Options()
	assert.Error(t, err)
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 0, compareValues(ir.Null{}, nil))
	assert.Equal(t, -1, compareValues(ir.Null{}, ir.Int(1)))
	assert.Equal(t, 1, compareValues(ir.Int(1), ir.Null{}))
	assert.Equal(t, -1, compareValues(ir.Int(1), ir.Double(1.5)))
	assert.Equal(t, 0, compareValues(ir.String("a"), ir.String("a")))
}

func TestFilters(t *testing.T) {
	q, err := Parse([]byte(`
from: users
where:
  users:
    - {column: name, op: "IS  NULL"}
    - {column: id, op: greater_or_equal, value: 2}
  orders:
    - {column: note, op: "!=", value: "x"}
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"users":  "name is null AND id >= 2",
		"orders": `note <> "x"`,
	}, q.Filters())
}
