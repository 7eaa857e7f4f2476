package stream

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinkit/internal/ir"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPipeline_EmptyIsIdentity(t *testing.T) {
	p := New[int]()

	got, err := Collect(p.Realize(FromSlice([]int{3, 1, 2})))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, got)
	assert.Equal(t, "identity", p.Describe())
	assert.True(t, p.Empty())
}

func TestPipeline_FilterMapOrder(t *testing.T) {
	p := New[int]().
		Filter(func(v int) bool { return v%2 == 0 }).
		Map(func(v int) int { return v * 10 })

	got, err := Collect(p.Realize(FromSlice(ints(6))))
	require.NoError(t, err)
	assert.Equal(t, []int{20, 40, 60}, got)
}

func TestPipeline_AppendDoesNotMutateParent(t *testing.T) {
	base := New[int]().Filter(func(v int) bool { return v > 1 })

	limited, err := base.Limit(1)
	require.NoError(t, err)
	mapped := base.Map(func(v int) int { return -v })

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, limited.Len())
	assert.Equal(t, 2, mapped.Len())

	src := FromSlice([]int{1, 2, 3})

	got, err := Collect(base.Realize(src))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)

	got, err = Collect(limited.Realize(src))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got)

	got, err = Collect(mapped.Realize(src))
	require.NoError(t, err)
	assert.Equal(t, []int{-2, -3}, got)
}

func TestPipeline_SkipLimitArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		total int
		skip  int64
		limit int64
	}{
		{"both inside", 10, 3, 4},
		{"limit past end", 10, 8, 5},
		{"skip past end", 5, 9, 3},
		{"zero limit", 10, 0, 0},
		{"zero skip", 4, 0, 10},
		{"empty source", 0, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New[int]().Skip(tt.skip)
			require.NoError(t, err)
			p, err = p.Limit(tt.limit)
			require.NoError(t, err)

			n, err := Count(p.Realize(FromSlice(ints(tt.total))))
			require.NoError(t, err)

			want := min(tt.limit, max(0, int64(tt.total)-tt.skip))
			assert.Equal(t, want, n)
		})
	}
}

func TestPipeline_NegativeCountsRejected(t *testing.T) {
	p := New[int]()

	_, err := p.Skip(-1)
	require.Error(t, err)
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))

	_, err = p.Limit(-5)
	require.Error(t, err)
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))

	_, err = Skip[float64](-2)
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))
}

func TestPipeline_NilOperandRejected(t *testing.T) {
	p := New[string]()

	_, err := p.Append(Filter[string](nil))
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))

	_, err = p.Append(Map[string](nil))
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))

	_, err = p.Append(Action[string]{})
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))

	assert.Panics(t, func() { p.Peek(nil) })
}

func TestPipeline_RealizeTwiceIndependent(t *testing.T) {
	p, err := New[int]().Append(Distinct[int]())
	require.NoError(t, err)
	p, err = p.Skip(1)
	require.NoError(t, err)
	p, err = p.Limit(2)
	require.NoError(t, err)

	seq := p.Realize(FromSlice([]int{5, 5, 6, 7, 7, 8}))

	first, err := Collect(seq)
	require.NoError(t, err)
	second, err := Collect(seq)
	require.NoError(t, err)

	assert.Equal(t, []int{6, 7}, first)
	assert.Equal(t, first, second)
}

func TestPipeline_LazyPulls(t *testing.T) {
	var pulled int
	src := func(yield func(int, error) bool) {
		for i := 1; i <= 100; i++ {
			pulled++
			if !yield(i, nil) {
				return
			}
		}
	}

	p, err := New[int]().Limit(3)
	require.NoError(t, err)
	seq := p.Realize(src)
	assert.Zero(t, pulled, "nothing is read before ranging")

	got, err := Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 3, pulled)
}

func TestPipeline_SortedAndDistinct(t *testing.T) {
	p := New[string]().Sorted(strings.Compare)
	p, err := p.Append(Distinct[string]())
	require.NoError(t, err)

	got, err := Collect(p.Realize(FromSlice([]string{"b", "a", "c", "a", "b"})))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestPipeline_DistinctBy(t *testing.T) {
	type row struct {
		id   int
		tags []string
	}
	p, err := New[row]().Append(DistinctBy(func(r row) int { return r.id }))
	require.NoError(t, err)

	got, err := Collect(p.Realize(FromSlice([]row{{1, nil}, {2, nil}, {1, []string{"x"}}})))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].id)
	assert.Equal(t, 2, got[1].id)
}

func TestPipeline_FlatMap(t *testing.T) {
	p, err := New[int]().Append(FlatMap(func(v int) iter.Seq[int] {
		return slices.Values(slices.Repeat([]int{v}, v))
	}))
	require.NoError(t, err)

	got, err := Collect(p.Realize(FromSlice([]int{1, 0, 3})))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 3, 3}, got)
}

func TestPipeline_ErrorIsTerminal(t *testing.T) {
	boom := errors.New("boom")
	src := func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}
		if !yield(2, nil) {
			return
		}
		yield(0, boom)
	}

	p, err := New[int]().Skip(1)
	require.NoError(t, err)

	got, err := Collect(p.Map(func(v int) int { return v * 2 }).Realize(src))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{4}, got)
}

func TestPipeline_PrimitiveSpecializations(t *testing.T) {
	ip := NewInt().Filter(func(v int32) bool { return v > 1 })
	lp, err := NewLong().Limit(2)
	require.NoError(t, err)
	dp := NewDouble().Map(func(v float64) float64 { return v / 2 })

	assert.Equal(t, KindInt, ip.Kind())
	assert.Equal(t, KindLong, lp.Kind())
	assert.Equal(t, KindDouble, dp.Kind())
	assert.Equal(t, KindObject, New[ir.Long]().Kind())

	is, err := Collect(ip.Realize(FromSlice([]int32{1, 2, 3})))
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3}, is)

	ls, err := Collect(lp.Realize(FromSlice([]int64{7, 8, 9})))
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ls)

	ds, err := Collect(dp.Realize(FromSlice([]float64{1, 3})))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, ds)
}

func TestPipeline_OptimizedMergesAdjacentSkipAndLimit(t *testing.T) {
	p, err := New[int]().Skip(2)
	require.NoError(t, err)
	p, err = p.Skip(3)
	require.NoError(t, err)
	p, err = p.Limit(10)
	require.NoError(t, err)
	p, err = p.Limit(4)
	require.NoError(t, err)
	p = p.Filter(func(v int) bool { return v%2 == 1 })
	p, err = p.Skip(1)
	require.NoError(t, err)

	opt := p.Optimized()
	assert.Equal(t, "skip(5) -> limit(4) -> filter -> skip(1)", opt.Describe())
	assert.Equal(t, 6, p.Len(), "original keeps every action")

	src := FromSlice(ints(20))
	want, err := Collect(p.Realize(src))
	require.NoError(t, err)
	got, err := Collect(opt.Realize(src))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []int{9}, got)
}

func TestPipeline_Describe(t *testing.T) {
	p := New[int]().Filter(func(int) bool { return true })
	p, err := p.Skip(2)
	require.NoError(t, err)
	p, err = p.Limit(5)
	require.NoError(t, err)

	assert.Equal(t, "filter -> skip(2) -> limit(5)", p.Describe())

	ops := make([]Op, 0, p.Len())
	for _, a := range p.Actions() {
		ops = append(ops, a.Op())
	}
	assert.Equal(t, []Op{OpFilter, OpSkip, OpLimit}, ops)
	assert.Equal(t, int64(2), p.Actions()[1].Count())
}

func TestPipeline_DistinctOnPrimitives(t *testing.T) {
	longs, err := NewLong().Append(Distinct[int64]())
	require.NoError(t, err)
	gotLongs, err := Collect(longs.Realize(FromSlice([]int64{3, 3, 1, 3, 1})))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, gotLongs)

	doubles, err := NewDouble().Append(Distinct[float64]())
	require.NoError(t, err)
	gotDoubles, err := Collect(doubles.Realize(FromSlice([]float64{0.5, 2, 0.5, 2, 4})))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 2, 4}, gotDoubles)

	_, err = NewInt().Append(DistinctBy[int32, int32](nil))
	assert.True(t, ir.IsCode(err, ir.ErrCodeInvalidArgument))
}
