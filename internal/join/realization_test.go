package join

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinkit/internal/stage"
	"github.com/roach88/joinkit/internal/stream"
	"github.com/roach88/joinkit/internal/tuple"
)

func TestRealizationID_IsUUIDv7(t *testing.T) {
	parsed, err := uuid.Parse(newRealizationID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, newRealizationID(), newRealizationID())
}

func TestSequentialIDs(t *testing.T) {
	next := SequentialIDs("run")
	assert.Equal(t, "run-1", next())
	assert.Equal(t, "run-2", next())

	other := SequentialIDs("run")
	assert.Equal(t, "run-1", other(), "each call starts its own sequence")
}

func TestSequentialIDs_OnePerRealization(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	next := SequentialIDs("r")
	ids := func() string {
		id := next()
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
		return id
	}

	c := ForRegistry(abRegistry(t), WithIDs(ids))
	j, err := Create2(c, []stage.Stage{stage.InnerJoin(tableB, stage.Equal(aID, bID))},
		tuple.Of2[rowA, rowB], tableA, tableB)
	require.NoError(t, err)

	for range 3 {
		_, err := stream.Count(j.Seq(context.Background()))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"r-1", "r-2", "r-3"}, seen)
}
