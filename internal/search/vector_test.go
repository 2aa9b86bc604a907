package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackclub/ship-search/internal/embeddings"
	"github.com/hackclub/ship-search/internal/storage"
)

// vec builds a full-dimension vector with the first component set
func vec(first float32) []float32 {
	v := make([]float32, embeddings.Dimensions)
	v[0] = first
	return v
}

func newTestIndex(t *testing.T) *VectorIndex {
	t.Helper()
	idx, err := NewVectorIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestNearestReturnsClosestByDistance(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	// Insertion order deliberately differs from distance order
	require.NoError(t, idx.Upsert(ctx, "far", vec(10)))
	require.NoError(t, idx.Upsert(ctx, "close", vec(1.5)))
	require.NoError(t, idx.Upsert(ctx, "middle", vec(5)))

	id, ok, err := idx.Nearest(ctx, vec(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "close", id)
}

func TestNearestEmptyIndex(t *testing.T) {
	idx := newTestIndex(t)

	_, ok, err := idx.Nearest(context.Background(), vec(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertReplacesVector(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "ship", vec(1)))
	require.NoError(t, idx.Upsert(ctx, "other", vec(50)))

	// Re-observing the same ship moves its vector; the old position is gone
	require.NoError(t, idx.Upsert(ctx, "ship", vec(100)))
	assert.Equal(t, 2, idx.Count())

	id, ok, err := idx.Nearest(ctx, vec(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "other", id)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "ship", vec(1)))
	require.NoError(t, idx.Remove(ctx, "ship"))
	assert.Equal(t, 0, idx.Count())

	// Removing an unindexed ship is a no-op
	require.NoError(t, idx.Remove(ctx, "ship"))

	_, ok, err := idx.Nearest(ctx, vec(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRebuildFromStore(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	desc := "described"
	require.NoError(t, db.Upsert(&storage.Ship{
		ID:          "embedded",
		Description: &desc,
		Embedding:   embeddings.Serialize(vec(2)),
	}))
	require.NoError(t, db.Upsert(&storage.Ship{ID: "bare"}))

	require.NoError(t, idx.Rebuild(ctx, db))

	// Only the row with an embedding enters the index
	assert.Equal(t, 1, idx.Count())

	id, ok, err := idx.Nearest(ctx, vec(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "embedded", id)
}
