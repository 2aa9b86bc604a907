package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns a canned vector or error
type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeEmbedder) Health(ctx context.Context) error { return nil }

func TestSearchReturnsNearestShip(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "wrong", vec(40)))
	require.NoError(t, idx.Upsert(ctx, "right", vec(3)))

	svc := NewService(&fakeEmbedder{vec: vec(2)}, idx)

	id, err := svc.Search(ctx, "some query")
	require.NoError(t, err)
	assert.Equal(t, "right", id)
}

func TestSearchNoMatch(t *testing.T) {
	idx := newTestIndex(t)
	svc := NewService(&fakeEmbedder{vec: vec(1)}, idx)

	_, err := svc.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestSearchUpstreamFailure(t *testing.T) {
	idx := newTestIndex(t)
	svc := NewService(&fakeEmbedder{err: errors.New("boom")}, idx)

	_, err := svc.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrNoMatch)
}
