package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/vecgo"

	"github.com/hackclub/ship-search/internal/embeddings"
	"github.com/hackclub/ship-search/internal/storage"
)

// VectorIndex answers nearest-neighbor queries over ship embeddings. It is
// backed by a flat (exhaustive) squared-L2 index, so the returned neighbor is
// the true closest match, not an approximation. Only ships with an embedding
// are present; a ship whose description disappears is removed again.
//
// The SQLite store remains the persisted truth; the index is rebuilt from it
// at startup and kept in step by the sweep engine on every upsert.
type VectorIndex struct {
	mu  sync.Mutex
	vg  *vecgo.Vecgo[string]
	ids map[string]uint64 // ship id -> vector id, for last-write-wins updates
}

// NewVectorIndex creates an empty index sized to the embedding model.
func NewVectorIndex() (*VectorIndex, error) {
	vg, err := vecgo.Flat[string](embeddings.Dimensions).
		SquaredL2().
		Build()
	if err != nil {
		return nil, fmt.Errorf("build flat index: %w", err)
	}

	return &VectorIndex{
		vg:  vg,
		ids: make(map[string]uint64),
	}, nil
}

// Close releases the underlying index.
func (x *VectorIndex) Close() error {
	return x.vg.Close()
}

// Upsert inserts or replaces the vector for a ship.
func (x *VectorIndex) Upsert(ctx context.Context, shipID string, vec []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	item := vecgo.VectorWithData[string]{Vector: vec, Data: shipID}

	if vid, ok := x.ids[shipID]; ok {
		if err := x.vg.Update(ctx, vid, item); err != nil {
			return fmt.Errorf("update vector %s: %w", shipID, err)
		}
		return nil
	}

	vid, err := x.vg.Insert(ctx, item)
	if err != nil {
		return fmt.Errorf("insert vector %s: %w", shipID, err)
	}
	x.ids[shipID] = vid
	return nil
}

// Remove drops a ship's vector, if present. Called when a later sweep
// re-observes the ship without a description.
func (x *VectorIndex) Remove(ctx context.Context, shipID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	vid, ok := x.ids[shipID]
	if !ok {
		return nil
	}
	if err := x.vg.Delete(ctx, vid); err != nil {
		return fmt.Errorf("delete vector %s: %w", shipID, err)
	}
	delete(x.ids, shipID)
	return nil
}

// Nearest returns the id of the ship whose embedding is closest to query by
// Euclidean distance. ok is false when the index holds no vectors.
func (x *VectorIndex) Nearest(ctx context.Context, query []float32) (string, bool, error) {
	results, err := x.vg.KNNSearch(ctx, query, 1)
	if err != nil {
		return "", false, fmt.Errorf("knn search: %w", err)
	}
	if len(results) == 0 {
		return "", false, nil
	}
	return results[0].Data, true, nil
}

// Count returns the number of indexed vectors.
func (x *VectorIndex) Count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.ids)
}

// Rebuild loads every stored embedding into the index. Used at startup so
// search works before the first sweep completes.
func (x *VectorIndex) Rebuild(ctx context.Context, db *storage.DB) error {
	ships, err := db.List()
	if err != nil {
		return fmt.Errorf("list ships: %w", err)
	}

	for _, ship := range ships {
		vec := embeddings.Deserialize(ship.Embedding)
		if vec == nil {
			continue
		}
		if err := x.Upsert(ctx, ship.ID, vec); err != nil {
			return fmt.Errorf("index %s: %w", ship.ID, err)
		}
	}

	return nil
}
