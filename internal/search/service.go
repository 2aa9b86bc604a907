package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackclub/ship-search/internal/embeddings"
)

var (
	// ErrNoMatch is returned when no ship has a stored embedding.
	ErrNoMatch = errors.New("no ship matches the query")

	// ErrUpstream wraps failures of the embedding call for the query text.
	ErrUpstream = errors.New("embedding service failed")
)

// Service answers free-text semantic queries: it embeds the query and
// returns the id of the single nearest ship. The embedder is injected so the
// service is testable without network access.
type Service struct {
	embedder embeddings.Embedder
	index    *VectorIndex
}

// NewService creates a search service over the given index.
func NewService(embedder embeddings.Embedder, index *VectorIndex) *Service {
	return &Service{embedder: embedder, index: index}
}

// Search returns the id of the ship closest to the query text. Callers
// distinguish outcomes with errors.Is against ErrNoMatch and ErrUpstream.
func (s *Service) Search(ctx context.Context, query string) (string, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	id, ok, err := s.index.Nearest(ctx, vec)
	if err != nil {
		return "", fmt.Errorf("nearest: %w", err)
	}
	if !ok {
		return "", ErrNoMatch
	}

	return id, nil
}
