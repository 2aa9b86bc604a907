package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hackclub/ship-search/internal/storage"
)

// KeywordIndex wraps a Bleve index over ship text fields. It backs the
// supplemental keyword search mode; semantic search goes through VectorIndex.
type KeywordIndex struct {
	index bleve.Index
}

// indexedShip is the projection of a ship stored in the keyword index
type indexedShip struct {
	ID             string
	Description    string
	Country        string
	YSWS           string
	GithubUsername string
}

// KeywordResult represents a keyword search hit
type KeywordResult struct {
	ID        string
	Score     float64
	Fragments map[string][]string // Highlighted snippets
}

// OpenKeyword opens or creates a Bleve index at path
func OpenKeyword(path string) (*KeywordIndex, error) {
	var idx bleve.Index
	var err error

	idx, err = bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &KeywordIndex{index: idx}, nil
}

// buildIndexMapping creates the index mapping for ship fields
func buildIndexMapping() mapping.IndexMapping {
	descriptionMapping := bleve.NewTextFieldMapping()
	descriptionMapping.Analyzer = "en" // English analyzer for better stemming

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Description", descriptionMapping)
	docMapping.AddFieldMappingsAt("Country", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("YSWS", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("GithubUsername", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the index
func (i *KeywordIndex) Close() error {
	return i.index.Close()
}

// IndexShip adds or updates a ship in the index
func (i *KeywordIndex) IndexShip(ship *storage.Ship) error {
	return i.index.Index(ship.ID, indexedShip{
		ID:             ship.ID,
		Description:    deref(ship.Description),
		Country:        deref(ship.Country),
		YSWS:           deref(ship.YSWS),
		GithubUsername: deref(ship.GithubUsername),
	})
}

// Search performs a keyword query (supports quotes, boolean operators, fuzzy ~)
func (i *KeywordIndex) Search(queryStr string, limit int) ([]*KeywordResult, error) {
	query := bleve.NewQueryStringQuery(queryStr)

	search := bleve.NewSearchRequestOptions(query, limit, 0, false)
	search.Highlight = bleve.NewHighlightWithStyle("html")

	results, err := i.index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []*KeywordResult
	for _, hit := range results.Hits {
		hits = append(hits, &KeywordResult{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		})
	}

	return hits, nil
}

// Rebuild indexes every ship from storage in one batch
func (i *KeywordIndex) Rebuild(db *storage.DB) error {
	ships, err := db.List()
	if err != nil {
		return fmt.Errorf("list ships: %w", err)
	}

	batch := i.index.NewBatch()
	for _, ship := range ships {
		err := batch.Index(ship.ID, indexedShip{
			ID:             ship.ID,
			Description:    deref(ship.Description),
			Country:        deref(ship.Country),
			YSWS:           deref(ship.YSWS),
			GithubUsername: deref(ship.GithubUsername),
		})
		if err != nil {
			return fmt.Errorf("batch index %s: %w", ship.ID, err)
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}

// Count returns the number of ships in the index
func (i *KeywordIndex) Count() (uint64, error) {
	return i.index.DocCount()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
