package web

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/hackclub/ship-search/internal/storage"
)

// Column indices in the legacy ships.csv export.
const (
	csvColYSWS    = 1
	csvColDemoURL = 10
	csvColCodeURL = 11
	csvColHours   = 23
	csvColCountry = 43
)

// CSVLister serves the legacy read-only listing mode from a CSV export
// instead of the synced store. Rows are read once per request; the file is
// small and the mode exists only as a fallback.
type CSVLister struct {
	path string
}

// NewCSVLister creates a lister over the given CSV export.
func NewCSVLister(path string) *CSVLister {
	return &CSVLister{path: path}
}

// List reads all ships from the CSV file.
func (c *CSVLister) List() ([]*storage.Ship, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rdr := csv.NewReader(f)

	rows, err := rdr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// First row is the header.
	var ships []*storage.Ship
	for i, row := range rows[1:] {
		if len(row) <= csvColCountry {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", i+1, csvColCountry+1, len(row))
		}

		ship := &storage.Ship{
			ID:      fmt.Sprintf("csv-%d", i+1),
			YSWS:    csvField(row, csvColYSWS),
			DemoURL: csvField(row, csvColDemoURL),
			CodeURL: csvField(row, csvColCodeURL),
			Country: csvField(row, csvColCountry),
		}
		if hours, err := strconv.ParseFloat(row[csvColHours], 64); err == nil {
			ship.Hours = &hours
		}

		ships = append(ships, ship)
	}

	return ships, nil
}

func csvField(row []string, i int) *string {
	v := row[i]
	return &v
}
