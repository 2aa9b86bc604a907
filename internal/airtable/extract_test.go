package airtable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractShip(t *testing.T) {
	rec := Record{
		ID: "rec123",
		Fields: map[string]any{
			"How did you hear about this?":  "A friend",
			"GitHub Username":               "octocat",
			"Hack Clubber–Geocoded Country": []any{"Canada", "USA"},
			"Hours Spent":                   12.5,
			"Screenshot":                    []any{map[string]any{"url": "https://cdn.example.com/shot.png"}},
			"Code URL":                      "https://github.com/octocat/ship",
			"Playable URL":                  "https://ship.example.com",
			"Description":                   "A tiny game",
			"Approved At":                   "2024-03-15",
			"YSWS–Name":                     []any{"Sprig"},
		},
	}

	ship, err := ExtractShip(rec)
	require.NoError(t, err)

	assert.Equal(t, "rec123", ship.ID)
	require.NotNil(t, ship.HeardThrough)
	assert.Equal(t, "A friend", *ship.HeardThrough)
	require.NotNil(t, ship.GithubUsername)
	assert.Equal(t, "octocat", *ship.GithubUsername)
	require.NotNil(t, ship.Country)
	assert.Equal(t, "Canada", *ship.Country)
	require.NotNil(t, ship.Hours)
	assert.Equal(t, 12.5, *ship.Hours)
	require.NotNil(t, ship.ScreenshotURL)
	assert.Equal(t, "https://cdn.example.com/shot.png", *ship.ScreenshotURL)
	require.NotNil(t, ship.CodeURL)
	assert.Equal(t, "https://github.com/octocat/ship", *ship.CodeURL)
	require.NotNil(t, ship.DemoURL)
	assert.Equal(t, "https://ship.example.com", *ship.DemoURL)
	require.NotNil(t, ship.Description)
	assert.Equal(t, "A tiny game", *ship.Description)
	require.NotNil(t, ship.ApprovedAt)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *ship.ApprovedAt)
	require.NotNil(t, ship.YSWS)
	assert.Equal(t, "Sprig", *ship.YSWS)
}

func TestExtractShipMissingID(t *testing.T) {
	_, err := ExtractShip(Record{Fields: map[string]any{"Description": "no key"}})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestExtractShipMissingFieldsDegradeToNil(t *testing.T) {
	ship, err := ExtractShip(Record{ID: "rec1", Fields: map[string]any{}})
	require.NoError(t, err)

	assert.Nil(t, ship.HeardThrough)
	assert.Nil(t, ship.GithubUsername)
	assert.Nil(t, ship.Country)
	assert.Nil(t, ship.Hours)
	assert.Nil(t, ship.ScreenshotURL)
	assert.Nil(t, ship.CodeURL)
	assert.Nil(t, ship.DemoURL)
	assert.Nil(t, ship.Description)
	assert.Nil(t, ship.ApprovedAt)
	assert.Nil(t, ship.YSWS)
}

func TestExtractShipWrongTypesDegradeToNil(t *testing.T) {
	ship, err := ExtractShip(Record{
		ID: "rec1",
		Fields: map[string]any{
			"Description": 42,
			"Hours Spent": "twelve",
			"Approved At": "15/03/2024",
			"YSWS–Name":   "not an array",
			"Screenshot":  []any{"not an object"},
		},
	})
	require.NoError(t, err)

	assert.Nil(t, ship.Description)
	assert.Nil(t, ship.Hours)
	assert.Nil(t, ship.ApprovedAt)
	assert.Nil(t, ship.YSWS)
	assert.Nil(t, ship.ScreenshotURL)
}

func TestExtractShipStripsNullBytes(t *testing.T) {
	ship, err := ExtractShip(Record{
		ID: "rec1",
		Fields: map[string]any{
			"Description": "hello\x00 world",
		},
	})
	require.NoError(t, err)

	// Only the null character is removed, nothing else altered
	require.NotNil(t, ship.Description)
	assert.Equal(t, "hello world", *ship.Description)
}
