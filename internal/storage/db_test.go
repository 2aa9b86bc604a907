package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strptr(s string) *string { return &s }

func dateptr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestUpsertIdempotent(t *testing.T) {
	db := openTestDB(t)

	hours := 4.5
	ship := &Ship{
		ID:          "rec1",
		Description: strptr("a game"),
		Hours:       &hours,
		Embedding:   []byte{1, 0, 0, 0},
	}

	require.NoError(t, db.Upsert(ship))
	require.NoError(t, db.Upsert(ship))

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := db.Get("rec1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a game", *got.Description)
	assert.Equal(t, 4.5, *got.Hours)
	assert.Equal(t, []byte{1, 0, 0, 0}, got.Embedding)
}

func TestUpsertLastWriteWins(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Upsert(&Ship{
		ID:          "rec1",
		Description: strptr("A"),
		Country:     strptr("Canada"),
		Embedding:   []byte{1, 1, 1, 1},
	}))

	// A later sweep replaces every field; no field-level merge
	require.NoError(t, db.Upsert(&Ship{
		ID:          "rec1",
		Description: strptr("B"),
		Embedding:   []byte{2, 2, 2, 2},
	}))

	got, err := db.Get("rec1")
	require.NoError(t, err)
	assert.Equal(t, "B", *got.Description)
	assert.Nil(t, got.Country)
	assert.Equal(t, []byte{2, 2, 2, 2}, got.Embedding)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertClearsEmbedding(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Upsert(&Ship{ID: "rec1", Description: strptr("A"), Embedding: []byte{1, 0, 0, 0}}))
	require.NoError(t, db.Upsert(&Ship{ID: "rec1"}))

	got, err := db.Get("rec1")
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Embedding)
}

func TestListOrderedByApprovalDate(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Upsert(&Ship{ID: "newest", ApprovedAt: dateptr(2024, 6, 1)}))
	require.NoError(t, db.Upsert(&Ship{ID: "oldest", ApprovedAt: dateptr(2023, 1, 15)}))
	require.NoError(t, db.Upsert(&Ship{ID: "undated"}))
	require.NoError(t, db.Upsert(&Ship{ID: "middle", ApprovedAt: dateptr(2024, 2, 20)}))

	ships, err := db.List()
	require.NoError(t, err)
	require.Len(t, ships, 4)

	// NULL approved_at sorts first under ascending order
	assert.Equal(t, "undated", ships[0].ID)
	assert.Equal(t, "oldest", ships[1].ID)
	assert.Equal(t, "middle", ships[2].ID)
	assert.Equal(t, "newest", ships[3].ID)
}

func TestListEmpty(t *testing.T) {
	db := openTestDB(t)

	ships, err := db.List()
	require.NoError(t, err)
	assert.Empty(t, ships)
}

func TestGetMissing(t *testing.T) {
	db := openTestDB(t)

	got, err := db.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}
