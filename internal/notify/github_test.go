package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepComplete(t *testing.T) {
	var gotPath, gotAuth, gotDescription string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotDescription = body["description"]
	}))
	defer srv.Close()

	updater := NewRepoUpdater("hackclub/ship-search", "gh-token", srv.URL)

	require.NoError(t, updater.SweepComplete(context.Background(), 1234))

	assert.Equal(t, "PATCH /repos/hackclub/ship-search", gotPath)
	assert.Equal(t, "Bearer gh-token", gotAuth)
	assert.Contains(t, gotDescription, "1234")
}

func TestSweepCompleteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	updater := NewRepoUpdater("hackclub/ship-search", "gh-token", srv.URL)

	err := updater.SweepComplete(context.Background(), 1)
	assert.ErrorContains(t, err, "status 403")
}
