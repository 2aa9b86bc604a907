// Package notify carries the end-of-sweep side effect: updating the tracking
// repository's description with the current ship count.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RepoUpdater patches a GitHub repository description after each sweep.
type RepoUpdater struct {
	baseURL    string
	repo       string // "owner/name"
	token      string
	httpClient *http.Client
}

// NewRepoUpdater creates an updater for the given repository slug. baseURL
// defaults to the public GitHub API when empty.
func NewRepoUpdater(repo, token, baseURL string) *RepoUpdater {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &RepoUpdater{
		baseURL: baseURL,
		repo:    repo,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SweepComplete writes the total into the repository description. The caller
// treats any error as log-and-continue.
func (u *RepoUpdater) SweepComplete(ctx context.Context, total int) error {
	body, err := json.Marshal(map[string]string{
		"description": fmt.Sprintf("Semantic index of %d approved ships", total),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s", u.baseURL, u.repo)
	req, err := http.NewRequestWithContext(ctx, "PATCH", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
