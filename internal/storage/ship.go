package storage

import "time"

// Ship represents one approved submission synced from the origin dataset.
// All fields except ID are optional; a later sweep replaces every field of
// an earlier one (last-write-wins by ID).
type Ship struct {
	ID             string     `json:"id"`
	HeardThrough   *string    `json:"heard_through"`
	GithubUsername *string    `json:"github_username"`
	Country        *string    `json:"country"`
	Hours          *float64   `json:"hours"`
	ScreenshotURL  *string    `json:"screenshot_url"` // expiring at origin, refreshed every sweep
	CodeURL        *string    `json:"code_url"`
	DemoURL        *string    `json:"demo_url"`
	Description    *string    `json:"description"`
	ApprovedAt     *time.Time `json:"approved_at"` // calendar date, no time-of-day
	YSWS           *string    `json:"ysws"`

	// Embedding is the serialized 1536-dimension float32 vector derived from
	// Description; nil whenever Description is absent or empty.
	Embedding []byte `json:"-"`
}

// HasDescription reports whether the ship has text worth embedding.
func (s *Ship) HasDescription() bool {
	return s.Description != nil && *s.Description != ""
}
