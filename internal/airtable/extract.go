package airtable

import (
	"errors"
	"strings"
	"time"

	"github.com/hackclub/ship-search/internal/storage"
)

// ErrMissingID is returned when a raw record has no id. Without a key the
// record cannot be upserted, so this failure is fatal for the record.
var ErrMissingID = errors.New("record has no id")

const dateFormat = "2006-01-02"

// ExtractShip maps one raw origin record into a Ship. Every field has an
// independent rule; any failure other than a missing id degrades that field
// to nil rather than aborting the record. Pure function, no I/O.
func ExtractShip(rec Record) (*storage.Ship, error) {
	if rec.ID == "" {
		return nil, ErrMissingID
	}

	f := rec.Fields

	return &storage.Ship{
		ID:             sanitize(rec.ID),
		HeardThrough:   stringField(f, "How did you hear about this?"),
		GithubUsername: stringField(f, "GitHub Username"),
		Country:        firstStringField(f, "Hack Clubber–Geocoded Country"),
		Hours:          floatField(f, "Hours Spent"),
		ScreenshotURL:  screenshotURL(f),
		CodeURL:        stringField(f, "Code URL"),
		DemoURL:        stringField(f, "Playable URL"),
		Description:    stringField(f, "Description"),
		ApprovedAt:     dateField(f, "Approved At"),
		YSWS:           firstStringField(f, "YSWS–Name"),
	}, nil
}

// sanitize strips null characters; the origin occasionally contains them.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// stringField extracts a plain string field, sanitized.
func stringField(fields map[string]any, name string) *string {
	s, ok := fields[name].(string)
	if !ok {
		return nil
	}
	s = sanitize(s)
	return &s
}

// firstStringField extracts the first element of an array-of-strings field.
func firstStringField(fields map[string]any, name string) *string {
	arr, ok := fields[name].([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	s, ok := arr[0].(string)
	if !ok {
		return nil
	}
	s = sanitize(s)
	return &s
}

// floatField extracts a numeric field.
func floatField(fields map[string]any, name string) *float64 {
	v, ok := fields[name].(float64)
	if !ok {
		return nil
	}
	return &v
}

// dateField extracts a YYYY-MM-DD calendar date.
func dateField(fields map[string]any, name string) *time.Time {
	s, ok := fields[name].(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil
	}
	return &t
}

// screenshotURL digs out Screenshot[0].url. Screenshot attachments carry
// expiring URLs, which is why the field is re-read on every sweep.
func screenshotURL(fields map[string]any) *string {
	arr, ok := fields["Screenshot"].([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	obj, ok := arr[0].(map[string]any)
	if !ok {
		return nil
	}
	u, ok := obj["url"].(string)
	if !ok {
		return nil
	}
	u = sanitize(u)
	return &u
}
