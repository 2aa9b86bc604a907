package airtable

// Record is one raw row from the origin table: a stable record id plus a
// loosely-typed field mapping.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// page is the paginated list response shape. Offset is the opaque
// continuation token; absent on the last page.
type page struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}
