package compound

import (
	"time"
)

// Compound is a locally cached chemical record, keyed by the external
// catalog identifier (CID). Rows are global, shared and immutable once
// fetched.
type Compound struct {
	CID       int       `json:"cid"`
	Name      string    `json:"name"`
	Formula   string    `json:"formula"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogRecord is the raw result of an external catalog lookup.
type CatalogRecord struct {
	Name    string `json:"name"`
	Formula string `json:"formula"`
}
