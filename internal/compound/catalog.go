package compound

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Catalog looks up chemical data in an external, read-only catalog.
// A nil record with a nil error means the catalog has no entry for the CID.
type Catalog interface {
	Lookup(ctx context.Context, cid int) (*CatalogRecord, error)
}

// HTTPCatalog queries a PUG-style REST catalog by compound id.
type HTTPCatalog struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCatalog(baseURL string, timeout time.Duration) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type propertyTableResponse struct {
	PropertyTable struct {
		Properties []struct {
			CID              int    `json:"CID"`
			Title            string `json:"Title"`
			MolecularFormula string `json:"MolecularFormula"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

func (c *HTTPCatalog) Lookup(ctx context.Context, cid int) (*CatalogRecord, error) {
	logger := slog.With("component", "compound_catalog", "operation", "lookup", "cid", cid)
	logger.Debug("Requesting compound from external catalog")

	url := fmt.Sprintf("%s/compound/cid/%d/property/Title,MolecularFormula/JSON", c.baseURL, cid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("Failed to request compound from catalog", "error", err)
		return nil, fmt.Errorf("failed to request compound from catalog: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		logger.Debug("Catalog has no entry for CID")
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("Catalog returned error status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body propertyTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.Error("Failed to decode catalog response", "error", err)
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	if len(body.PropertyTable.Properties) == 0 {
		logger.Debug("Catalog response contained no properties")
		return nil, nil
	}

	prop := body.PropertyTable.Properties[0]
	logger.Debug("Compound retrieved from catalog", "name", prop.Title)

	return &CatalogRecord{
		Name:    prop.Title,
		Formula: prop.MolecularFormula,
	}, nil
}
