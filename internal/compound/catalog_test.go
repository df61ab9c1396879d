package compound

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCatalogLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compound/cid/962/property/Title,MolecularFormula/JSON", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"PropertyTable":{"Properties":[{"CID":962,"Title":"Water","MolecularFormula":"H2O"}]}}`)
	}))
	defer server.Close()

	catalog := NewHTTPCatalog(server.URL, 2*time.Second)

	record, err := catalog.Lookup(context.Background(), 962)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Water", record.Name)
	assert.Equal(t, "H2O", record.Formula)
}

func TestHTTPCatalogNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	catalog := NewHTTPCatalog(server.URL, 2*time.Second)

	record, err := catalog.Lookup(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestHTTPCatalogServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	catalog := NewHTTPCatalog(server.URL, 2*time.Second)

	_, err := catalog.Lookup(context.Background(), 962)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPCatalogEmptyPropertyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"PropertyTable":{"Properties":[]}}`)
	}))
	defer server.Close()

	catalog := NewHTTPCatalog(server.URL, 2*time.Second)

	record, err := catalog.Lookup(context.Background(), 962)
	require.NoError(t, err)
	assert.Nil(t, record)
}
