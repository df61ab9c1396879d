package compound

import (
	"context"
	"log/slog"

	"orrery-server/internal/shared/errors"
)

// Store is the local persistence the resolver reads and fills.
type Store interface {
	GetCompound(ctx context.Context, cid int) (*Compound, error)
	InsertCompoundIfAbsent(ctx context.Context, cid int, name, formula string) error
}

// Cache is an optional read-through cache for catalog lookups.
type Cache interface {
	GetCatalogRecord(ctx context.Context, cid int) (*CatalogRecord, bool)
	SetCatalogRecord(ctx context.Context, cid int, record *CatalogRecord)
}

// Resolver returns the canonical local record for a CID, fetching it from
// the external catalog on first reference. Resolution is idempotent and
// race-free: concurrent first-seen resolutions of the same CID converge on
// a single stored row and every caller gets a usable record.
type Resolver struct {
	store   Store
	catalog Catalog
	cache   Cache
	logger  *slog.Logger
}

func NewResolver(store Store, catalog Catalog, cache Cache, logger *slog.Logger) *Resolver {
	logger.Debug("Initializing compound resolver")

	return &Resolver{
		store:   store,
		catalog: catalog,
		cache:   cache,
		logger:  logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, cid int) (*Compound, error) {
	logger := r.logger.With("component", "compound_resolver", "operation", "resolve", "cid", cid)

	existing, err := r.store.GetCompound(ctx, cid)
	if err != nil {
		return nil, errors.WrapInternal("failed to read local compound record", err)
	}
	if existing != nil {
		logger.Debug("Compound resolved from local store")
		return existing, nil
	}

	record, err := r.lookupCatalog(ctx, cid)
	if err != nil {
		return nil, err
	}
	if record == nil {
		logger.Debug("Compound not found in external catalog")
		return nil, errors.NotFoundf("compound %d not found in catalog", cid)
	}

	if err := r.store.InsertCompoundIfAbsent(ctx, cid, record.Name, record.Formula); err != nil {
		return nil, errors.WrapInternal("failed to store compound record", err)
	}

	// Re-read after insert-if-absent: a concurrent resolver may have won
	// the insert, and its row is the canonical one.
	stored, err := r.store.GetCompound(ctx, cid)
	if err != nil {
		return nil, errors.WrapInternal("failed to re-read compound record", err)
	}
	if stored == nil {
		return nil, errors.WrapInternal("compound record missing after insert", nil)
	}

	logger.Info("Compound resolved from external catalog", "name", stored.Name)
	return stored, nil
}

// ResolveAll resolves a set of CIDs, failing on the first unresolvable one.
func (r *Resolver) ResolveAll(ctx context.Context, cids []int) ([]Compound, error) {
	compounds := make([]Compound, 0, len(cids))
	for _, cid := range cids {
		compound, err := r.Resolve(ctx, cid)
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, *compound)
	}
	return compounds, nil
}

func (r *Resolver) lookupCatalog(ctx context.Context, cid int) (*CatalogRecord, error) {
	if r.cache != nil {
		if record, ok := r.cache.GetCatalogRecord(ctx, cid); ok {
			return record, nil
		}
	}

	record, err := r.catalog.Lookup(ctx, cid)
	if err != nil {
		return nil, errors.WrapExternal("catalog lookup failed", err)
	}

	if r.cache != nil && record != nil {
		r.cache.SetCatalogRecord(ctx, cid, record)
	}
	return record, nil
}
