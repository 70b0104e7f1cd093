package stationcache

import (
	"context"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

// CachedListing serves the station listing from cache and falls back to the query handler.
// Cache failures degrade to uncached reads.
//
// A fill reads from the primary and is only stored if no Invalidate happened since it started,
// so a listing read before a commit never outlives that commit's invalidation.
type CachedListing struct {
	source shell.QueryHandler[stationlisting.Query, stationlisting.Stations]
	cache  Cache
	logger eventstore.ContextualLogger
}

// NewCachedListing creates a CachedListing. logger may be nil.
func NewCachedListing(
	source shell.QueryHandler[stationlisting.Query, stationlisting.Stations],
	cache Cache,
	logger eventstore.ContextualLogger,
) *CachedListing {

	return &CachedListing{source: source, cache: cache, logger: logger}
}

func (l *CachedListing) Handle(ctx context.Context, query stationlisting.Query) (stationlisting.Stations, error) {
	listing, found, err := l.cache.Get(ctx)
	if err != nil {
		l.warn(ctx, "station cache read failed", err)
	}
	if found {
		return listing, nil
	}

	generation, generationErr := l.cache.Generation(ctx)

	listing, err = l.source.Handle(eventstore.WithStrongConsistency(ctx), query)
	if err != nil {
		return stationlisting.Stations{}, err
	}

	if generationErr != nil {
		l.warn(ctx, "station cache read failed", generationErr)
		return listing, nil
	}

	if _, err = l.cache.SetIfGeneration(ctx, listing, generation); err != nil {
		l.warn(ctx, "station cache write failed", err)
	}

	return listing, nil
}

// Invalidate drops the cached listing.
func (l *CachedListing) Invalidate(ctx context.Context) error {
	return l.cache.Invalidate(ctx)
}

func (l *CachedListing) warn(ctx context.Context, msg string, err error) {
	if l.logger != nil {
		l.logger.WarnContext(ctx, msg, shell.LogAttrError, err.Error())
	}
}
