package stationcache

import (
	"context"
	"time"

	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
)

const (
	listingKey    = "panaguas:stations:listing"
	generationKey = "panaguas:stations:generation"
	markKeyPrefix = "panaguas:mark:"

	DefaultTTL = 30 * time.Second
)

// Cache stores the station listing.
type Cache interface {
	// Get returns the cached listing; found is false on a miss.
	Get(ctx context.Context) (listing stationlisting.Stations, found bool, err error)
	Set(ctx context.Context, listing stationlisting.Stations) error
	// Generation returns a counter that every Invalidate increments.
	Generation(ctx context.Context) (uint64, error)
	// SetIfGeneration stores listing only if no Invalidate happened since generation was read.
	SetIfGeneration(ctx context.Context, listing stationlisting.Stations, generation uint64) (stored bool, err error)
	Invalidate(ctx context.Context) error
	// MarkOnce sets key for ttl and reports whether it was not set before.
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
