package stationcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/internal/stationcache"
	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/testutil/fixtures"
)

func Test_CachedListing_ServesStaleUntilInvalidated(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := fixtures.NewMemoryEventStore(t)
	fixtures.GivenEventsAppended(t, es, fixtures.StationRegistered("station-a", 5, 2, time.Now()))
	listing := stationcache.NewCachedListing(stationlisting.NewQueryHandler(es), stationcache.NewMemoryCache(time.Minute), nil)

	before, err := listing.Handle(ctx, stationlisting.BuildQuery())
	require.NoError(t, err)
	fixtures.GivenEventsAppended(t, es, fixtures.LoanOpened("loan-1", uuid.New(), "station-a", core.TierFree, time.Now()))

	// act
	cached, err := listing.Handle(ctx, stationlisting.BuildQuery())
	require.NoError(t, err)
	require.NoError(t, listing.Invalidate(ctx))
	fresh, err := listing.Handle(ctx, stationlisting.BuildQuery())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, before.Stations[0].AvailableUnits)
	assert.Equal(t, 2, cached.Stations[0].AvailableUnits)
	assert.Equal(t, 1, fresh.Stations[0].AvailableUnits)
}

func Test_CachedListing_DoesNotCacheFill_WhenInvalidatedDuringRead(t *testing.T) {
	// arrange
	ctx := context.Background()
	cache := stationcache.NewMemoryCache(time.Minute)
	source := &invalidatingSource{
		cache:   cache,
		listing: stationlisting.Stations{Stations: []stationlisting.Station{{ID: "station-a", AvailableUnits: 2}}, Count: 1},
	}
	listing := stationcache.NewCachedListing(source, cache, nil)

	// act
	served, err := listing.Handle(ctx, stationlisting.BuildQuery())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, served.Stations[0].AvailableUnits)
	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_CachedListing_FillsFromPrimary_EvenForEventualCaller(t *testing.T) {
	// arrange
	ctx := eventstore.WithEventualConsistency(context.Background())
	cache := stationcache.NewMemoryCache(time.Minute)
	source := &invalidatingSource{listing: stationlisting.Stations{Count: 1}}
	listing := stationcache.NewCachedListing(source, cache, nil)

	// act
	_, err := listing.Handle(ctx, stationlisting.BuildQuery())

	// assert
	require.NoError(t, err)
	assert.Equal(t, eventstore.StrongConsistency, source.seenConsistency)
	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
}

// invalidatingSource plays a loan committed and invalidated while the listing is being read.
type invalidatingSource struct {
	cache           *stationcache.MemoryCache
	listing         stationlisting.Stations
	seenConsistency eventstore.ConsistencyLevel
}

func (s *invalidatingSource) Handle(ctx context.Context, _ stationlisting.Query) (stationlisting.Stations, error) {
	s.seenConsistency = eventstore.GetConsistencyLevel(ctx)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			return stationlisting.Stations{}, err
		}
	}

	return s.listing, nil
}
