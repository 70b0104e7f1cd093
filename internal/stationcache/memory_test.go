package stationcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
)

func Test_MemoryCache_GetReturnsListingUntilTTLExpires(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(10 * time.Second)
	cache.now = func() time.Time { return now }
	require.NoError(t, cache.Set(ctx, stationlisting.Stations{Count: 2}))

	// act
	cached, found, err := cache.Get(ctx)
	now = now.Add(10 * time.Second)
	_, foundAfterTTL, _ := cache.Get(ctx)

	// assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, cached.Count)
	assert.False(t, foundAfterTTL)
}

func Test_MemoryCache_Invalidate(t *testing.T) {
	// arrange
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	require.NoError(t, cache.Set(ctx, stationlisting.Stations{Count: 2}))

	// act
	require.NoError(t, cache.Invalidate(ctx))

	// assert
	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_MemoryCache_MarkOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Minute)
	cache.now = func() time.Time { return now }

	// act
	first, err := cache.MarkOnce(ctx, "due-soon:loan-1:15", time.Hour)
	require.NoError(t, err)
	second, _ := cache.MarkOnce(ctx, "due-soon:loan-1:15", time.Hour)
	now = now.Add(time.Hour)
	afterExpiry, _ := cache.MarkOnce(ctx, "due-soon:loan-1:15", time.Hour)

	// assert
	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, afterExpiry)
}

func Test_MemoryCache_SetIfGeneration_RefusesAfterInvalidate(t *testing.T) {
	// arrange
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	generation, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	// act
	staleStored, err := cache.SetIfGeneration(ctx, stationlisting.Stations{Count: 1}, generation)
	require.NoError(t, err)
	current, err := cache.Generation(ctx)
	require.NoError(t, err)
	freshStored, err := cache.SetIfGeneration(ctx, stationlisting.Stations{Count: 2}, current)

	// assert
	require.NoError(t, err)
	assert.False(t, staleStored)
	assert.True(t, freshStored)
	cached, found, _ := cache.Get(ctx)
	assert.True(t, found)
	assert.Equal(t, 2, cached.Count)
}
