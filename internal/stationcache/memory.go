package stationcache

import (
	"context"
	"sync"
	"time"

	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
)

// MemoryCache is a Cache for a single instance.
type MemoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	listing    stationlisting.Stations
	expiresAt  time.Time
	generation uint64
	marks      map[string]time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryCache{
		ttl:   ttl,
		now:   time.Now,
		marks: make(map[string]time.Time),
	}
}

func (c *MemoryCache) Get(_ context.Context) (stationlisting.Stations, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expiresAt.IsZero() || !c.now().Before(c.expiresAt) {
		return stationlisting.Stations{}, false, nil
	}

	return c.listing, true, nil
}

func (c *MemoryCache) Set(_ context.Context, listing stationlisting.Stations) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listing = listing
	c.expiresAt = c.now().Add(c.ttl)

	return nil
}

func (c *MemoryCache) Generation(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generation, nil
}

func (c *MemoryCache) SetIfGeneration(_ context.Context, listing stationlisting.Stations, generation uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return false, nil
	}

	c.listing = listing
	c.expiresAt = c.now().Add(c.ttl)

	return true, nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.listing = stationlisting.Stations{}
	c.expiresAt = time.Time{}

	return nil
}

func (c *MemoryCache) MarkOnce(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, expiresAt := range c.marks {
		if !now.Before(expiresAt) {
			delete(c.marks, k)
		}
	}

	if _, exists := c.marks[key]; exists {
		return false, nil
	}

	c.marks[key] = now.Add(ttl)

	return true, nil
}
