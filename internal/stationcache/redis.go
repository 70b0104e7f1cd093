package stationcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/mrcrpro/panaguas/lending/features/query/stationlisting"
)

const connectTimeout = 5 * time.Second

var errGenerationMoved = errors.New("station listing generation moved")

// RedisCache keeps the listing as a JSON string with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCacheFromURL connects to redisURL and pings it.
func NewRedisCacheFromURL(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (stationlisting.Stations, bool, error) {
	data, err := c.client.Get(ctx, listingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return stationlisting.Stations{}, false, nil
	}
	if err != nil {
		return stationlisting.Stations{}, false, err
	}

	var listing stationlisting.Stations
	if err = jsoniter.ConfigFastest.Unmarshal(data, &listing); err != nil {
		return stationlisting.Stations{}, false, err
	}

	return listing, true, nil
}

func (c *RedisCache) Set(ctx context.Context, listing stationlisting.Stations) error {
	data, err := jsoniter.ConfigFastest.Marshal(listing)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, listingKey, data, c.ttl).Err()
}

func (c *RedisCache) Generation(ctx context.Context) (uint64, error) {
	return readGeneration(ctx, c.client)
}

// SetIfGeneration watches the generation key, so an Invalidate from any instance between
// Generation and this call aborts the write.
func (c *RedisCache) SetIfGeneration(ctx context.Context, listing stationlisting.Stations, generation uint64) (bool, error) {
	data, err := jsoniter.ConfigFastest.Marshal(listing)
	if err != nil {
		return false, err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, readErr := readGeneration(ctx, tx)
		if readErr != nil {
			return readErr
		}

		if current != generation {
			return errGenerationMoved
		}

		_, pipeErr := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listingKey, data, c.ttl)
			return nil
		})

		return pipeErr
	}, generationKey)

	if errors.Is(err, errGenerationMoved) || errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, listingKey)
		pipe.Incr(ctx, generationKey)
		return nil
	})

	return err
}

func (c *RedisCache) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, markKeyPrefix+key, 1, ttl).Result()
}

// getter is satisfied by *redis.Client and by *redis.Tx inside Watch.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, client getter) (uint64, error) {
	generation, err := client.Get(ctx, generationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return generation, err
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
