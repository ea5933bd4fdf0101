package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	// RatingCacheTTL bounds how stale a driver's published average may
	// be after new reviews arrive.
	RatingCacheTTL = 60 * time.Second
)

const ratingCachePrefix = "cache:rating:"

// CachedRating is the cached review aggregate for a driver.
type CachedRating struct {
	DriverID      string  `json:"driver_id"`
	AverageRating float64 `json:"average_rating"`
}

// GetRating retrieves a driver's cached average rating. Returns nil on
// a cache miss.
func (s *CacheStore) GetRating(ctx context.Context, driverID string) (*CachedRating, error) {
	data, err := s.client.Get(ctx, ratingCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var rating CachedRating
	if err := json.Unmarshal(data, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

// SetRating stores a driver's average rating in cache.
func (s *CacheStore) SetRating(ctx context.Context, rating *CachedRating) error {
	data, err := json.Marshal(rating)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ratingCachePrefix+rating.DriverID, data, RatingCacheTTL).Err()
}

// InvalidateRating removes a driver's rating from cache. Called after
// a new review lands so readers see the fresh aggregate.
func (s *CacheStore) InvalidateRating(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, ratingCachePrefix+driverID).Err()
}
