package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireSeatLock(ctx context.Context, vehicleType string, departure time.Time, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, vehicleType string, departure time.Time) error
}

// CacheStoreInterface defines the interface for rating caching.
type CacheStoreInterface interface {
	GetRating(ctx context.Context, driverID string) (*CachedRating, error)
	SetRating(ctx context.Context, rating *CachedRating) error
	InvalidateRating(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
