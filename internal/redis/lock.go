package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// seatLockKey builds the lock key for one vehicle departure. Bookings
// for the same vehicle type and departure time contend on this key.
func seatLockKey(vehicleType string, departure time.Time) string {
	return fmt.Sprintf("lock:seats:%s:%d", vehicleType, departure.UTC().Unix())
}

// AcquireSeatLock attempts to acquire the booking lock for a vehicle
// departure. Returns true if the lock was acquired, false if already
// held.
func (s *LockStore) AcquireSeatLock(ctx context.Context, vehicleType string, departure time.Time, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, seatLockKey(vehicleType, departure), "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseSeatLock releases the booking lock for a vehicle departure.
func (s *LockStore) ReleaseSeatLock(ctx context.Context, vehicleType string, departure time.Time) error {
	return s.client.Del(ctx, seatLockKey(vehicleType, departure)).Err()
}
