package repository

import (
	"context"

	"sawari/internal/domain"
)

// RideRepository reads ride records written by the ride-lifecycle
// process. Read-only in this subsystem.
type RideRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
}
