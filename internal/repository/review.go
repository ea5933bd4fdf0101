package repository

import (
	"context"

	"sawari/internal/domain"
)

// ReviewRepository persists driver reviews and serves the read
// aggregates built from them.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error

	// ListByDriver returns a driver's reviews newest-first, each joined
	// with the snapshot of its ride when one is referenced.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.ReviewWithRide, error)

	// ListByCustomer returns a customer's own review history.
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.ReviewWithRide, error)

	// AverageRating returns the mean rating for a driver rounded to one
	// decimal place, 0 when the driver has no reviews.
	AverageRating(ctx context.Context, driverID string) (float64, error)
}
