package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
// Rides are written by the ride-lifecycle process; this subsystem only
// reads them.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `
		SELECT id, ride_number, driver_id, pickup, dropoff, fare, date, passengers, status, created_at
		FROM rides WHERE id = $1
	`

	var ride domain.Ride
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ride.ID,
		&ride.RideNumber,
		&ride.DriverID,
		&ride.Pickup,
		&ride.Dropoff,
		&ride.Fare,
		&ride.Date,
		&ride.Passengers,
		&ride.Status,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &ride, nil
}
