package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"sawari/internal/domain"
)

// ReviewRepository is a PostgreSQL implementation of repository.ReviewRepository.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{q: db}
}

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, driver_id, customer_id, customer_name, rating, comment, ride_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		review.ID,
		review.DriverID,
		review.CustomerID,
		review.CustomerName,
		review.Rating,
		review.Comment,
		nullString(review.RideID),
		review.CreatedAt,
	)

	return err
}

// ListByDriver returns a driver's reviews newest-first with ride
// snapshots.
func (r *ReviewRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.ReviewWithRide, error) {
	return r.list(ctx, `v.driver_id = $1`, driverID)
}

// ListByCustomer returns a customer's own review history.
func (r *ReviewRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.ReviewWithRide, error) {
	return r.list(ctx, `v.customer_id = $1`, customerID)
}

// AverageRating returns the mean rating rounded to one decimal place,
// 0 for a driver with no reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, driverID string) (float64, error) {
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) FROM reviews WHERE driver_id = $1`

	var avg float64
	if err := r.q.QueryRowContext(ctx, query, driverID).Scan(&avg); err != nil {
		return 0, err
	}

	return avg, nil
}

func (r *ReviewRepository) list(ctx context.Context, where string, arg any) ([]*domain.ReviewWithRide, error) {
	query := `
		SELECT v.id, v.driver_id, v.customer_id, v.customer_name, v.rating, v.comment, v.ride_id, v.created_at,
		       r.ride_number, r.pickup, r.dropoff, r.fare, r.date, r.passengers, r.status
		FROM reviews v
		LEFT JOIN rides r ON r.id = v.ride_id
		WHERE ` + where + `
		ORDER BY v.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ReviewWithRide
	for rows.Next() {
		var review domain.ReviewWithRide
		var rideID sql.NullString
		var rideNumber, pickup, dropoff, rideStatus sql.NullString
		var rideFare decimal.NullDecimal
		var rideDate sql.NullTime
		var ridePassengers sql.NullInt64

		err := rows.Scan(
			&review.ID,
			&review.DriverID,
			&review.CustomerID,
			&review.CustomerName,
			&review.Rating,
			&review.Comment,
			&rideID,
			&review.CreatedAt,
			&rideNumber,
			&pickup,
			&dropoff,
			&rideFare,
			&rideDate,
			&ridePassengers,
			&rideStatus,
		)
		if err != nil {
			return nil, err
		}

		review.RideID = rideID.String

		if rideNumber.Valid {
			review.Ride = &domain.RideSummary{
				RideNumber: rideNumber.String,
				Route:      pickup.String + " - " + dropoff.String,
				Fare:       rideFare.Decimal,
				Date:       rideDate.Time,
				Passengers: int(ridePassengers.Int64),
				Status:     rideStatus.String,
			}
		}

		result = append(result, &review)
	}

	return result, rows.Err()
}
