package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, user_id, pickup, dropoff, vehicle_type, datetime, passengers, seats, fare, payment_id, order_id, status, payment_status, confirmation_code, created_at, updated_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, pickup, dropoff, vehicle_type, datetime, passengers, seats, fare, payment_id, order_id, status, payment_status, confirmation_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.Pickup,
		booking.Dropoff,
		booking.VehicleType,
		booking.Datetime,
		booking.Passengers,
		pq.Array(booking.Seats),
		booking.Fare,
		booking.PaymentID,
		booking.OrderID,
		booking.Status,
		booking.PaymentStatus,
		booking.ConfirmationCode,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// GetByIDForUser retrieves a booking scoped to its owner. A booking
// owned by someone else is reported as not found.
func (r *BookingRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND user_id = $2`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// ListByUser returns the owner's bookings newest-first plus the total
// count matching the filter.
func (r *BookingRepository) ListByUser(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, int, error) {
	where := `WHERE user_id = $1`
	args := []any{filter.UserID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings ` + where
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM bookings %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, bookingColumns, where, len(args)-1, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*domain.Booking
	for rows.Next() {
		booking, err := scanBookingRows(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

// Update writes status, payment status and updated_at, scoped to the
// owning user.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		booking.UpdatedAt,
		booking.ID,
		booking.UserID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ConfirmedSeats returns the seats held by confirmed bookings for the
// same vehicle type and departure time.
func (r *BookingRepository) ConfirmedSeats(ctx context.Context, vehicleType domain.VehicleType, departure time.Time) ([]string, error) {
	query := `
		SELECT seats FROM bookings
		WHERE vehicle_type = $1 AND datetime = $2 AND status = $3
	`

	rows, err := r.q.QueryContext(ctx, query, vehicleType, departure, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var seats []string
		if err := rows.Scan(pq.Array(&seats)); err != nil {
			return nil, err
		}
		taken = append(taken, seats...)
	}

	return taken, rows.Err()
}

func scanBooking(row *sql.Row) (*domain.Booking, error) {
	var booking domain.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.Pickup,
		&booking.Dropoff,
		&booking.VehicleType,
		&booking.Datetime,
		&booking.Passengers,
		pq.Array(&booking.Seats),
		&booking.Fare,
		&booking.PaymentID,
		&booking.OrderID,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.ConfirmationCode,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func scanBookingRows(rows *sql.Rows) (*domain.Booking, error) {
	var booking domain.Booking
	err := rows.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.Pickup,
		&booking.Dropoff,
		&booking.VehicleType,
		&booking.Datetime,
		&booking.Passengers,
		pq.Array(&booking.Seats),
		&booking.Fare,
		&booking.PaymentID,
		&booking.OrderID,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.ConfirmationCode,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
