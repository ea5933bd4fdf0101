package repository

import (
	"context"
	"time"

	"sawari/internal/domain"
)

// BookingFilter narrows a booking listing for one owner.
type BookingFilter struct {
	UserID string
	Status domain.BookingStatus
	Limit  int
	Offset int
}

// BookingRepository persists seat reservations. Ownership is enforced
// at the query level: lookups scoped to a user never reveal another
// user's bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByIDForUser returns the booking only when it belongs to the
	// given user; otherwise ErrNotFound.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Booking, error)

	// ListByUser returns the owner's bookings newest-first plus the
	// total count matching the filter ignoring pagination.
	ListByUser(ctx context.Context, filter BookingFilter) ([]*domain.Booking, int, error)

	// Update writes status, payment status and updated_at for a booking
	// owned by the given user; ErrNotFound otherwise.
	Update(ctx context.Context, booking *domain.Booking) error

	// ConfirmedSeats returns the union of seats held by confirmed
	// bookings for the same vehicle type and departure time.
	ConfirmedSeats(ctx context.Context, vehicleType domain.VehicleType, departure time.Time) ([]string, error)
}
