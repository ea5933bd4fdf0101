package service

import (
	"context"
	"time"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// SeatAvailability decides whether the requested seats may be booked
// for a vehicle and departure. The check runs inside the booking
// transaction, after the seat lock for the (vehicle, departure) pair
// is held. Deployments that manage seat inventory elsewhere can inject
// OpenSeatPolicy.
type SeatAvailability interface {
	CheckAvailable(ctx context.Context, bookings repository.BookingRepository, vehicleType domain.VehicleType, departure time.Time, seats []string) error
}

// OverlapSeatPolicy rejects seats already held by a confirmed booking
// on the same vehicle type and departure time.
type OverlapSeatPolicy struct{}

// NewOverlapSeatPolicy creates the default seat policy.
func NewOverlapSeatPolicy() *OverlapSeatPolicy {
	return &OverlapSeatPolicy{}
}

// CheckAvailable implements SeatAvailability.
func (p *OverlapSeatPolicy) CheckAvailable(ctx context.Context, bookings repository.BookingRepository, vehicleType domain.VehicleType, departure time.Time, seats []string) error {
	taken, err := bookings.ConfirmedSeats(ctx, vehicleType, departure)
	if err != nil {
		return err
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, seat := range taken {
		takenSet[seat] = struct{}{}
	}

	var conflicts []string
	for _, seat := range seats {
		if _, ok := takenSet[seat]; ok {
			conflicts = append(conflicts, seat)
		}
	}

	if len(conflicts) > 0 {
		return &SeatsUnavailableError{Seats: conflicts}
	}

	return nil
}

// OpenSeatPolicy accepts every request. For deployments where seat
// inventory is enforced by an external component.
type OpenSeatPolicy struct{}

// NewOpenSeatPolicy creates a policy that never rejects.
func NewOpenSeatPolicy() *OpenSeatPolicy {
	return &OpenSeatPolicy{}
}

// CheckAvailable implements SeatAvailability.
func (p *OpenSeatPolicy) CheckAvailable(ctx context.Context, bookings repository.BookingRepository, vehicleType domain.VehicleType, departure time.Time, seats []string) error {
	return nil
}
