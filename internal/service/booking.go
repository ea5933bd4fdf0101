package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

const (
	seatLockTTL = 5 * time.Second

	// Attempts to find a free confirmation code before giving up.
	confirmationCodeAttempts = 5
)

// BookingStore begins a store transaction for booking creation so the
// seat-overlap check and the insert see the same snapshot.
type BookingStore interface {
	InBookingTx(ctx context.Context, fn func(bookings repository.BookingRepository) error) error
}

// SeatLocker serializes booking creation per (vehicle, departure) pair.
type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, vehicleType string, departure time.Time, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, vehicleType string, departure time.Time) error
}

// BookingService manages the booking lifecycle: confirmed on creation,
// then cancelled or completed. Bookings are never hard-deleted.
type BookingService struct {
	store       BookingStore
	bookingRepo repository.BookingRepository
	seatPolicy  SeatAvailability
	seatLocks   SeatLocker
}

// NewBookingService creates a new BookingService.
func NewBookingService(store BookingStore, bookingRepo repository.BookingRepository, seatPolicy SeatAvailability, seatLocks SeatLocker) *BookingService {
	return &BookingService{
		store:       store,
		bookingRepo: bookingRepo,
		seatPolicy:  seatPolicy,
		seatLocks:   seatLocks,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
// PaymentID and OrderID are the proof that an external gateway already
// charged the customer; a booking without them is unbilled inventory
// and is rejected outright.
type CreateBookingRequest struct {
	UserID        string
	Pickup        string
	Dropoff       string
	VehicleType   string
	Datetime      time.Time
	Passengers    int // derived from len(Seats) when zero
	Seats         []string
	Fare          decimal.Decimal
	PaymentID     string
	OrderID       string
	Status        string // optional caller override, defaults to confirmed
	PaymentStatus string // optional caller override, defaults to paid
}

// CreateBooking validates and persists a booking, holding the seat
// lock for the (vehicle, departure) pair while the overlap check and
// insert run.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	booking, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}

	if s.seatLocks != nil {
		acquired, err := s.seatLocks.AcquireSeatLock(ctx, string(booking.VehicleType), booking.Datetime, seatLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrSeatsLocked
		}
		defer func() {
			_ = s.seatLocks.ReleaseSeatLock(ctx, string(booking.VehicleType), booking.Datetime)
		}()
	}

	err = s.store.InBookingTx(ctx, func(bookings repository.BookingRepository) error {
		if booking.Status == domain.BookingStatusConfirmed {
			if err := s.seatPolicy.CheckAvailable(ctx, bookings, booking.VehicleType, booking.Datetime, booking.Seats); err != nil {
				return err
			}
		}

		// The confirmation code is random; retry on the unique index
		// until a free one is found.
		var createErr error
		for attempt := 0; attempt < confirmationCodeAttempts; attempt++ {
			booking.ConfirmationCode = newConfirmationCode()
			createErr = bookings.Create(ctx, booking)
			if !errors.Is(createErr, repository.ErrDuplicate) {
				break
			}
		}
		return createErr
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *BookingService) buildBooking(req CreateBookingRequest) (*domain.Booking, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Pickup == "" || req.Dropoff == "" {
		return nil, ErrMissingRoute
	}

	vehicleType := domain.VehicleType(req.VehicleType)
	if !domain.ValidVehicleType(vehicleType) {
		return nil, ErrInvalidVehicleType
	}

	if req.Datetime.IsZero() {
		return nil, ErrMissingDatetime
	}
	if len(req.Seats) == 0 {
		return nil, ErrMissingSeats
	}
	for _, seat := range req.Seats {
		if seat == "" {
			return nil, ErrMissingSeats
		}
	}
	if !req.Fare.IsPositive() {
		return nil, ErrInvalidFare
	}
	if req.PaymentID == "" || req.OrderID == "" {
		return nil, ErrMissingPaymentProof
	}

	passengers := req.Passengers
	if passengers == 0 {
		passengers = len(req.Seats)
	}
	if passengers < 1 {
		return nil, ErrInvalidPassengers
	}

	status := domain.BookingStatusConfirmed
	if req.Status != "" {
		status = domain.BookingStatus(req.Status)
		if !domain.ValidBookingStatus(status) {
			return nil, ErrInvalidBookingStatus
		}
	}

	paymentStatus := domain.BookingPaymentPaid
	if req.PaymentStatus != "" {
		paymentStatus = domain.BookingPaymentStatus(req.PaymentStatus)
		if !domain.ValidBookingPaymentStatus(paymentStatus) {
			return nil, ErrInvalidPaymentStatus
		}
	}

	now := time.Now()
	return &domain.Booking{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		VehicleType:   vehicleType,
		Datetime:      req.Datetime,
		Passengers:    passengers,
		Seats:         req.Seats,
		Fare:          req.Fare,
		PaymentID:     req.PaymentID,
		OrderID:       req.OrderID,
		Status:        status,
		PaymentStatus: paymentStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GetBooking retrieves a booking for its owner. Bookings owned by
// other users are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, id, userID string) (*domain.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.bookingRepo.GetByIDForUser(ctx, id, userID)
}

// ListBookingsRequest contains the filters for a booking listing.
type ListBookingsRequest struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

// ListBookings returns the owner's bookings newest-first plus the
// total count for pagination.
func (s *BookingService) ListBookings(ctx context.Context, req ListBookingsRequest) ([]*domain.Booking, int, error) {
	if req.UserID == "" {
		return nil, 0, ErrInvalidUserID
	}

	if req.Limit == 0 {
		req.Limit = 20
	}
	if req.Limit < 1 || req.Limit > 100 {
		return nil, 0, ErrInvalidLimit
	}
	if req.Offset < 0 {
		return nil, 0, ErrInvalidOffset
	}

	filter := repository.BookingFilter{
		UserID: req.UserID,
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	if req.Status != "" {
		status := domain.BookingStatus(req.Status)
		if !domain.ValidBookingStatus(status) {
			return nil, 0, ErrInvalidBookingStatus
		}
		filter.Status = status
	}

	return s.bookingRepo.ListByUser(ctx, filter)
}

// UpdateBookingRequest patches a booking. Only the lifecycle status
// and the payment status are mutable; ownership is fixed at creation.
type UpdateBookingRequest struct {
	ID            string
	UserID        string
	Status        *string
	PaymentStatus *string
}

// UpdateBooking applies a status/payment-status patch for the owner.
func (s *BookingService) UpdateBooking(ctx context.Context, req UpdateBookingRequest) (*domain.Booking, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, ErrInvalidFields
	}

	booking, err := s.bookingRepo.GetByIDForUser(ctx, req.ID, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		if !domain.ValidBookingStatus(status) {
			return nil, ErrInvalidBookingStatus
		}
		booking.Status = status
	}

	if req.PaymentStatus != nil {
		paymentStatus := domain.BookingPaymentStatus(*req.PaymentStatus)
		if !domain.ValidBookingPaymentStatus(paymentStatus) {
			return nil, ErrInvalidPaymentStatus
		}
		booking.PaymentStatus = paymentStatus
	}

	booking.UpdatedAt = time.Now()

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// CancelBooking soft-deletes a booking by moving it to cancelled. The
// payment status is left untouched; a refund is a separate explicit
// update.
func (s *BookingService) CancelBooking(ctx context.Context, id, userID string) (*domain.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	booking, err := s.bookingRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = time.Now()

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}
