package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleType enumerates the bookable vehicle categories.
type VehicleType string

const (
	VehicleTypeGovernmentBus VehicleType = "government-bus"
	VehicleTypePrivateBus    VehicleType = "private-bus"
	VehicleTypeCharteredBus  VehicleType = "chartered-bus"
	VehicleTypeERickshaw     VehicleType = "e-rickshaw"
)

// ValidVehicleType reports whether v is a known vehicle type.
func ValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleTypeGovernmentBus, VehicleTypePrivateBus, VehicleTypeCharteredBus, VehicleTypeERickshaw:
		return true
	}
	return false
}

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// BookingPaymentStatus tracks the payment axis independently of the
// booking lifecycle.
type BookingPaymentStatus string

const (
	BookingPaymentPaid     BookingPaymentStatus = "paid"
	BookingPaymentPending  BookingPaymentStatus = "pending"
	BookingPaymentRefunded BookingPaymentStatus = "refunded"
)

// ValidBookingPaymentStatus reports whether s is a known payment status.
func ValidBookingPaymentStatus(s BookingPaymentStatus) bool {
	switch s {
	case BookingPaymentPaid, BookingPaymentPending, BookingPaymentRefunded:
		return true
	}
	return false
}

// Booking is a seat reservation tied to a completed payment. A booking
// cannot exist without a payment reference; cancellation is a soft
// status transition, rows are never deleted.
type Booking struct {
	ID               string
	UserID           string
	Pickup           string
	Dropoff          string
	VehicleType      VehicleType
	Datetime         time.Time
	Passengers       int
	Seats            []string
	Fare             decimal.Decimal
	PaymentID        string
	OrderID          string
	Status           BookingStatus
	PaymentStatus    BookingPaymentStatus
	ConfirmationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
