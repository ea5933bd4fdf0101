package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidUserID is returned when the caller's user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrWalletNotFound is returned when no wallet exists for the driver.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrAmountTooLow is returned when a credit is below the minimum.
	ErrAmountTooLow = errors.New("amount below minimum")

	// ErrAmountTooHigh is returned when a credit exceeds the maximum.
	ErrAmountTooHigh = errors.New("amount above maximum")

	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrMissingDescription is returned when a credit has no description.
	ErrMissingDescription = errors.New("description is required")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrWithdrawBelowMinimum is returned when a withdrawal is below the minimum.
	ErrWithdrawBelowMinimum = errors.New("withdrawal below minimum")

	// ErrInsufficientBalance is returned when the wallet cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientPending is returned when pending payouts cannot cover the amount.
	ErrInsufficientPending = errors.New("insufficient pending payouts")

	// ErrInvalidBankDetails is returned when withdrawal bank details are malformed.
	ErrInvalidBankDetails = errors.New("invalid bank details")

	// ErrInvalidOperation is returned when an adjustment operation is unknown.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidLimit is returned when a pagination limit is out of range.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidOffset is returned when a pagination offset is negative.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidTransactionType is returned when a type filter is unknown.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidTransactionStatus is returned when a status filter is unknown.
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")

	// ErrTransactionNotFound is returned when a ledger entry does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrWithdrawalNotPending is returned when resolving a withdrawal
	// that is not in the pending state.
	ErrWithdrawalNotPending = errors.New("withdrawal not pending")

	// ErrMissingPaymentProof is returned when a booking lacks its
	// payment or order reference.
	ErrMissingPaymentProof = errors.New("payment proof required")

	// ErrInvalidVehicleType is returned when the vehicle type is unknown.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrMissingSeats is returned when a booking has no seats.
	ErrMissingSeats = errors.New("at least one seat is required")

	// ErrInvalidFare is returned when the fare is zero or negative.
	ErrInvalidFare = errors.New("invalid fare")

	// ErrInvalidPassengers is returned when the passenger count is not positive.
	ErrInvalidPassengers = errors.New("invalid passenger count")

	// ErrMissingRoute is returned when pickup or dropoff is empty.
	ErrMissingRoute = errors.New("pickup and dropoff are required")

	// ErrMissingDatetime is returned when the departure time is unset.
	ErrMissingDatetime = errors.New("datetime is required")

	// ErrInvalidBookingStatus is returned when a booking status value is unknown.
	ErrInvalidBookingStatus = errors.New("invalid booking status")

	// ErrInvalidPaymentStatus is returned when a payment status value is unknown.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrInvalidFields is returned when an update payload carries any
	// field other than status and payment status.
	ErrInvalidFields = errors.New("payload contains restricted fields")

	// ErrBookingAlreadyCancelled is returned when cancelling a booking
	// that is already cancelled.
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")

	// ErrSeatsUnavailable is returned when requested seats overlap a
	// confirmed booking on the same vehicle and departure.
	ErrSeatsUnavailable = errors.New("seats unavailable")

	// ErrSeatsLocked is returned when the seat lock for the vehicle and
	// departure is held by another request.
	ErrSeatsLocked = errors.New("seats are being booked by another request")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrMissingCustomer is returned when a review lacks customer identity.
	ErrMissingCustomer = errors.New("customer id and name are required")

	// ErrRideNotFound is returned when a referenced ride does not exist.
	ErrRideNotFound = errors.New("ride not found")
)

// InsufficientBalanceError carries the balance context the caller
// needs to self-correct. Matches ErrInsufficientBalance under errors.Is.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// SeatsUnavailableError lists the conflicting seats. Matches
// ErrSeatsUnavailable under errors.Is.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %v", e.Seats)
}

func (e *SeatsUnavailableError) Is(target error) bool {
	return target == ErrSeatsUnavailable
}
