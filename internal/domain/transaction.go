package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry. The sign applied to the
// wallet balance is implied by the type: credit, refund and
// ride_earning add; debit and withdrawal subtract. Adjustments carry
// their direction explicitly.
type TransactionType string

const (
	TransactionTypeCredit      TransactionType = "credit"
	TransactionTypeDebit       TransactionType = "debit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeRideEarning TransactionType = "ride_earning"
	TransactionTypeAdjustment  TransactionType = "adjustment"
)

// IsCreditType reports whether the type adds to the balance.
func (t TransactionType) IsCreditType() bool {
	return t == TransactionTypeCredit || t == TransactionTypeRefund || t == TransactionTypeRideEarning
}

// TransactionStatus represents the processing state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is one append-only ledger entry. Amount is a positive
// magnitude; BalanceAfter is the wallet balance once the entry is
// applied. Entries are immutable after creation except for the status
// transition of withdrawals awaiting bank processing.
type Transaction struct {
	ID              string
	DriverID        string
	WalletID        string
	Type            TransactionType
	Amount          decimal.Decimal
	BalanceAfter    decimal.Decimal
	Description     string
	ReferenceNumber string
	IdempotencyKey  string // caller-supplied, empty when not provided
	RideID          string // back-reference to the originating ride, empty when none
	Status          TransactionStatus
	CreatedAt       time.Time
}

// RideSummary is a read-only snapshot of a ride attached to ledger
// entries and reviews for display.
type RideSummary struct {
	RideNumber string
	Route      string
	Fare       decimal.Decimal
	Date       time.Time
	Passengers int
	Status     string
}

// TransactionWithRide pairs a ledger entry with the snapshot of its
// referenced ride, when one exists.
type TransactionWithRide struct {
	Transaction
	Ride *RideSummary
}
