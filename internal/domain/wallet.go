package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletStatus represents the current status of a driver wallet.
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
)

// Wallet is the balance snapshot for a driver. One wallet per driver.
// TotalEarnings must always equal the BalanceAfter of the newest
// completed ledger entry for the wallet; every mutation goes through
// the ledger-append path.
type Wallet struct {
	ID               string
	DriverID         string
	TotalEarnings    decimal.Decimal
	PendingPayouts   decimal.Decimal
	LastPayoutAmount decimal.Decimal
	LastPayoutDate   time.Time
	Status           WalletStatus
	UpdatedAt        time.Time
}
