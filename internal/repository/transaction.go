package repository

import (
	"context"

	"sawari/internal/domain"
)

// TransactionFilter narrows a ledger listing. DriverID is required;
// zero values for the remaining fields mean "no filter".
type TransactionFilter struct {
	DriverID string
	Type     domain.TransactionType
	Status   domain.TransactionStatus
	Limit    int
	Offset   int
}

// TransactionRepository persists the append-only wallet ledger.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByIdempotencyKey returns the ledger entry recorded for a
	// caller-supplied idempotency key, or nil when the key is unseen.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)

	// ListByDriver returns entries newest-first, each joined with the
	// snapshot of its referenced ride when one exists, plus the total
	// count matching the filter ignoring pagination.
	ListByDriver(ctx context.Context, filter TransactionFilter) ([]*domain.TransactionWithRide, int, error)

	// UpdateStatus moves a pending entry to completed or failed. The
	// monetary fields of an entry never change after creation.
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error
}
