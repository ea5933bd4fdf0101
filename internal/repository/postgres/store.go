package postgres

import (
	"context"
	"database/sql"

	"sawari/internal/repository"
)

// Store runs multi-repository mutations inside a single database
// transaction, handing the callback transaction-scoped repositories.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InWalletTx runs fn against transaction-scoped wallet and ledger
// repositories. The callback's writes commit together or not at all.
func (s *Store) InWalletTx(ctx context.Context, fn func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(NewWalletRepositoryWithTx(tx), NewTransactionRepositoryWithTx(tx))
	})
}

// InBookingTx runs fn against a transaction-scoped booking repository.
func (s *Store) InBookingTx(ctx context.Context, fn func(bookings repository.BookingRepository) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(NewBookingRepositoryWithTx(tx))
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
