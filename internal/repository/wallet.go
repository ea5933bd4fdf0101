package repository

import (
	"context"

	"sawari/internal/domain"
)

// WalletRepository persists driver wallet snapshots.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByDriverID(ctx context.Context, driverID string) (*domain.Wallet, error)

	// GetByDriverIDForUpdate reads the wallet under a row lock. Must be
	// called inside a store transaction; the lock is held until commit
	// or rollback, serializing concurrent balance mutations.
	GetByDriverIDForUpdate(ctx context.Context, driverID string) (*domain.Wallet, error)

	// Update writes the mutable snapshot fields (balances, last payout
	// metadata) and stamps updated_at.
	Update(ctx context.Context, wallet *domain.Wallet) error
}
