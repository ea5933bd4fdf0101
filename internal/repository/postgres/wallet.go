package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

const walletColumns = `id, driver_id, total_earnings, pending_payouts, last_payout_amount, last_payout_date, status, updated_at`

// Create persists a new wallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (id, driver_id, total_earnings, pending_payouts, last_payout_amount, last_payout_date, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		wallet.ID,
		wallet.DriverID,
		wallet.TotalEarnings,
		wallet.PendingPayouts,
		wallet.LastPayoutAmount,
		nullTime(wallet.LastPayoutDate),
		wallet.Status,
		wallet.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// GetByDriverID retrieves the wallet owned by a driver.
func (r *WalletRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE driver_id = $1`

	return r.scanWallet(r.q.QueryRowContext(ctx, query, driverID))
}

// GetByDriverIDForUpdate retrieves the wallet under a row lock. Must
// run inside a transaction.
func (r *WalletRepository) GetByDriverIDForUpdate(ctx context.Context, driverID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE driver_id = $1 FOR UPDATE`

	return r.scanWallet(r.q.QueryRowContext(ctx, query, driverID))
}

// Update writes the mutable snapshot fields.
func (r *WalletRepository) Update(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		UPDATE wallets
		SET total_earnings = $1, pending_payouts = $2, last_payout_amount = $3, last_payout_date = $4, status = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		wallet.TotalEarnings,
		wallet.PendingPayouts,
		wallet.LastPayoutAmount,
		nullTime(wallet.LastPayoutDate),
		wallet.Status,
		wallet.UpdatedAt,
		wallet.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *WalletRepository) scanWallet(row *sql.Row) (*domain.Wallet, error) {
	var wallet domain.Wallet
	var lastPayoutDate sql.NullTime

	err := row.Scan(
		&wallet.ID,
		&wallet.DriverID,
		&wallet.TotalEarnings,
		&wallet.PendingPayouts,
		&wallet.LastPayoutAmount,
		&lastPayoutDate,
		&wallet.Status,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if lastPayoutDate.Valid {
		wallet.LastPayoutDate = lastPayoutDate.Time
	}

	return &wallet, nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
