package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// TransactionRepository is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

const transactionColumns = `id, driver_id, wallet_id, type, amount, balance_after, description, reference_number, idempotency_key, ride_id, status, created_at`

// Create appends a new ledger entry.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (id, driver_id, wallet_id, type, amount, balance_after, description, reference_number, idempotency_key, ride_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.DriverID,
		txn.WalletID,
		txn.Type,
		txn.Amount,
		txn.BalanceAfter,
		txn.Description,
		txn.ReferenceNumber,
		nullString(txn.IdempotencyKey),
		nullString(txn.RideID),
		txn.Status,
		txn.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// GetByID retrieves a ledger entry by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id = $1`

	txn, err := scanTransaction(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return txn, nil
}

// GetByIdempotencyKey retrieves the entry recorded under a
// caller-supplied idempotency key. Returns nil when the key is unseen.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE idempotency_key = $1`

	txn, err := scanTransaction(r.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return txn, nil
}

// ListByDriver returns ledger entries newest-first with their ride
// snapshots, plus the total count matching the filter.
func (r *TransactionRepository) ListByDriver(ctx context.Context, filter repository.TransactionFilter) ([]*domain.TransactionWithRide, int, error) {
	where := `WHERE t.driver_id = $1`
	args := []any{filter.DriverID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND t.type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND t.status = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM wallet_transactions t ` + where
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT t.id, t.driver_id, t.wallet_id, t.type, t.amount, t.balance_after, t.description,
		       t.reference_number, t.idempotency_key, t.ride_id, t.status, t.created_at,
		       r.ride_number, r.pickup, r.dropoff, r.fare, r.date, r.passengers, r.status
		FROM wallet_transactions t
		LEFT JOIN rides r ON r.id = t.ride_id
		%s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*domain.TransactionWithRide
	for rows.Next() {
		var txn domain.TransactionWithRide
		var idempotencyKey, rideID sql.NullString
		var rideNumber, pickup, dropoff, rideStatus sql.NullString
		var rideFare decimal.NullDecimal
		var rideDate sql.NullTime
		var ridePassengers sql.NullInt64

		err := rows.Scan(
			&txn.ID,
			&txn.DriverID,
			&txn.WalletID,
			&txn.Type,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.Description,
			&txn.ReferenceNumber,
			&idempotencyKey,
			&rideID,
			&txn.Status,
			&txn.CreatedAt,
			&rideNumber,
			&pickup,
			&dropoff,
			&rideFare,
			&rideDate,
			&ridePassengers,
			&rideStatus,
		)
		if err != nil {
			return nil, 0, err
		}

		txn.IdempotencyKey = idempotencyKey.String
		txn.RideID = rideID.String

		if rideNumber.Valid {
			txn.Ride = &domain.RideSummary{
				RideNumber: rideNumber.String,
				Route:      pickup.String + " - " + dropoff.String,
				Fare:       rideFare.Decimal,
				Date:       rideDate.Time,
				Passengers: int(ridePassengers.Int64),
				Status:     rideStatus.String,
			}
		}

		result = append(result, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

// UpdateStatus updates the status of a ledger entry.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	query := `UPDATE wallet_transactions SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
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

func scanTransaction(row *sql.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var idempotencyKey, rideID sql.NullString

	err := row.Scan(
		&txn.ID,
		&txn.DriverID,
		&txn.WalletID,
		&txn.Type,
		&txn.Amount,
		&txn.BalanceAfter,
		&txn.Description,
		&txn.ReferenceNumber,
		&idempotencyKey,
		&rideID,
		&txn.Status,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.IdempotencyKey = idempotencyKey.String
	txn.RideID = rideID.String

	return &txn, nil
}

// nullString maps the empty string to SQL NULL so partial unique
// indexes on optional columns are not tripped by empty values.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
