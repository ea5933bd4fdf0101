package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// PaymentMethod enumerates the accepted funding channels for a credit.
type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

// ValidatePaymentMethod validates a payment method string.
func ValidatePaymentMethod(method string) (PaymentMethod, error) {
	switch PaymentMethod(method) {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetbanking, PaymentMethodWallet:
		return PaymentMethod(method), nil
	}
	return "", ErrInvalidPaymentMethod
}

// Credit amount bounds and withdrawal minimum.
var (
	creditMinAmount   = decimal.NewFromInt(100)
	creditMaxAmount   = decimal.NewFromInt(50000)
	withdrawMinAmount = decimal.NewFromInt(500)
)

var ifscPattern = regexp.MustCompile(`^[A-Za-z0-9]{11}$`)

// WalletStore begins a store transaction and hands the mutation
// transaction-scoped repositories. The ledger append and the wallet
// snapshot update commit or roll back together.
type WalletStore interface {
	InWalletTx(ctx context.Context, fn func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error) error
}

// WalletService implements the wallet operations: credit, withdraw,
// adjust, withdrawal resolution and ledger listing. Every balance
// mutation takes the wallet row lock and appends a ledger entry in the
// same store transaction, so the snapshot always equals the newest
// entry's BalanceAfter.
type WalletService struct {
	store      WalletStore
	walletRepo repository.WalletRepository
	txnRepo    repository.TransactionRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(store WalletStore, walletRepo repository.WalletRepository, txnRepo repository.TransactionRepository) *WalletService {
	return &WalletService{
		store:      store,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
	}
}

// GetWallet returns the driver's wallet, creating it on first access.
func (s *WalletService) GetWallet(ctx context.Context, driverID string) (*domain.Wallet, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	wallet, err := s.walletRepo.GetByDriverID(ctx, driverID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	wallet = &domain.Wallet{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		Status:    domain.WalletStatusActive,
		UpdatedAt: time.Now(),
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the creation race; the other request's wallet wins.
			return s.walletRepo.GetByDriverID(ctx, driverID)
		}
		return nil, err
	}

	return wallet, nil
}

// CreditRequest contains the parameters for adding money to a wallet.
type CreditRequest struct {
	DriverID       string
	Amount         decimal.Decimal
	Description    string
	PaymentMethod  PaymentMethod
	RideID         string // set by the ride-completion flow; records a ride_earning
	IdempotencyKey string // optional caller-supplied retry key
}

// Credit adds money to a wallet and appends a completed ledger entry.
// A repeated idempotency key returns the original entry without a
// second balance change.
func (s *WalletService) Credit(ctx context.Context, req CreditRequest) (*domain.Transaction, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Description == "" {
		return nil, ErrMissingDescription
	}
	if _, err := ValidatePaymentMethod(string(req.PaymentMethod)); err != nil {
		return nil, err
	}
	if req.Amount.LessThan(creditMinAmount) {
		return nil, ErrAmountTooLow
	}
	if req.Amount.GreaterThan(creditMaxAmount) {
		return nil, ErrAmountTooHigh
	}

	if existing, err := s.replayedTransaction(ctx, req.IdempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	txnType := domain.TransactionTypeCredit
	if req.RideID != "" {
		txnType = domain.TransactionTypeRideEarning
	}

	txn := &domain.Transaction{
		ID:              uuid.New().String(),
		DriverID:        req.DriverID,
		Type:            txnType,
		Amount:          req.Amount,
		Description:     req.Description,
		ReferenceNumber: newReferenceNumber(refPrefixCredit),
		IdempotencyKey:  req.IdempotencyKey,
		RideID:          req.RideID,
		Status:          domain.TransactionStatusCompleted,
		CreatedAt:       time.Now(),
	}

	err := s.store.InWalletTx(ctx, func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error {
		wallet, err := lockWallet(ctx, wallets, req.DriverID)
		if err != nil {
			return err
		}

		wallet.TotalEarnings = wallet.TotalEarnings.Add(req.Amount)
		wallet.UpdatedAt = txn.CreatedAt

		txn.WalletID = wallet.ID
		txn.BalanceAfter = wallet.TotalEarnings

		if err := ledger.Create(ctx, txn); err != nil {
			return err
		}

		return wallets.Update(ctx, wallet)
	})
	if err != nil {
		return s.resolveDuplicate(ctx, req.IdempotencyKey, err)
	}

	return txn, nil
}

// BankDetails identifies the payout destination for a withdrawal.
type BankDetails struct {
	AccountNumber     string
	IFSCCode          string
	AccountHolderName string
	BankName          string
}

func (b BankDetails) validate() error {
	if b.AccountNumber == "" || b.AccountHolderName == "" {
		return ErrInvalidBankDetails
	}
	if !ifscPattern.MatchString(b.IFSCCode) {
		return ErrInvalidBankDetails
	}
	return nil
}

// audit renders the details for the ledger description. Only the last
// four digits of the account number are recorded.
func (b BankDetails) audit() string {
	account := b.AccountNumber
	if len(account) > 4 {
		account = "****" + account[len(account)-4:]
	}
	s := fmt.Sprintf("account %s, IFSC %s, holder %s", account, b.IFSCCode, b.AccountHolderName)
	if b.BankName != "" {
		s += ", bank " + b.BankName
	}
	return s
}

// WithdrawRequest contains the parameters for a payout request.
type WithdrawRequest struct {
	DriverID       string
	Amount         decimal.Decimal
	Bank           BankDetails
	IdempotencyKey string
}

// Withdraw deducts the amount from the wallet and appends a pending
// withdrawal entry awaiting bank processing.
func (s *WalletService) Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Transaction, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Amount.LessThan(withdrawMinAmount) {
		return nil, ErrWithdrawBelowMinimum
	}
	if err := req.Bank.validate(); err != nil {
		return nil, err
	}

	if existing, err := s.replayedTransaction(ctx, req.IdempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	txn := &domain.Transaction{
		ID:              uuid.New().String(),
		DriverID:        req.DriverID,
		Type:            domain.TransactionTypeWithdrawal,
		Amount:          req.Amount,
		Description:     "Withdrawal to " + req.Bank.audit(),
		ReferenceNumber: newReferenceNumber(refPrefixWithdrawal),
		IdempotencyKey:  req.IdempotencyKey,
		Status:          domain.TransactionStatusPending,
		CreatedAt:       time.Now(),
	}

	err := s.store.InWalletTx(ctx, func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error {
		wallet, err := lockWallet(ctx, wallets, req.DriverID)
		if err != nil {
			return err
		}

		if wallet.TotalEarnings.LessThan(req.Amount) {
			return &InsufficientBalanceError{Available: wallet.TotalEarnings, Requested: req.Amount}
		}

		wallet.TotalEarnings = wallet.TotalEarnings.Sub(req.Amount)
		wallet.LastPayoutAmount = req.Amount
		wallet.LastPayoutDate = txn.CreatedAt
		wallet.UpdatedAt = txn.CreatedAt

		txn.WalletID = wallet.ID
		txn.BalanceAfter = wallet.TotalEarnings

		if err := ledger.Create(ctx, txn); err != nil {
			return err
		}

		return wallets.Update(ctx, wallet)
	})
	if err != nil {
		return s.resolveDuplicate(ctx, req.IdempotencyKey, err)
	}

	return txn, nil
}

// AdjustOperation is the direction of an administrative adjustment.
type AdjustOperation string

const (
	AdjustOperationAdd      AdjustOperation = "add"
	AdjustOperationSubtract AdjustOperation = "subtract"
)

// AdjustRequest contains the parameters for an administrative balance
// correction.
type AdjustRequest struct {
	DriverID       string
	Amount         decimal.Decimal
	Operation      AdjustOperation
	UpdatePending  bool // move pending payouts in the same direction
	Reason         string
	IdempotencyKey string
}

// Adjust applies an administrative correction. Corrections go through
// the ledger like every other mutation: an adjustment entry is
// appended and the snapshot updated in the same store transaction.
func (s *WalletService) Adjust(ctx context.Context, req AdjustRequest) (*domain.Transaction, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Operation != AdjustOperationAdd && req.Operation != AdjustOperationSubtract {
		return nil, ErrInvalidOperation
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if existing, err := s.replayedTransaction(ctx, req.IdempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	description := fmt.Sprintf("Balance adjustment (%s)", req.Operation)
	if req.Reason != "" {
		description += ": " + req.Reason
	}

	txn := &domain.Transaction{
		ID:              uuid.New().String(),
		DriverID:        req.DriverID,
		Type:            domain.TransactionTypeAdjustment,
		Amount:          req.Amount,
		Description:     description,
		ReferenceNumber: newReferenceNumber(refPrefixAdjustment),
		IdempotencyKey:  req.IdempotencyKey,
		Status:          domain.TransactionStatusCompleted,
		CreatedAt:       time.Now(),
	}

	err := s.store.InWalletTx(ctx, func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error {
		wallet, err := lockWallet(ctx, wallets, req.DriverID)
		if err != nil {
			return err
		}

		if req.Operation == AdjustOperationSubtract {
			if wallet.TotalEarnings.LessThan(req.Amount) {
				return &InsufficientBalanceError{Available: wallet.TotalEarnings, Requested: req.Amount}
			}
			if req.UpdatePending && wallet.PendingPayouts.LessThan(req.Amount) {
				return ErrInsufficientPending
			}
			wallet.TotalEarnings = wallet.TotalEarnings.Sub(req.Amount)
			if req.UpdatePending {
				wallet.PendingPayouts = wallet.PendingPayouts.Sub(req.Amount)
			}
		} else {
			wallet.TotalEarnings = wallet.TotalEarnings.Add(req.Amount)
			if req.UpdatePending {
				wallet.PendingPayouts = wallet.PendingPayouts.Add(req.Amount)
			}
		}
		wallet.UpdatedAt = txn.CreatedAt

		txn.WalletID = wallet.ID
		txn.BalanceAfter = wallet.TotalEarnings

		if err := ledger.Create(ctx, txn); err != nil {
			return err
		}

		return wallets.Update(ctx, wallet)
	})
	if err != nil {
		return s.resolveDuplicate(ctx, req.IdempotencyKey, err)
	}

	return txn, nil
}

// ResolveWithdrawalRequest marks the outcome of bank processing for a
// pending withdrawal.
type ResolveWithdrawalRequest struct {
	TransactionID string
	Success       bool
}

// ResolveWithdrawal completes or fails a pending withdrawal. A failed
// withdrawal appends a compensating refund entry restoring the balance;
// the original entry's monetary fields are never touched.
func (s *WalletService) ResolveWithdrawal(ctx context.Context, req ResolveWithdrawalRequest) (*domain.Transaction, error) {
	if req.TransactionID == "" {
		return nil, ErrTransactionNotFound
	}

	var refund *domain.Transaction

	err := s.store.InWalletTx(ctx, func(wallets repository.WalletRepository, ledger repository.TransactionRepository) error {
		txn, err := ledger.GetByID(ctx, req.TransactionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		if txn.Type != domain.TransactionTypeWithdrawal || txn.Status != domain.TransactionStatusPending {
			return ErrWithdrawalNotPending
		}

		if req.Success {
			return ledger.UpdateStatus(ctx, txn.ID, domain.TransactionStatusCompleted)
		}

		if err := ledger.UpdateStatus(ctx, txn.ID, domain.TransactionStatusFailed); err != nil {
			return err
		}

		wallet, err := lockWallet(ctx, wallets, txn.DriverID)
		if err != nil {
			return err
		}

		now := time.Now()
		wallet.TotalEarnings = wallet.TotalEarnings.Add(txn.Amount)
		wallet.UpdatedAt = now

		refund = &domain.Transaction{
			ID:              uuid.New().String(),
			DriverID:        txn.DriverID,
			WalletID:        wallet.ID,
			Type:            domain.TransactionTypeRefund,
			Amount:          txn.Amount,
			BalanceAfter:    wallet.TotalEarnings,
			Description:     "Refund for failed withdrawal " + txn.ReferenceNumber,
			ReferenceNumber: newReferenceNumber(refPrefixRefund),
			Status:          domain.TransactionStatusCompleted,
			CreatedAt:       now,
		}

		if err := ledger.Create(ctx, refund); err != nil {
			return err
		}

		return wallets.Update(ctx, wallet)
	})
	if err != nil {
		return nil, err
	}

	return refund, nil
}

// ListTransactionsRequest contains the filters for a ledger listing.
type ListTransactionsRequest struct {
	DriverID string
	Type     string
	Status   string
	Limit    int
	Offset   int
}

// ListTransactions returns ledger entries newest-first with ride
// snapshots, plus the total count for pagination.
func (s *WalletService) ListTransactions(ctx context.Context, req ListTransactionsRequest) ([]*domain.TransactionWithRide, int, error) {
	if req.DriverID == "" {
		return nil, 0, ErrInvalidDriverID
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

	filter := repository.TransactionFilter{
		DriverID: req.DriverID,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}

	if req.Type != "" {
		t := domain.TransactionType(req.Type)
		switch t {
		case domain.TransactionTypeCredit, domain.TransactionTypeDebit, domain.TransactionTypeWithdrawal,
			domain.TransactionTypeRefund, domain.TransactionTypeRideEarning, domain.TransactionTypeAdjustment:
			filter.Type = t
		default:
			return nil, 0, ErrInvalidTransactionType
		}
	}

	if req.Status != "" {
		st := domain.TransactionStatus(req.Status)
		switch st {
		case domain.TransactionStatusPending, domain.TransactionStatusCompleted, domain.TransactionStatusFailed:
			filter.Status = st
		default:
			return nil, 0, ErrInvalidTransactionStatus
		}
	}

	return s.txnRepo.ListByDriver(ctx, filter)
}

// replayedTransaction returns the prior result for a seen idempotency
// key, nil when the key is empty or unseen.
func (s *WalletService) replayedTransaction(ctx context.Context, key string) (*domain.Transaction, error) {
	if key == "" {
		return nil, nil
	}
	return s.txnRepo.GetByIdempotencyKey(ctx, key)
}

// resolveDuplicate handles the race where two requests with the same
// idempotency key pass the pre-check: the loser's insert hits the
// unique index and is answered with the winner's entry.
func (s *WalletService) resolveDuplicate(ctx context.Context, key string, cause error) (*domain.Transaction, error) {
	if key != "" && errors.Is(cause, repository.ErrDuplicate) {
		existing, err := s.txnRepo.GetByIdempotencyKey(ctx, key)
		if err == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, cause
}

// lockWallet reads the wallet under the row lock, mapping absence to
// the wallet-specific error.
func lockWallet(ctx context.Context, wallets repository.WalletRepository, driverID string) (*domain.Wallet, error) {
	wallet, err := wallets.GetByDriverIDForUpdate(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}
