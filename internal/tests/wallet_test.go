package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sawari/internal/domain"
	"sawari/internal/service"
)

// ──────────────────────────────────────────────
// 1. WALLET ACCESS
// ──────────────────────────────────────────────

func newWalletService(walletRepo *MockWalletRepository, txnRepo *MockTransactionRepository) *service.WalletService {
	store := NewMockStore(walletRepo, txnRepo, nil)
	return service.NewWalletService(store, walletRepo, txnRepo)
}

func seedWallet(walletRepo *MockWalletRepository, driverID string, balance int64) *domain.Wallet {
	wallet := &domain.Wallet{
		ID:            "wallet-" + driverID,
		DriverID:      driverID,
		TotalEarnings: decimal.NewFromInt(balance),
		Status:        domain.WalletStatusActive,
		UpdatedAt:     time.Now(),
	}
	walletRepo.AddWallet(wallet)
	return wallet
}

func TestGetWallet_CreatesOnFirstAccess(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)

	wallet, err := svc.GetWallet(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %s", wallet.DriverID)
	}
	if wallet.Status != domain.WalletStatusActive {
		t.Errorf("expected active wallet, got %s", wallet.Status)
	}
	if !wallet.TotalEarnings.IsZero() {
		t.Errorf("expected zero balance, got %s", wallet.TotalEarnings)
	}
	if walletRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 create call, got %d", walletRepo.CreateCallCount)
	}

	// Second access returns the same wallet without creating again.
	again, err := svc.GetWallet(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != wallet.ID {
		t.Errorf("expected wallet %s, got %s", wallet.ID, again.ID)
	}
	if walletRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 create call after re-read, got %d", walletRepo.CreateCallCount)
	}
}

func TestGetWallet_CreationRace_OtherRequestWins(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)

	// Simulate losing the creation race: the pre-read misses, the
	// insert hits the unique index, the re-read finds the winner.
	existing := seedWallet(walletRepo, "driver-1", 750)
	walletRepo.MissReads = 1

	wallet, err := svc.GetWallet(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.ID != existing.ID {
		t.Errorf("expected winner wallet %s, got %s", existing.ID, wallet.ID)
	}
}

func TestGetWallet_EmptyDriverID(t *testing.T) {
	t.Parallel()

	svc := newWalletService(NewMockWalletRepository(), NewMockTransactionRepository())

	_, err := svc.GetWallet(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. CREDIT
// ──────────────────────────────────────────────

func TestCredit_AppendsLedgerEntryAndUpdatesSnapshot(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 1000)

	txn, err := svc.Credit(context.Background(), service.CreditRequest{
		DriverID:      "driver-1",
		Amount:        decimal.NewFromInt(500),
		Description:   "Wallet top-up",
		PaymentMethod: service.PaymentMethodUPI,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Type != domain.TransactionTypeCredit {
		t.Errorf("expected credit type, got %s", txn.Type)
	}
	if txn.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected completed status, got %s", txn.Status)
	}
	if !strings.HasPrefix(txn.ReferenceNumber, "TXN") {
		t.Errorf("expected TXN reference prefix, got %s", txn.ReferenceNumber)
	}

	// Snapshot and newest ledger entry must agree.
	wallet := walletRepo.GetWallet("driver-1")
	want := decimal.NewFromInt(1500)
	if !wallet.TotalEarnings.Equal(want) {
		t.Errorf("expected balance %s, got %s", want, wallet.TotalEarnings)
	}
	if !txn.BalanceAfter.Equal(wallet.TotalEarnings) {
		t.Errorf("balance_after %s does not match snapshot %s", txn.BalanceAfter, wallet.TotalEarnings)
	}
	if txnRepo.CountTransactions() != 1 {
		t.Errorf("expected 1 ledger entry, got %d", txnRepo.CountTransactions())
	}
}

func TestCredit_RideEarningWhenRideReferenced(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 0)

	txn, err := svc.Credit(context.Background(), service.CreditRequest{
		DriverID:      "driver-1",
		Amount:        decimal.NewFromInt(320),
		Description:   "Ride fare",
		PaymentMethod: service.PaymentMethodWallet,
		RideID:        "ride-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Type != domain.TransactionTypeRideEarning {
		t.Errorf("expected ride_earning type, got %s", txn.Type)
	}
	if txn.RideID != "ride-1" {
		t.Errorf("expected ride-1 reference, got %q", txn.RideID)
	}
}

func TestCredit_AmountBounds(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 0)

	base := service.CreditRequest{
		DriverID:      "driver-1",
		Description:   "Wallet top-up",
		PaymentMethod: service.PaymentMethodCard,
	}

	low := base
	low.Amount = decimal.NewFromInt(99)
	if _, err := svc.Credit(context.Background(), low); !errors.Is(err, service.ErrAmountTooLow) {
		t.Errorf("expected ErrAmountTooLow, got %v", err)
	}

	high := base
	high.Amount = decimal.NewFromInt(50001)
	if _, err := svc.Credit(context.Background(), high); !errors.Is(err, service.ErrAmountTooHigh) {
		t.Errorf("expected ErrAmountTooHigh, got %v", err)
	}

	// Bounds are inclusive.
	minOK := base
	minOK.Amount = decimal.NewFromInt(100)
	if _, err := svc.Credit(context.Background(), minOK); err != nil {
		t.Errorf("expected minimum amount accepted, got %v", err)
	}
	maxOK := base
	maxOK.Amount = decimal.NewFromInt(50000)
	if _, err := svc.Credit(context.Background(), maxOK); err != nil {
		t.Errorf("expected maximum amount accepted, got %v", err)
	}

	// Rejected requests never touched the ledger.
	if txnRepo.CountTransactions() != 2 {
		t.Errorf("expected 2 ledger entries, got %d", txnRepo.CountTransactions())
	}
}

func TestCredit_Validation(t *testing.T) {
	t.Parallel()

	svc := newWalletService(NewMockWalletRepository(), NewMockTransactionRepository())
	amount := decimal.NewFromInt(500)

	cases := []struct {
		name string
		req  service.CreditRequest
		want error
	}{
		{
			name: "empty driver id",
			req:  service.CreditRequest{Amount: amount, Description: "x", PaymentMethod: service.PaymentMethodUPI},
			want: service.ErrInvalidDriverID,
		},
		{
			name: "missing description",
			req:  service.CreditRequest{DriverID: "driver-1", Amount: amount, PaymentMethod: service.PaymentMethodUPI},
			want: service.ErrMissingDescription,
		},
		{
			name: "unknown payment method",
			req:  service.CreditRequest{DriverID: "driver-1", Amount: amount, Description: "x", PaymentMethod: "cash"},
			want: service.ErrInvalidPaymentMethod,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Credit(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCredit_IdempotencyReplayReturnsOriginal(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 0)

	req := service.CreditRequest{
		DriverID:       "driver-1",
		Amount:         decimal.NewFromInt(1000),
		Description:    "Wallet top-up",
		PaymentMethod:  service.PaymentMethodUPI,
		IdempotencyKey: "retry-key-1",
	}

	first, err := svc.Credit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Credit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected replay to return entry %s, got %s", first.ID, second.ID)
	}
	if txnRepo.CountTransactions() != 1 {
		t.Errorf("expected a single ledger entry, got %d", txnRepo.CountTransactions())
	}

	// The balance moved exactly once.
	wallet := walletRepo.GetWallet("driver-1")
	if !wallet.TotalEarnings.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance 1000, got %s", wallet.TotalEarnings)
	}
}

// ──────────────────────────────────────────────
// 3. WITHDRAWAL
// ──────────────────────────────────────────────

func validBank() service.BankDetails {
	return service.BankDetails{
		AccountNumber:     "123456789012",
		IFSCCode:          "SBIN0001234",
		AccountHolderName: "Asha Verma",
		BankName:          "State Bank",
	}
}

func TestWithdraw_AppendsPendingEntryAndDeductsBalance(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 2000)

	txn, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
		DriverID: "driver-1",
		Amount:   decimal.NewFromInt(800),
		Bank:     validBank(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Type != domain.TransactionTypeWithdrawal {
		t.Errorf("expected withdrawal type, got %s", txn.Type)
	}
	if txn.Status != domain.TransactionStatusPending {
		t.Errorf("expected pending status, got %s", txn.Status)
	}
	if !strings.HasPrefix(txn.ReferenceNumber, "WTH") {
		t.Errorf("expected WTH reference prefix, got %s", txn.ReferenceNumber)
	}
	// The ledger records only the account tail.
	if strings.Contains(txn.Description, "123456789012") {
		t.Errorf("full account number leaked into description: %s", txn.Description)
	}
	if !strings.Contains(txn.Description, "9012") {
		t.Errorf("expected account tail in description, got %s", txn.Description)
	}

	wallet := walletRepo.GetWallet("driver-1")
	if !wallet.TotalEarnings.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected balance 1200, got %s", wallet.TotalEarnings)
	}
	if !wallet.LastPayoutAmount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected last payout 800, got %s", wallet.LastPayoutAmount)
	}
	if wallet.LastPayoutDate.IsZero() {
		t.Error("expected last payout date to be set")
	}
	if !txn.BalanceAfter.Equal(wallet.TotalEarnings) {
		t.Errorf("balance_after %s does not match snapshot %s", txn.BalanceAfter, wallet.TotalEarnings)
	}
}

func TestWithdraw_BelowMinimum(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	svc := newWalletService(walletRepo, NewMockTransactionRepository())
	seedWallet(walletRepo, "driver-1", 2000)

	_, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
		DriverID: "driver-1",
		Amount:   decimal.NewFromInt(499),
		Bank:     validBank(),
	})
	if !errors.Is(err, service.ErrWithdrawBelowMinimum) {
		t.Errorf("expected ErrWithdrawBelowMinimum, got %v", err)
	}
}

func TestWithdraw_InvalidBankDetails(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	svc := newWalletService(walletRepo, NewMockTransactionRepository())
	seedWallet(walletRepo, "driver-1", 2000)

	cases := []struct {
		name   string
		mutate func(*service.BankDetails)
	}{
		{"missing account number", func(b *service.BankDetails) { b.AccountNumber = "" }},
		{"missing holder name", func(b *service.BankDetails) { b.AccountHolderName = "" }},
		{"short ifsc", func(b *service.BankDetails) { b.IFSCCode = "SBIN001" }},
		{"ifsc with symbols", func(b *service.BankDetails) { b.IFSCCode = "SBIN-001234" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			bank := validBank()
			tc.mutate(&bank)
			_, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
				DriverID: "driver-1",
				Amount:   decimal.NewFromInt(600),
				Bank:     bank,
			})
			if !errors.Is(err, service.ErrInvalidBankDetails) {
				t.Errorf("expected ErrInvalidBankDetails, got %v", err)
			}
		})
	}
}

func TestWithdraw_InsufficientBalance_LeavesStateUntouched(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 600)

	_, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
		DriverID: "driver-1",
		Amount:   decimal.NewFromInt(900),
		Bank:     validBank(),
	})
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// The typed error carries the balance context.
	var insufficient *service.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatal("expected InsufficientBalanceError")
	}
	if !insufficient.Available.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected available 600, got %s", insufficient.Available)
	}
	if !insufficient.Requested.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected requested 900, got %s", insufficient.Requested)
	}

	// Neither the snapshot nor the ledger moved.
	wallet := walletRepo.GetWallet("driver-1")
	if !wallet.TotalEarnings.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected balance 600, got %s", wallet.TotalEarnings)
	}
	if txnRepo.CountTransactions() != 0 {
		t.Errorf("expected empty ledger, got %d entries", txnRepo.CountTransactions())
	}
}

func TestWithdraw_MissingWallet(t *testing.T) {
	t.Parallel()

	svc := newWalletService(NewMockWalletRepository(), NewMockTransactionRepository())

	_, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
		DriverID: "driver-unknown",
		Amount:   decimal.NewFromInt(600),
		Bank:     validBank(),
	})
	if !errors.Is(err, service.ErrWalletNotFound) {
		t.Errorf("expected ErrWalletNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. ADJUSTMENT
// ──────────────────────────────────────────────

func TestAdjust_AddGoesThroughLedger(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 100)

	txn, err := svc.Adjust(context.Background(), service.AdjustRequest{
		DriverID:  "driver-1",
		Amount:    decimal.NewFromInt(250),
		Operation: service.AdjustOperationAdd,
		Reason:    "support ticket 4411",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Type != domain.TransactionTypeAdjustment {
		t.Errorf("expected adjustment type, got %s", txn.Type)
	}
	if !strings.HasPrefix(txn.ReferenceNumber, "ADJ") {
		t.Errorf("expected ADJ reference prefix, got %s", txn.ReferenceNumber)
	}
	if !strings.Contains(txn.Description, "support ticket 4411") {
		t.Errorf("expected reason in description, got %s", txn.Description)
	}

	// Every correction leaves an audit trail: the snapshot moved AND a
	// ledger entry exists.
	wallet := walletRepo.GetWallet("driver-1")
	if !wallet.TotalEarnings.Equal(decimal.NewFromInt(350)) {
		t.Errorf("expected balance 350, got %s", wallet.TotalEarnings)
	}
	if txnRepo.CountTransactions() != 1 {
		t.Errorf("expected 1 ledger entry, got %d", txnRepo.CountTransactions())
	}
	if !txn.BalanceAfter.Equal(wallet.TotalEarnings) {
		t.Errorf("balance_after %s does not match snapshot %s", txn.BalanceAfter, wallet.TotalEarnings)
	}
}

func TestAdjust_SubtractRequiresCoverage(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 100)

	_, err := svc.Adjust(context.Background(), service.AdjustRequest{
		DriverID:  "driver-1",
		Amount:    decimal.NewFromInt(200),
		Operation: service.AdjustOperationSubtract,
	})
	if !errors.Is(err, service.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if txnRepo.CountTransactions() != 0 {
		t.Errorf("expected empty ledger, got %d entries", txnRepo.CountTransactions())
	}
}

func TestAdjust_MovesPendingPayoutsWhenRequested(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	wallet := seedWallet(walletRepo, "driver-1", 1000)
	wallet.PendingPayouts = decimal.NewFromInt(300)

	_, err := svc.Adjust(context.Background(), service.AdjustRequest{
		DriverID:      "driver-1",
		Amount:        decimal.NewFromInt(200),
		Operation:     service.AdjustOperationSubtract,
		UpdatePending: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := walletRepo.GetWallet("driver-1")
	if !stored.TotalEarnings.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected balance 800, got %s", stored.TotalEarnings)
	}
	if !stored.PendingPayouts.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected pending 100, got %s", stored.PendingPayouts)
	}
}

func TestAdjust_InsufficientPending(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	svc := newWalletService(walletRepo, NewMockTransactionRepository())
	wallet := seedWallet(walletRepo, "driver-1", 1000)
	wallet.PendingPayouts = decimal.NewFromInt(50)

	_, err := svc.Adjust(context.Background(), service.AdjustRequest{
		DriverID:      "driver-1",
		Amount:        decimal.NewFromInt(200),
		Operation:     service.AdjustOperationSubtract,
		UpdatePending: true,
	})
	if !errors.Is(err, service.ErrInsufficientPending) {
		t.Errorf("expected ErrInsufficientPending, got %v", err)
	}
}

func TestAdjust_Validation(t *testing.T) {
	t.Parallel()

	svc := newWalletService(NewMockWalletRepository(), NewMockTransactionRepository())

	_, err := svc.Adjust(context.Background(), service.AdjustRequest{
		DriverID:  "driver-1",
		Amount:    decimal.NewFromInt(100),
		Operation: "multiply",
	})
	if !errors.Is(err, service.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}

	_, err = svc.Adjust(context.Background(), service.AdjustRequest{
		DriverID:  "driver-1",
		Amount:    decimal.NewFromInt(-10),
		Operation: service.AdjustOperationAdd,
	})
	if !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 5. WITHDRAWAL RESOLUTION
// ──────────────────────────────────────────────

func TestResolveWithdrawal_SuccessCompletesEntry(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 2000)

	pending, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
		DriverID: "driver-1",
		Amount:   decimal.NewFromInt(800),
		Bank:     validBank(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refund, err := svc.ResolveWithdrawal(context.Background(), service.ResolveWithdrawalRequest{
		TransactionID: pending.ID,
		Success:       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refund != nil {
		t.Errorf("expected no refund entry on success, got %v", refund)
	}

	stored := txnRepo.GetTransaction(pending.ID)
	if stored.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected completed status, got %s", stored.Status)
	}
	// Balance stays deducted.
	wallet := walletRepo.GetWallet("driver-1")
	if !wallet.TotalEarnings.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected balance 1200, got %s", wallet.TotalEarnings)
	}
}

func TestResolveWithdrawal_FailureRefundsViaCompensatingEntry(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 2000)

	pending, err := svc.Withdraw(context.Background(), service.WithdrawRequest{
		DriverID: "driver-1",
		Amount:   decimal.NewFromInt(800),
		Bank:     validBank(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refund, err := svc.ResolveWithdrawal(context.Background(), service.ResolveWithdrawalRequest{
		TransactionID: pending.ID,
		Success:       false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refund == nil {
		t.Fatal("expected a compensating refund entry")
	}

	if refund.Type != domain.TransactionTypeRefund {
		t.Errorf("expected refund type, got %s", refund.Type)
	}
	if !strings.HasPrefix(refund.ReferenceNumber, "RFD") {
		t.Errorf("expected RFD reference prefix, got %s", refund.ReferenceNumber)
	}
	if !refund.Amount.Equal(pending.Amount) {
		t.Errorf("expected refund amount %s, got %s", pending.Amount, refund.Amount)
	}

	// The original entry is failed but its monetary fields are intact.
	stored := txnRepo.GetTransaction(pending.ID)
	if stored.Status != domain.TransactionStatusFailed {
		t.Errorf("expected failed status, got %s", stored.Status)
	}
	if !stored.Amount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("original amount mutated: %s", stored.Amount)
	}

	// Balance restored, ledger has withdrawal + refund.
	wallet := walletRepo.GetWallet("driver-1")
	if !wallet.TotalEarnings.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected balance 2000, got %s", wallet.TotalEarnings)
	}
	if txnRepo.CountTransactions() != 2 {
		t.Errorf("expected 2 ledger entries, got %d", txnRepo.CountTransactions())
	}
}

func TestResolveWithdrawal_RejectsNonPendingEntry(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)
	seedWallet(walletRepo, "driver-1", 2000)

	txnRepo.AddTransaction(&domain.Transaction{
		ID:       "txn-credit",
		DriverID: "driver-1",
		Type:     domain.TransactionTypeCredit,
		Amount:   decimal.NewFromInt(500),
		Status:   domain.TransactionStatusCompleted,
	})

	_, err := svc.ResolveWithdrawal(context.Background(), service.ResolveWithdrawalRequest{
		TransactionID: "txn-credit",
		Success:       true,
	})
	if !errors.Is(err, service.ErrWithdrawalNotPending) {
		t.Errorf("expected ErrWithdrawalNotPending, got %v", err)
	}

	_, err = svc.ResolveWithdrawal(context.Background(), service.ResolveWithdrawalRequest{
		TransactionID: "txn-missing",
		Success:       true,
	})
	if !errors.Is(err, service.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 6. LEDGER LISTING
// ──────────────────────────────────────────────

func TestListTransactions_NewestFirstWithRideSnapshot(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)

	txnRepo.AddRide(&domain.Ride{
		ID:         "ride-1",
		RideNumber: "R-1001",
		Pickup:     "Patna Junction",
		Dropoff:    "Gandhi Maidan",
		Fare:       decimal.NewFromInt(320),
		Passengers: 2,
	})
	txnRepo.AddTransaction(&domain.Transaction{
		ID: "txn-1", DriverID: "driver-1",
		Type: domain.TransactionTypeCredit, Status: domain.TransactionStatusCompleted,
	})
	txnRepo.AddTransaction(&domain.Transaction{
		ID: "txn-2", DriverID: "driver-1", RideID: "ride-1",
		Type: domain.TransactionTypeRideEarning, Status: domain.TransactionStatusCompleted,
	})

	items, total, err := svc.ListTransactions(context.Background(), service.ListTransactionsRequest{
		DriverID: "driver-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "txn-2" {
		t.Errorf("expected newest entry first, got %s", items[0].ID)
	}
	if items[0].Ride == nil {
		t.Fatal("expected ride snapshot on ride_earning entry")
	}
	if items[0].Ride.Route != "Patna Junction - Gandhi Maidan" {
		t.Errorf("unexpected route: %s", items[0].Ride.Route)
	}
	if items[1].Ride != nil {
		t.Error("expected no ride snapshot on plain credit")
	}
}

func TestListTransactions_FilterAndPaginationValidation(t *testing.T) {
	t.Parallel()

	svc := newWalletService(NewMockWalletRepository(), NewMockTransactionRepository())

	cases := []struct {
		name string
		req  service.ListTransactionsRequest
		want error
	}{
		{"limit above cap", service.ListTransactionsRequest{DriverID: "d", Limit: 101}, service.ErrInvalidLimit},
		{"negative limit", service.ListTransactionsRequest{DriverID: "d", Limit: -1}, service.ErrInvalidLimit},
		{"negative offset", service.ListTransactionsRequest{DriverID: "d", Offset: -5}, service.ErrInvalidOffset},
		{"unknown type", service.ListTransactionsRequest{DriverID: "d", Type: "bonus"}, service.ErrInvalidTransactionType},
		{"unknown status", service.ListTransactionsRequest{DriverID: "d", Status: "queued"}, service.ErrInvalidTransactionStatus},
		{"missing driver", service.ListTransactionsRequest{}, service.ErrInvalidDriverID},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := svc.ListTransactions(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestListTransactions_TypeFilter(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	txnRepo := NewMockTransactionRepository()
	svc := newWalletService(walletRepo, txnRepo)

	txnRepo.AddTransaction(&domain.Transaction{
		ID: "txn-1", DriverID: "driver-1",
		Type: domain.TransactionTypeCredit, Status: domain.TransactionStatusCompleted,
	})
	txnRepo.AddTransaction(&domain.Transaction{
		ID: "txn-2", DriverID: "driver-1",
		Type: domain.TransactionTypeWithdrawal, Status: domain.TransactionStatusPending,
	})

	items, total, err := svc.ListTransactions(context.Background(), service.ListTransactionsRequest{
		DriverID: "driver-1",
		Type:     "withdrawal",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 withdrawal, got total=%d len=%d", total, len(items))
	}
	if items[0].ID != "txn-2" {
		t.Errorf("expected txn-2, got %s", items[0].ID)
	}
}
