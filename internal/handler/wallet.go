package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sawari/internal/domain"
	"sawari/internal/service"
)

// WalletHandler handles HTTP requests for driver wallets.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// WalletResponse is the HTTP representation of a wallet snapshot.
type WalletResponse struct {
	ID               string `json:"id"`
	DriverID         string `json:"driver_id"`
	TotalEarnings    string `json:"total_earnings"`
	PendingPayouts   string `json:"pending_payouts"`
	LastPayoutAmount string `json:"last_payout_amount"`
	LastPayoutDate   string `json:"last_payout_date,omitempty"`
	Status           string `json:"status"`
	UpdatedAt        string `json:"updated_at"`
}

// RideSummaryResponse is the ride snapshot attached to ledger entries
// and reviews.
type RideSummaryResponse struct {
	RideNumber string `json:"ride_number"`
	Route      string `json:"route"`
	Fare       string `json:"fare"`
	Date       string `json:"date"`
	Passengers int    `json:"passengers"`
	Status     string `json:"status"`
}

// TransactionResponse is the HTTP representation of a ledger entry.
type TransactionResponse struct {
	ID              string               `json:"id"`
	DriverID        string               `json:"driver_id"`
	WalletID        string               `json:"wallet_id"`
	Type            string               `json:"type"`
	Amount          string               `json:"amount"`
	BalanceAfter    string               `json:"balance_after"`
	Description     string               `json:"description"`
	ReferenceNumber string               `json:"reference_number"`
	RideID          string               `json:"ride_id,omitempty"`
	Status          string               `json:"status"`
	CreatedAt       string               `json:"created_at"`
	Ride            *RideSummaryResponse `json:"ride"`
}

// TransactionListResponse is the paginated ledger listing.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// GetWallet handles GET /v1/wallet/:driverId
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletService.GetWallet(c.Request.Context(), c.Param("driverId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toWalletResponse(wallet))
}

// GetTransactions handles GET /v1/wallet/:driverId/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		respondError(c, service.ErrInvalidLimit)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		respondError(c, service.ErrInvalidOffset)
		return
	}

	req := service.ListTransactionsRequest{
		DriverID: c.Param("driverId"),
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Limit:    limit,
		Offset:   offset,
	}

	transactions, total, err := h.walletService.ListTransactions(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response := TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
		Total:        total,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}
	for _, txn := range transactions {
		response.Transactions = append(response.Transactions, toTransactionWithRideResponse(txn))
	}

	respondJSON(c, http.StatusOK, response)
}

// AddMoneyRequest is the HTTP request body for crediting a wallet.
type AddMoneyRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"payment_method"`
	RideID        string          `json:"ride_id,omitempty"`
}

// AddMoney handles POST /v1/wallet/:driverId/add-money
func (h *WalletHandler) AddMoney(c *gin.Context) {
	var req AddMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	txn, err := h.walletService.Credit(c.Request.Context(), service.CreditRequest{
		DriverID:       c.Param("driverId"),
		Amount:         req.Amount,
		Description:    req.Description,
		PaymentMethod:  service.PaymentMethod(req.PaymentMethod),
		RideID:         req.RideID,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransactionResponse(txn))
}

// WithdrawRequest is the HTTP request body for a payout request.
type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	BankDetails struct {
		AccountNumber     string `json:"account_number"`
		IFSCCode          string `json:"ifsc_code"`
		AccountHolderName string `json:"account_holder_name"`
		BankName          string `json:"bank_name,omitempty"`
	} `json:"bank_details"`
}

// Withdraw handles POST /v1/wallet/:driverId/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	txn, err := h.walletService.Withdraw(c.Request.Context(), service.WithdrawRequest{
		DriverID: c.Param("driverId"),
		Amount:   req.Amount,
		Bank: service.BankDetails{
			AccountNumber:     req.BankDetails.AccountNumber,
			IFSCCode:          req.BankDetails.IFSCCode,
			AccountHolderName: req.BankDetails.AccountHolderName,
			BankName:          req.BankDetails.BankName,
		},
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransactionResponse(txn))
}

// AdjustRequest is the HTTP request body for an administrative
// balance correction.
type AdjustRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Operation     string          `json:"operation"` // add or subtract
	UpdatePending bool            `json:"update_pending"`
	Reason        string          `json:"reason,omitempty"`
}

// Adjust handles POST /v1/wallet/:driverId/adjust
func (h *WalletHandler) Adjust(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	txn, err := h.walletService.Adjust(c.Request.Context(), service.AdjustRequest{
		DriverID:       c.Param("driverId"),
		Amount:         req.Amount,
		Operation:      service.AdjustOperation(req.Operation),
		UpdatePending:  req.UpdatePending,
		Reason:         req.Reason,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransactionResponse(txn))
}

// ResolveWithdrawalRequest is the HTTP request body for the bank
// processing callback.
type ResolveWithdrawalRequest struct {
	Success bool `json:"success"`
}

// ResolveWithdrawal handles POST /v1/transactions/:id/resolve
func (h *WalletHandler) ResolveWithdrawal(c *gin.Context) {
	var req ResolveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	refund, err := h.walletService.ResolveWithdrawal(c.Request.Context(), service.ResolveWithdrawalRequest{
		TransactionID: c.Param("id"),
		Success:       req.Success,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if refund == nil {
		c.Status(http.StatusNoContent)
		return
	}

	respondJSON(c, http.StatusOK, toTransactionResponse(refund))
}

func toWalletResponse(wallet *domain.Wallet) WalletResponse {
	response := WalletResponse{
		ID:               wallet.ID,
		DriverID:         wallet.DriverID,
		TotalEarnings:    wallet.TotalEarnings.String(),
		PendingPayouts:   wallet.PendingPayouts.String(),
		LastPayoutAmount: wallet.LastPayoutAmount.String(),
		Status:           string(wallet.Status),
		UpdatedAt:        wallet.UpdatedAt.Format(timeFormat),
	}
	if !wallet.LastPayoutDate.IsZero() {
		response.LastPayoutDate = wallet.LastPayoutDate.Format(timeFormat)
	}
	return response
}

func toTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              txn.ID,
		DriverID:        txn.DriverID,
		WalletID:        txn.WalletID,
		Type:            string(txn.Type),
		Amount:          txn.Amount.String(),
		BalanceAfter:    txn.BalanceAfter.String(),
		Description:     txn.Description,
		ReferenceNumber: txn.ReferenceNumber,
		RideID:          txn.RideID,
		Status:          string(txn.Status),
		CreatedAt:       txn.CreatedAt.Format(timeFormat),
	}
}

func toTransactionWithRideResponse(txn *domain.TransactionWithRide) TransactionResponse {
	response := toTransactionResponse(&txn.Transaction)
	if txn.Ride != nil {
		response.Ride = &RideSummaryResponse{
			RideNumber: txn.Ride.RideNumber,
			Route:      txn.Ride.Route,
			Fare:       txn.Ride.Fare.String(),
			Date:       txn.Ride.Date.Format(timeFormat),
			Passengers: txn.Ride.Passengers,
			Status:     txn.Ride.Status,
		}
	}
	return response
}

// intQuery parses an optional integer query parameter.
func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
