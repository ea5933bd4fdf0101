package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sawari/internal/repository"
	"sawari/internal/service"
)

// ErrorResponse is the JSON error body: a human-readable message plus
// a machine-readable code. Business-rule errors carry the context the
// caller needs to self-correct.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Available string   `json:"available,omitempty"`
	Requested string   `json:"requested,omitempty"`
	Seats     []string `json:"seats,omitempty"`
}

// respondError sends an error response with the appropriate HTTP
// status code and error code.
func respondError(c *gin.Context, err error) {
	status, code := mapError(err)

	body := ErrorResponse{Error: err.Error(), Code: code}

	var balanceErr *service.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		body.Available = balanceErr.Available.String()
		body.Requested = balanceErr.Requested.String()
	}

	var seatsErr *service.SeatsUnavailableError
	if errors.As(err, &seatsErr) {
		body.Seats = seatsErr.Seats
	}

	if status == http.StatusInternalServerError {
		// Never leak internals beyond a short message.
		body.Error = "internal error"
	}

	c.JSON(status, body)
}

// respondBadRequest reports a malformed request body.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "INVALID_REQUEST"})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapError maps service/repository errors to an HTTP status and a
// machine-readable code.
func mapError(err error) (int, string) {
	switch {
	// Not found / ownership errors. Ownership mismatches are
	// indistinguishable from true absence.
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrWalletNotFound):
		return http.StatusNotFound, "WALLET_NOT_FOUND"
	case errors.Is(err, service.ErrTransactionNotFound):
		return http.StatusNotFound, "TRANSACTION_NOT_FOUND"
	case errors.Is(err, service.ErrRideNotFound):
		return http.StatusNotFound, "RIDE_NOT_FOUND"

	// Validation errors.
	case errors.Is(err, service.ErrInvalidDriverID):
		return http.StatusBadRequest, "MISSING_DRIVER_ID"
	case errors.Is(err, service.ErrInvalidUserID):
		return http.StatusUnauthorized, "MISSING_USER_ID"
	case errors.Is(err, service.ErrAmountTooLow):
		return http.StatusBadRequest, "AMOUNT_TOO_LOW"
	case errors.Is(err, service.ErrAmountTooHigh):
		return http.StatusBadRequest, "AMOUNT_TOO_HIGH"
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT"
	case errors.Is(err, service.ErrWithdrawBelowMinimum):
		return http.StatusBadRequest, "AMOUNT_TOO_LOW"
	case errors.Is(err, service.ErrMissingDescription):
		return http.StatusBadRequest, "MISSING_DESCRIPTION"
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest, "INVALID_PAYMENT_METHOD"
	case errors.Is(err, service.ErrInvalidBankDetails):
		return http.StatusBadRequest, "INVALID_BANK_DETAILS"
	case errors.Is(err, service.ErrInvalidOperation):
		return http.StatusBadRequest, "INVALID_OPERATION"
	case errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "INVALID_LIMIT"
	case errors.Is(err, service.ErrInvalidOffset):
		return http.StatusBadRequest, "INVALID_OFFSET"
	case errors.Is(err, service.ErrInvalidTransactionType):
		return http.StatusBadRequest, "INVALID_TYPE"
	case errors.Is(err, service.ErrInvalidTransactionStatus):
		return http.StatusBadRequest, "INVALID_STATUS"
	case errors.Is(err, service.ErrMissingPaymentProof):
		return http.StatusBadRequest, "MISSING_PAYMENT_PROOF"
	case errors.Is(err, service.ErrInvalidVehicleType):
		return http.StatusBadRequest, "INVALID_VEHICLE_TYPE"
	case errors.Is(err, service.ErrMissingSeats):
		return http.StatusBadRequest, "MISSING_SEATS"
	case errors.Is(err, service.ErrInvalidFare):
		return http.StatusBadRequest, "INVALID_FARE"
	case errors.Is(err, service.ErrInvalidPassengers):
		return http.StatusBadRequest, "INVALID_PASSENGERS"
	case errors.Is(err, service.ErrMissingRoute):
		return http.StatusBadRequest, "MISSING_ROUTE"
	case errors.Is(err, service.ErrMissingDatetime):
		return http.StatusBadRequest, "MISSING_DATETIME"
	case errors.Is(err, service.ErrInvalidBookingStatus):
		return http.StatusBadRequest, "INVALID_STATUS"
	case errors.Is(err, service.ErrInvalidPaymentStatus):
		return http.StatusBadRequest, "INVALID_PAYMENT_STATUS"
	case errors.Is(err, service.ErrInvalidFields):
		return http.StatusBadRequest, "INVALID_FIELDS"
	case errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest, "INVALID_RATING"
	case errors.Is(err, service.ErrMissingCustomer):
		return http.StatusBadRequest, "MISSING_CUSTOMER"

	// Business-rule conflicts.
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"
	case errors.Is(err, service.ErrInsufficientPending):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_PENDING"
	case errors.Is(err, service.ErrWithdrawalNotPending):
		return http.StatusConflict, "WITHDRAWAL_NOT_PENDING"
	case errors.Is(err, service.ErrBookingAlreadyCancelled):
		return http.StatusConflict, "ALREADY_CANCELLED"
	case errors.Is(err, service.ErrSeatsUnavailable):
		return http.StatusConflict, "SEATS_UNAVAILABLE"
	case errors.Is(err, service.ErrSeatsLocked):
		return http.StatusConflict, "SEATS_LOCKED"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "DUPLICATE"

	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// userIDHeader carries the pre-authenticated caller identity set by
// the upstream auth layer.
const userIDHeader = "X-User-ID"

// callerID returns the authenticated caller's id, empty when absent.
func callerID(c *gin.Context) string {
	return c.GetHeader(userIDHeader)
}

// idempotencyKey returns the caller-supplied retry key, empty when
// absent.
func idempotencyKey(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}
