package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sawari/internal/domain"
	"sawari/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	Pickup        string          `json:"pickup"`
	Dropoff       string          `json:"dropoff"`
	VehicleType   string          `json:"vehicle_type"`
	Datetime      time.Time       `json:"datetime"`
	Passengers    int             `json:"passengers,omitempty"`
	Seats         []string        `json:"seats"`
	Fare          decimal.Decimal `json:"fare"`
	PaymentID     string          `json:"payment_id"`
	OrderID       string          `json:"order_id"`
	Status        string          `json:"status,omitempty"`
	PaymentStatus string          `json:"payment_status,omitempty"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Pickup           string   `json:"pickup"`
	Dropoff          string   `json:"dropoff"`
	VehicleType      string   `json:"vehicle_type"`
	Datetime         string   `json:"datetime"`
	Passengers       int      `json:"passengers"`
	Seats            []string `json:"seats"`
	Fare             string   `json:"fare"`
	PaymentID        string   `json:"payment_id"`
	OrderID          string   `json:"order_id"`
	Status           string   `json:"status"`
	PaymentStatus    string   `json:"payment_status"`
	ConfirmationCode string   `json:"confirmation_code"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// BookingListResponse is the paginated booking listing.
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		UserID:        callerID(c),
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		VehicleType:   req.VehicleType,
		Datetime:      req.Datetime,
		Passengers:    req.Passengers,
		Seats:         req.Seats,
		Fare:          req.Fare,
		PaymentID:     req.PaymentID,
		OrderID:       req.OrderID,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListBookings handles GET /v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
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

	req := service.ListBookingsRequest{
		UserID: callerID(c),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response := BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Total:    total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	for _, booking := range bookings {
		response.Bookings = append(response.Bookings, toBookingResponse(booking))
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateBooking handles PATCH /v1/bookings/:id
//
// The payload may contain only status and payment_status. Any other
// key rejects the patch in full; in particular ownership (user_id) is
// immutable after creation.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var payload map[string]json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	req := service.UpdateBookingRequest{
		ID:     c.Param("id"),
		UserID: callerID(c),
	}

	for key, raw := range payload {
		switch key {
		case "status":
			var status string
			if err := json.Unmarshal(raw, &status); err != nil {
				respondBadRequest(c, "invalid status value")
				return
			}
			req.Status = &status
		case "payment_status":
			var paymentStatus string
			if err := json.Unmarshal(raw, &paymentStatus); err != nil {
				respondBadRequest(c, "invalid payment_status value")
				return
			}
			req.PaymentStatus = &paymentStatus
		default:
			respondError(c, service.ErrInvalidFields)
			return
		}
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// CancelBooking handles DELETE /v1/bookings/:id
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:               booking.ID,
		UserID:           booking.UserID,
		Pickup:           booking.Pickup,
		Dropoff:          booking.Dropoff,
		VehicleType:      string(booking.VehicleType),
		Datetime:         booking.Datetime.Format(timeFormat),
		Passengers:       booking.Passengers,
		Seats:            booking.Seats,
		Fare:             booking.Fare.String(),
		PaymentID:        booking.PaymentID,
		OrderID:          booking.OrderID,
		Status:           string(booking.Status),
		PaymentStatus:    string(booking.PaymentStatus),
		ConfirmationCode: booking.ConfirmationCode,
		CreatedAt:        booking.CreatedAt.Format(timeFormat),
		UpdatedAt:        booking.UpdatedAt.Format(timeFormat),
	}
}
