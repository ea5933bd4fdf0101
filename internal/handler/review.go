package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sawari/internal/domain"
	"sawari/internal/service"
)

// ReviewHandler handles HTTP requests for driver reviews.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest is the HTTP request body for recording a review.
type CreateReviewRequest struct {
	DriverID     string `json:"driver_id"`
	CustomerName string `json:"customer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	RideID       string `json:"ride_id,omitempty"`
}

// ReviewResponse is the HTTP representation of a review.
type ReviewResponse struct {
	ID           string               `json:"id"`
	DriverID     string               `json:"driver_id"`
	CustomerID   string               `json:"customer_id"`
	CustomerName string               `json:"customer_name"`
	Rating       int                  `json:"rating"`
	Comment      string               `json:"comment,omitempty"`
	RideID       string               `json:"ride_id,omitempty"`
	CreatedAt    string               `json:"created_at"`
	Ride         *RideSummaryResponse `json:"ride,omitempty"`
}

// DriverReviewsResponse is the driver-facing review listing with the
// computed aggregate.
type DriverReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
}

// CreateReview handles POST /v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), service.CreateReviewRequest{
		DriverID:     req.DriverID,
		CustomerID:   callerID(c),
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
		RideID:       req.RideID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReviewResponse(review))
}

// GetDriverReviews handles GET /v1/reviews/driver/:driverId
func (h *ReviewHandler) GetDriverReviews(c *gin.Context) {
	result, err := h.reviewService.GetDriverReviews(c.Request.Context(), c.Param("driverId"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := DriverReviewsResponse{
		Reviews:       make([]ReviewResponse, 0, len(result.Reviews)),
		AverageRating: result.AverageRating,
	}
	for _, review := range result.Reviews {
		response.Reviews = append(response.Reviews, toReviewWithRideResponse(review))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetCustomerReviews handles GET /v1/reviews/customer/:customerId
func (h *ReviewHandler) GetCustomerReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetCustomerReviews(c.Request.Context(), c.Param("customerId"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		response = append(response, toReviewWithRideResponse(review))
	}

	respondJSON(c, http.StatusOK, response)
}

func toReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:           review.ID,
		DriverID:     review.DriverID,
		CustomerID:   review.CustomerID,
		CustomerName: review.CustomerName,
		Rating:       review.Rating,
		Comment:      review.Comment,
		RideID:       review.RideID,
		CreatedAt:    review.CreatedAt.Format(timeFormat),
	}
}

func toReviewWithRideResponse(review *domain.ReviewWithRide) ReviewResponse {
	response := toReviewResponse(&review.Review)
	if review.Ride != nil {
		response.Ride = &RideSummaryResponse{
			RideNumber: review.Ride.RideNumber,
			Route:      review.Ride.Route,
			Fare:       review.Ride.Fare.String(),
			Date:       review.Ride.Date.Format(timeFormat),
			Passengers: review.Ride.Passengers,
			Status:     review.Ride.Status,
		}
	}
	return response
}
