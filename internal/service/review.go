package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sawari/internal/domain"
	internalRedis "sawari/internal/redis"
	"sawari/internal/repository"
)

// RatingCache caches the computed average rating per driver.
type RatingCache interface {
	GetRating(ctx context.Context, driverID string) (*internalRedis.CachedRating, error)
	SetRating(ctx context.Context, rating *internalRedis.CachedRating) error
	InvalidateRating(ctx context.Context, driverID string) error
}

// ReviewService records reviews and serves the driver-facing rating
// aggregate.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	rideRepo   repository.RideRepository
	cache      RatingCache
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, rideRepo repository.RideRepository, cache RatingCache) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		rideRepo:   rideRepo,
		cache:      cache,
	}
}

// CreateReviewRequest contains the parameters for recording a review.
type CreateReviewRequest struct {
	DriverID     string
	CustomerID   string
	CustomerName string
	Rating       int
	Comment      string
	RideID       string
}

// CreateReview validates and records a review. A referenced ride must
// exist.
func (s *ReviewService) CreateReview(ctx context.Context, req CreateReviewRequest) (*domain.Review, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.CustomerID == "" || req.CustomerName == "" {
		return nil, ErrMissingCustomer
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if req.RideID != "" {
		if _, err := s.rideRepo.GetByID(ctx, req.RideID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrRideNotFound
			}
			return nil, err
		}
	}

	review := &domain.Review{
		ID:           uuid.New().String(),
		DriverID:     req.DriverID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
		RideID:       req.RideID,
		CreatedAt:    time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRating(ctx, req.DriverID)
	}

	return review, nil
}

// DriverReviews bundles a driver's reviews with the computed average.
type DriverReviews struct {
	Reviews       []*domain.ReviewWithRide
	AverageRating float64
}

// GetDriverReviews returns all reviews for a driver newest-first plus
// the average rating (0 when no reviews exist).
func (s *ReviewService) GetDriverReviews(ctx context.Context, driverID string) (*DriverReviews, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	reviews, err := s.reviewRepo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	average, err := s.averageRating(ctx, driverID)
	if err != nil {
		return nil, err
	}

	return &DriverReviews{
		Reviews:       reviews,
		AverageRating: average,
	}, nil
}

// GetCustomerReviews returns the customer's own review history. The
// caller must be the owning customer; a mismatch reads as not found.
func (s *ReviewService) GetCustomerReviews(ctx context.Context, customerID, callerID string) ([]*domain.ReviewWithRide, error) {
	if callerID == "" {
		return nil, ErrInvalidUserID
	}
	if customerID == "" || customerID != callerID {
		return nil, repository.ErrNotFound
	}

	return s.reviewRepo.ListByCustomer(ctx, customerID)
}

func (s *ReviewService) averageRating(ctx context.Context, driverID string) (float64, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRating(ctx, driverID); err == nil && cached != nil {
			return cached.AverageRating, nil
		}
	}

	average, err := s.reviewRepo.AverageRating(ctx, driverID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.SetRating(ctx, &internalRedis.CachedRating{
			DriverID:      driverID,
			AverageRating: average,
		})
	}

	return average, nil
}
