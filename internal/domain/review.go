package domain

import "time"

// Review is a customer rating of a driver, written once after a
// completed ride. Immutable after creation.
type Review struct {
	ID           string
	DriverID     string
	CustomerID   string
	CustomerName string
	Rating       int // 1..5 inclusive
	Comment      string
	RideID       string // empty when the review is not tied to a ride
	CreatedAt    time.Time
}

// ReviewWithRide pairs a review with the snapshot of its ride, when
// one is referenced.
type ReviewWithRide struct {
	Review
	Ride *RideSummary
}
