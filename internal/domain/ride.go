package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ride is the record written by the ride-lifecycle process. This
// subsystem only reads it: ride-earning credits and reviews reference
// rides by id, and listings attach a RideSummary built from these
// fields.
type Ride struct {
	ID         string
	RideNumber string
	DriverID   string
	Pickup     string
	Dropoff    string
	Fare       decimal.Decimal
	Date       time.Time
	Passengers int
	Status     string
	CreatedAt  time.Time
}

// Summary builds the display snapshot attached to ledger entries and
// reviews.
func (r *Ride) Summary() *RideSummary {
	return &RideSummary{
		RideNumber: r.RideNumber,
		Route:      r.Pickup + " - " + r.Dropoff,
		Fare:       r.Fare,
		Date:       r.Date,
		Passengers: r.Passengers,
		Status:     r.Status,
	}
}
