package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

// Booking represents a client's commitment to purchase a gig.
type Booking struct {
	ID        uuid.UUID
	GigID     uuid.UUID
	ClientID  uuid.UUID
	Status    Status
	Gig       *GigSummary // Loaded via JOIN
	BookedAt  time.Time
	UpdatedAt *time.Time
}

// GigSummary carries the booked gig's details for display alongside a booking.
type GigSummary struct {
	ID           uuid.UUID
	Title        string
	Price        decimal.Decimal
	FreelancerID uuid.UUID
}
