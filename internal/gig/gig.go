package gig

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("gig not found")
	ErrInvalidPrice = errors.New("gig price must be positive")
)

// Gig represents a service offering with a fixed price, owned by a freelancer.
type Gig struct {
	ID           uuid.UUID
	FreelancerID uuid.UUID
	Title        string
	Description  string
	Price        decimal.Decimal
	DeliveryDays int
	CreatedAt    time.Time
}
