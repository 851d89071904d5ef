package dispute

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("dispute not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrAlreadyResolved = errors.New("dispute is already resolved")
)

// ResolutionStatus tracks where a dispute stands.
type ResolutionStatus string

const (
	StatusOpen     ResolutionStatus = "OPEN"
	StatusResolved ResolutionStatus = "RESOLVED"
	StatusRejected ResolutionStatus = "REJECTED"
)

// Dispute is a complaint raised against a booking.
type Dispute struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	Description      string
	ResolutionStatus ResolutionStatus
	OpenedAt         time.Time
	ResolvedAt       *time.Time
}
