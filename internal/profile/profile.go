package profile

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

// Profile is a user's marketplace identity: freelancers attach gigs to it,
// clients attach bookings to it.
type Profile struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Bio          string
	Skills       []string
	PortfolioURL string
	ContactEmail string
	ContactPhone string
}
