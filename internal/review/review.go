package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrBookingNotFound = errors.New("booking not found")
)

// Review is feedback left on a booking.
type Review struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	UserID     uuid.UUID
	Rating     int
	Comment    string
	ReviewedAt time.Time
}
