package booking

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=booking
type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) error
	GetBooking(ctx context.Context, id, clientID uuid.UUID) (*Booking, error)
	ListBookingsByClient(ctx context.Context, clientID uuid.UUID) ([]*Booking, error)

	// TransitionStatus moves the booking to the target status if its current
	// status is one of the allowed source statuses. It returns the booking's
	// current status when the transition did not apply.
	TransitionStatus(ctx context.Context, id, clientID uuid.UUID, from []Status, to Status) (Status, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, gigID, clientID uuid.UUID) (*Booking, error) {
	b := &Booking{
		ID:       uuid.New(),
		GigID:    gigID,
		ClientID: clientID,
		Status:   StatusPending,
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id, clientID uuid.UUID) (*Booking, error) {
	return s.repo.GetBooking(ctx, id, clientID)
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Booking, error) {
	return s.repo.ListBookingsByClient(ctx, clientID)
}

// Cancel withdraws a booking that has not been paid for yet. Confirmed
// bookings are not cancellable here; refunds are a support workflow.
func (s *Service) Cancel(ctx context.Context, id, clientID uuid.UUID) error {
	_, err := s.repo.TransitionStatus(ctx, id, clientID,
		[]Status{StatusPending, StatusFailed}, StatusCancelled)

	return err
}

// Complete marks a confirmed booking as delivered.
func (s *Service) Complete(ctx context.Context, id, clientID uuid.UUID) error {
	_, err := s.repo.TransitionStatus(ctx, id, clientID,
		[]Status{StatusConfirmed}, StatusCompleted)

	return err
}
