package dispute

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateDispute(ctx context.Context, d *Dispute) error
	ListDisputesByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Dispute, error)

	// ResolveDispute closes an open dispute. Returns ErrAlreadyResolved when
	// the dispute already left OPEN, ErrNotFound when it does not exist.
	ResolveDispute(ctx context.Context, id uuid.UUID, status ResolutionStatus) (*Dispute, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Open(ctx context.Context, bookingID uuid.UUID, description string) (*Dispute, error) {
	d := &Dispute{
		ID:               uuid.New(),
		BookingID:        bookingID,
		Description:      description,
		ResolutionStatus: StatusOpen,
	}
	if err := s.repo.CreateDispute(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Dispute, error) {
	return s.repo.ListDisputesByBooking(ctx, bookingID)
}

func (s *Service) Resolve(ctx context.Context, id uuid.UUID, status ResolutionStatus) (*Dispute, error) {
	return s.repo.ResolveDispute(ctx, id, status)
}
