package review

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateReview(ctx context.Context, r *Review) error
	ListReviewsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Review, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, bookingID, userID uuid.UUID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	r := &Review{
		ID:        uuid.New(),
		BookingID: bookingID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Review, error) {
	return s.repo.ListReviewsByBooking(ctx, bookingID)
}
