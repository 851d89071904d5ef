package gig

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateGig(ctx context.Context, g *Gig) error
	GetGig(ctx context.Context, id uuid.UUID) (*Gig, error)
	ListGigs(ctx context.Context) ([]*Gig, error)
	UpdateGig(ctx context.Context, g *Gig) error
	DeleteGig(ctx context.Context, id, freelancerID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title        string
	Description  string
	Price        decimal.Decimal
	DeliveryDays int
}

func (s *Service) Create(ctx context.Context, freelancerID uuid.UUID, params CreateParams) (*Gig, error) {
	if !params.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	g := &Gig{
		ID:           uuid.New(),
		FreelancerID: freelancerID,
		Title:        params.Title,
		Description:  params.Description,
		Price:        params.Price,
		DeliveryDays: params.DeliveryDays,
	}
	if err := s.repo.CreateGig(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Gig, error) {
	return s.repo.GetGig(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Gig, error) {
	return s.repo.ListGigs(ctx)
}

type UpdateParams struct {
	Title        *string
	Description  *string
	Price        *decimal.Decimal
	DeliveryDays *int
}

// Update applies a partial edit. Only the owning freelancer may edit a gig;
// open orders are unaffected because the payment engine snapshots the price.
func (s *Service) Update(ctx context.Context, id, freelancerID uuid.UUID, params UpdateParams) (*Gig, error) {
	g, err := s.repo.GetGig(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.FreelancerID != freelancerID {
		return nil, ErrNotFound
	}

	if params.Title != nil {
		g.Title = *params.Title
	}

	if params.Description != nil {
		g.Description = *params.Description
	}

	if params.Price != nil {
		if !params.Price.IsPositive() {
			return nil, ErrInvalidPrice
		}

		g.Price = *params.Price
	}

	if params.DeliveryDays != nil {
		g.DeliveryDays = *params.DeliveryDays
	}

	if err := s.repo.UpdateGig(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Delete(ctx context.Context, id, freelancerID uuid.UUID) error {
	return s.repo.DeleteGig(ctx, id, freelancerID)
}
