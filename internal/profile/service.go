package profile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfileByUser(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateForUser makes the empty profile that accompanies every new account.
// Registration calls this explicitly; there is no magic on user creation.
func (s *Service) CreateForUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p := &Profile{
		ID:     uuid.New(),
		UserID: userID,
		Skills: []string{},
	}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfileByUser(ctx, userID)
}

type UpdateParams struct {
	Bio          *string
	Skills       []string
	PortfolioURL *string
	ContactEmail *string
	ContactPhone *string
}

func (s *Service) UpdateByUser(ctx context.Context, userID uuid.UUID, params UpdateParams) (*Profile, error) {
	p, err := s.repo.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Bio != nil {
		p.Bio = *params.Bio
	}

	if params.Skills != nil {
		p.Skills = params.Skills
	}

	if params.PortfolioURL != nil {
		p.PortfolioURL = *params.PortfolioURL
	}

	if params.ContactEmail != nil {
		p.ContactEmail = *params.ContactEmail
	}

	if params.ContactPhone != nil {
		p.ContactPhone = *params.ContactPhone
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
