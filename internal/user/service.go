package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lancehub/lancehub/internal/profile"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// ProfileCreator makes the profile that goes with a new account.
type ProfileCreator interface {
	CreateForUser(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
}

type Service struct {
	repo     Repository
	profiles ProfileCreator
}

func NewService(repo Repository, profiles ProfileCreator) *Service {
	return &Service{repo: repo, profiles: profiles}
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Register creates the account and its profile in one workflow.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	if _, err := s.profiles.CreateForUser(ctx, u.ID); err != nil {
		// An account without a profile cannot act anywhere; take it back out.
		if delErr := s.repo.DeleteUser(ctx, u.ID); delErr != nil {
			return nil, fmt.Errorf("creating profile: %w (removing account: %v)", err, delErr)
		}

		return nil, fmt.Errorf("creating profile: %w", err)
	}

	return u, nil
}

// Authenticate checks the credentials and returns the account on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
