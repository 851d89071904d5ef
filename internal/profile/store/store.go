package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateProfile(ctx context.Context, p *profile.Profile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}

	query := `
		INSERT INTO profiles (id, user_id, bio, skills, portfolio_url, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := s.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Bio, skills, p.PortfolioURL, p.ContactEmail, p.ContactPhone,
	); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}

	return nil
}

func (s *Store) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := `
		SELECT id, user_id, bio, skills, portfolio_url, contact_email, contact_phone
		FROM profiles
		WHERE user_id = $1
	`

	var p profile.Profile

	var skills []byte

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Bio, &skills,
		&p.PortfolioURL, &p.ContactEmail, &p.ContactPhone,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, profile.ErrNotFound
		}

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	if err := json.Unmarshal(skills, &p.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}

	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *profile.Profile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}

	query := `
		UPDATE profiles
		SET bio = $1, skills = $2, portfolio_url = $3, contact_email = $4, contact_phone = $5
		WHERE id = $6
	`

	if _, err := s.db.ExecContext(ctx, query,
		p.Bio, skills, p.PortfolioURL, p.ContactEmail, p.ContactPhone, p.ID,
	); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	return nil
}
