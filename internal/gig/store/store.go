package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/gig"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGig(s scanner) (*gig.Gig, error) {
	var g gig.Gig
	if err := s.Scan(
		&g.ID, &g.FreelancerID, &g.Title, &g.Description,
		&g.Price, &g.DeliveryDays, &g.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &g, nil
}

const selectGigColumns = `id, freelancer_id, title, description, price, delivery_days, created_at`

func (s *Store) CreateGig(ctx context.Context, g *gig.Gig) error {
	query := `
		INSERT INTO gigs (id, freelancer_id, title, description, price, delivery_days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.ID, g.FreelancerID, g.Title, g.Description, g.Price, g.DeliveryDays,
	).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating gig: %w", err)
	}

	return nil
}

func (s *Store) GetGig(ctx context.Context, id uuid.UUID) (*gig.Gig, error) {
	query := `SELECT ` + selectGigColumns + ` FROM gigs WHERE id = $1`

	g, err := scanGig(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, gig.ErrNotFound
		}

		return nil, fmt.Errorf("getting gig: %w", err)
	}

	return g, nil
}

func (s *Store) ListGigs(ctx context.Context) ([]*gig.Gig, error) {
	query := `SELECT ` + selectGigColumns + ` FROM gigs ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing gigs: %w", err)
	}
	defer rows.Close()

	var gigs []*gig.Gig

	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gig: %w", err)
		}

		gigs = append(gigs, g)
	}

	return gigs, rows.Err()
}

func (s *Store) UpdateGig(ctx context.Context, g *gig.Gig) error {
	query := `
		UPDATE gigs
		SET title = $1, description = $2, price = $3, delivery_days = $4
		WHERE id = $5 AND freelancer_id = $6
	`

	res, err := s.db.ExecContext(ctx, query,
		g.Title, g.Description, g.Price, g.DeliveryDays, g.ID, g.FreelancerID,
	)
	if err != nil {
		return fmt.Errorf("updating gig: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("gig rows affected: %w", err)
	}

	if affected == 0 {
		return gig.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteGig(ctx context.Context, id, freelancerID uuid.UUID) error {
	query := `DELETE FROM gigs WHERE id = $1 AND freelancer_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, freelancerID)
	if err != nil {
		return fmt.Errorf("deleting gig: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("gig rows affected: %w", err)
	}

	if affected == 0 {
		return gig.ErrNotFound
	}

	return nil
}
