package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lancehub/lancehub/internal/dispute"
)

const pgForeignKeyViolation = "23503"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateDispute(ctx context.Context, d *dispute.Dispute) error {
	query := `
		INSERT INTO disputes (id, booking_id, description, resolution_status, opened_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING opened_at
	`

	err := s.db.QueryRowContext(ctx, query, d.ID, d.BookingID, d.Description, d.ResolutionStatus).
		Scan(&d.OpenedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return dispute.ErrBookingNotFound
		}

		return fmt.Errorf("creating dispute: %w", err)
	}

	return nil
}

func (s *Store) ListDisputesByBooking(ctx context.Context, bookingID uuid.UUID) ([]*dispute.Dispute, error) {
	query := `
		SELECT id, booking_id, description, resolution_status, opened_at, resolved_at
		FROM disputes
		WHERE booking_id = $1
		ORDER BY opened_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("listing disputes: %w", err)
	}
	defer rows.Close()

	var disputes []*dispute.Dispute

	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dispute: %w", err)
		}

		disputes = append(disputes, d)
	}

	return disputes, rows.Err()
}

func (s *Store) ResolveDispute(ctx context.Context, id uuid.UUID, status dispute.ResolutionStatus) (*dispute.Dispute, error) {
	query := `
		UPDATE disputes
		SET resolution_status = $2, resolved_at = NOW()
		WHERE id = $1 AND resolution_status = 'OPEN'
		RETURNING id, booking_id, description, resolution_status, opened_at, resolved_at
	`

	d, err := scanDispute(s.db.QueryRowContext(ctx, query, id, status))
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("resolving dispute: %w", err)
		}

		// Either missing or already closed.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM disputes WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("checking dispute: %w", err)
		}

		if !exists {
			return nil, dispute.ErrNotFound
		}

		return nil, dispute.ErrAlreadyResolved
	}

	return d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDispute(s scanner) (*dispute.Dispute, error) {
	var d dispute.Dispute

	var statusStr string

	if err := s.Scan(&d.ID, &d.BookingID, &d.Description, &statusStr, &d.OpenedAt, &d.ResolvedAt); err != nil {
		return nil, err
	}

	d.ResolutionStatus = dispute.ResolutionStatus(statusStr)

	return &d, nil
}
