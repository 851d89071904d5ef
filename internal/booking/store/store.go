package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lancehub/lancehub/internal/booking"
)

const pgForeignKeyViolation = "23503"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanBooking reads a booking row joined with its gig summary.
// Expected column order: id, gig_id, client_id, status, booked_at, updated_at, gig_title, gig_price, gig_freelancer_id
func scanBooking(s scanner) (*booking.Booking, error) {
	var b booking.Booking

	var statusStr string

	var gig booking.GigSummary

	if err := s.Scan(
		&b.ID, &b.GigID, &b.ClientID, &statusStr, &b.BookedAt, &b.UpdatedAt,
		&gig.Title, &gig.Price, &gig.FreelancerID,
	); err != nil {
		return nil, err
	}

	b.Status = booking.Status(statusStr)
	gig.ID = b.GigID
	b.Gig = &gig

	return &b, nil
}

const selectBookingColumns = `
	b.id, b.gig_id, b.client_id, b.status, b.booked_at, b.updated_at,
	g.title, g.price, g.freelancer_id
`

func (s *Store) CreateBooking(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (id, gig_id, client_id, status, booked_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING booked_at
	`

	err := s.db.QueryRowContext(ctx, query, b.ID, b.GigID, b.ClientID, b.Status).Scan(&b.BookedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return booking.ErrGigNotFound
		}

		return fmt.Errorf("creating booking: %w", err)
	}

	return nil
}

func (s *Store) GetBooking(ctx context.Context, id, clientID uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + selectBookingColumns + `
		FROM bookings b
		JOIN gigs g ON g.id = b.gig_id
		WHERE b.id = $1 AND b.client_id = $2`

	b, err := scanBooking(s.db.QueryRowContext(ctx, query, id, clientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, booking.ErrNotFound
		}

		return nil, fmt.Errorf("getting booking: %w", err)
	}

	return b, nil
}

func (s *Store) ListBookingsByClient(ctx context.Context, clientID uuid.UUID) ([]*booking.Booking, error) {
	query := `SELECT ` + selectBookingColumns + `
		FROM bookings b
		JOIN gigs g ON g.id = b.gig_id
		WHERE b.client_id = $1
		ORDER BY b.booked_at DESC`

	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*booking.Booking

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}

		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

func (s *Store) TransitionStatus(ctx context.Context, id, clientID uuid.UUID, from []booking.Status, to booking.Status) (booking.Status, error) {
	fromStrs := make([]string, len(from))
	for i, st := range from {
		fromStrs[i] = string(st)
	}

	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND client_id = $2 AND status = ANY($4)
	`

	res, err := s.db.ExecContext(ctx, query, id, clientID, to, fromStrs)
	if err != nil {
		return "", fmt.Errorf("updating booking status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("booking rows affected: %w", err)
	}

	if affected == 0 {
		// Distinguish a missing booking from a disallowed transition.
		var current string

		err := s.db.QueryRowContext(ctx,
			`SELECT status FROM bookings WHERE id = $1 AND client_id = $2`,
			id, clientID,
		).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", booking.ErrNotFound
			}

			return "", fmt.Errorf("checking booking status: %w", err)
		}

		return booking.Status(current), booking.ErrInvalidTransition
	}

	return to, nil
}
