package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lancehub/lancehub/internal/review"
)

const pgForeignKeyViolation = "23503"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateReview(ctx context.Context, r *review.Review) error {
	query := `
		INSERT INTO reviews (id, booking_id, user_id, rating, comment, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING reviewed_at
	`

	err := s.db.QueryRowContext(ctx, query, r.ID, r.BookingID, r.UserID, r.Rating, r.Comment).
		Scan(&r.ReviewedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return review.ErrBookingNotFound
		}

		return fmt.Errorf("creating review: %w", err)
	}

	return nil
}

func (s *Store) ListReviewsByBooking(ctx context.Context, bookingID uuid.UUID) ([]*review.Review, error) {
	query := `
		SELECT id, booking_id, user_id, rating, comment, reviewed_at
		FROM reviews
		WHERE booking_id = $1
		ORDER BY reviewed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*review.Review

	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.BookingID, &r.UserID, &r.Rating, &r.Comment, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}

		reviews = append(reviews, &r)
	}

	return reviews, rows.Err()
}
