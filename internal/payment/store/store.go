package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lancehub/lancehub/internal/booking"
	"github.com/lancehub/lancehub/internal/payment"
)

const pgUniqueViolation = "23505"

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

// scanTransaction reads a transaction row.
// Expected column order: id, booking_id, gateway_order_id, gateway_payment_id, amount, status, created_at, updated_at
func scanTransaction(s scanner) (*payment.Transaction, error) {
	var tx payment.Transaction

	var statusStr string

	var paymentID sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.BookingID, &tx.GatewayOrderID, &paymentID,
		&tx.Amount, &statusStr, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = payment.Status(statusStr)
	tx.GatewayPaymentID = paymentID.String

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.booking_id, t.gateway_order_id, t.gateway_payment_id,
	t.amount, t.status, t.created_at, t.updated_at
`

func (s *Store) GetPayableBooking(ctx context.Context, bookingID, userID uuid.UUID) (*payment.PayableBooking, error) {
	query := `
		SELECT b.id, b.status, g.price,
			EXISTS (
				SELECT 1 FROM transactions t
				WHERE t.booking_id = b.id AND t.status = 'CREATED'
			) AS has_active
		FROM bookings b
		JOIN gigs g ON g.id = b.gig_id
		JOIN profiles p ON p.id = b.client_id
		WHERE b.id = $1 AND p.user_id = $2
	`

	var pb payment.PayableBooking

	var statusStr string

	err := s.db.QueryRowContext(ctx, query, bookingID, userID).
		Scan(&pb.ID, &statusStr, &pb.Price, &pb.HasActiveTransaction)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrBookingNotFound
		}

		return nil, fmt.Errorf("getting payable booking: %w", err)
	}

	pb.Status = booking.Status(statusStr)

	return &pb, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *payment.Transaction) error {
	query := `
		INSERT INTO transactions (id, booking_id, gateway_order_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.ID, tx.BookingID, tx.GatewayOrderID, tx.Amount, tx.Status,
	).Scan(&tx.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return payment.ErrActiveTransaction
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransactionForUser(ctx context.Context, id, userID uuid.UUID) (*payment.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN bookings b ON b.id = t.booking_id
		JOIN profiles p ON p.id = b.client_id
		WHERE t.id = $1 AND p.user_id = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// ApplyOutcome settles a transaction and its booking in one database
// transaction. The status change is a compare-and-swap on CREATED, so
// concurrent deliveries for the same transaction serialize here: exactly one
// wins, the rest observe the terminal row and leave it alone. A crash between
// the two UPDATEs rolls both back; a PAID transaction can never be visible
// next to a booking that was not confirmed.
//
// The booking update is guarded the same way: a booking that already left
// PENDING/FAILED (cancelled while the order was open) keeps its status, and
// the result carries BookingUpdated=false.
func (s *Store) ApplyOutcome(ctx context.Context, o payment.Outcome) (*payment.ApplyResult, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning apply: %w", err)
	}
	defer dbTx.Rollback()

	var bookingID uuid.UUID

	err = dbTx.QueryRowContext(ctx, `
		UPDATE transactions
		SET status = $2, gateway_payment_id = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'CREATED'
		RETURNING booking_id
	`, o.TransactionID, o.TransactionStatus, o.GatewayPaymentID).Scan(&bookingID)

	if err == sql.ErrNoRows {
		// Already terminal, or unknown. Read what is there and report back.
		current, err := s.getTransactionTx(ctx, dbTx, o.TransactionID)
		if err != nil {
			return nil, err
		}

		if err := dbTx.Commit(); err != nil {
			return nil, fmt.Errorf("committing apply: %w", err)
		}

		return &payment.ApplyResult{Applied: false, Current: current}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("settling transaction: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'FAILED')
	`, bookingID, o.BookingStatus)
	if err != nil {
		return nil, fmt.Errorf("settling booking: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("booking rows affected: %w", err)
	}

	current, err := s.getTransactionTx(ctx, dbTx, o.TransactionID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing apply: %w", err)
	}

	return &payment.ApplyResult{Applied: true, BookingUpdated: affected > 0, Current: current}, nil
}

func (s *Store) getTransactionTx(ctx context.Context, dbTx *sql.Tx, id uuid.UUID) (*payment.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrUnknownTransaction
		}

		return nil, fmt.Errorf("reading transaction: %w", err)
	}

	return tx, nil
}
