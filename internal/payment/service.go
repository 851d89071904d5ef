package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/booking"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=payment
type Repository interface {
	// GetPayableBooking loads the booking with its gig price, scoped to the
	// requesting user. Returns ErrBookingNotFound for missing and foreign
	// bookings alike.
	GetPayableBooking(ctx context.Context, bookingID, userID uuid.UUID) (*PayableBooking, error)

	// CreateTransaction persists a new CREATED transaction. Returns
	// ErrActiveTransaction if the booking already has a non-terminal one.
	CreateTransaction(ctx context.Context, tx *Transaction) error

	GetTransactionForUser(ctx context.Context, id, userID uuid.UUID) (*Transaction, error)

	// ApplyOutcome transitions the transaction out of CREATED and updates its
	// booking in the same database transaction. Both transitions are
	// compare-and-swaps: when the transaction is already terminal the call
	// reports Applied=false and returns the current record unchanged, and a
	// booking that left PENDING/FAILED on its own (cancelled, completed) is
	// never rewritten, reported via BookingUpdated=false.
	// Returns ErrUnknownTransaction if no such transaction exists.
	ApplyOutcome(ctx context.Context, o Outcome) (*ApplyResult, error)
}

type Gateway interface {
	// CreateOrder registers a payment order with the remote gateway. Failures
	// surface as ErrGatewayUnavailable.
	CreateOrder(ctx context.Context, params OrderParams) (*Order, error)

	// VerifyWebhookSignature checks the hex HMAC-SHA256 signature over the
	// raw webhook body in constant time.
	VerifyWebhookSignature(body []byte, signature string) bool
}

// Outcome is the desired terminal state derived from a webhook delivery.
type Outcome struct {
	TransactionID     uuid.UUID
	TransactionStatus Status
	GatewayPaymentID  string
	BookingStatus     booking.Status
}

// ApplyResult reports whether the outcome transitioned the transaction and
// what the transaction looks like afterwards.
type ApplyResult struct {
	Applied bool

	// BookingUpdated reports whether the booking row moved along with the
	// transaction. Only meaningful when Applied: false means the booking
	// had already reached a terminal status of its own.
	BookingUpdated bool

	Current *Transaction
}

// WebhookResult is the engine's verdict on one webhook delivery.
type WebhookResult struct {
	Transaction *Transaction
	Applied     bool
	Duplicate   bool
	Conflict    bool

	// Ignored marks a delivery for a non-terminal gateway state; nothing
	// was read or written.
	Ignored bool
}

type Service struct {
	repo     Repository
	gateway  Gateway
	currency string
	log      *slog.Logger
}

func NewService(repo Repository, gw Gateway, currency string, log *slog.Logger) *Service {
	return &Service{repo: repo, gateway: gw, currency: currency, log: log}
}

// Gateway payment statuses that settle a transaction. Everything else the
// gateway reports (created, authorized) precedes the real outcome and must
// not be treated as one.
const (
	gatewayPaymentStatusCaptured = "captured"
	gatewayPaymentStatusFailed   = "failed"
)

// InitiateOrder creates a remote payment order for the booking and persists
// the matching CREATED transaction. The amount is a snapshot of the gig's
// price at call time; later price edits do not affect open orders. The remote
// order carries the transaction id in its notes so that the webhook can be
// correlated without trusting gateway-supplied booking references.
//
// Nothing is persisted when the gateway call fails, so the caller may simply
// retry.
func (s *Service) InitiateOrder(ctx context.Context, bookingID, userID uuid.UUID) (*Transaction, *Order, error) {
	pb, err := s.repo.GetPayableBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, nil, err
	}

	if pb.Status != booking.StatusPending && pb.Status != booking.StatusFailed {
		return nil, nil, ErrBookingNotPayable
	}

	if pb.HasActiveTransaction {
		return nil, nil, ErrActiveTransaction
	}

	tx := &Transaction{
		ID:        uuid.New(),
		BookingID: pb.ID,
		Amount:    pb.Price,
		Status:    StatusCreated,
	}

	order, err := s.gateway.CreateOrder(ctx, OrderParams{
		AmountMinor:   pb.Price.Shift(2).IntPart(),
		Currency:      s.currency,
		Receipt:       fmt.Sprintf("booking_%s", pb.ID),
		TransactionID: tx.ID,
	})
	if err != nil {
		return nil, nil, err
	}

	tx.GatewayOrderID = order.ID

	// A concurrent initiate may have slipped in while the gateway call was in
	// flight; the ledger's uniqueness constraint settles the race here. The
	// abandoned remote order is never paid and expires at the gateway.
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, nil, err
	}

	s.log.Info("payment order created",
		"booking_id", pb.ID,
		"transaction_id", tx.ID,
		"gateway_order_id", order.ID,
		"amount", pb.Price.String(),
	)

	return tx, order, nil
}

func (s *Service) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransactionForUser(ctx, id, userID)
}

// webhookEvent mirrors the gateway's payment webhook payload.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Notes  struct {
					TransactionID string `json:"transaction_id"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ApplyPaymentOutcome verifies and applies one webhook delivery. Deliveries
// are at-least-once and unordered: a repeat of an outcome already applied is
// a no-op, and a delivery that contradicts an already-terminal transaction is
// recorded as an anomaly without touching state. Deliveries for statuses the
// payment has merely passed through (created, authorized) are not outcomes
// and are ignored. In every such case the delivery itself is considered
// handled so the gateway stops redelivering.
func (s *Service) ApplyPaymentOutcome(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		s.log.Warn("webhook rejected: signature mismatch", "body_size", len(body))
		return nil, ErrInvalidSignature
	}

	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	entity := evt.Payload.Payment.Entity

	txID, err := uuid.Parse(entity.Notes.TransactionID)
	if err != nil {
		return nil, ErrUnknownTransaction
	}

	outcome := Outcome{
		TransactionID:    txID,
		GatewayPaymentID: entity.ID,
	}

	switch entity.Status {
	case gatewayPaymentStatusCaptured:
		outcome.TransactionStatus = StatusPaid
		outcome.BookingStatus = booking.StatusConfirmed
	case gatewayPaymentStatusFailed:
		outcome.TransactionStatus = Status(strings.ToUpper(entity.Status))
		outcome.BookingStatus = booking.StatusFailed
	default:
		// Not an outcome yet. Acknowledge so the gateway moves on; the
		// terminal delivery for this payment settles the transaction later.
		s.log.Info("ignoring non-terminal payment status",
			"transaction_id", txID,
			"gateway_status", entity.Status,
		)

		return &WebhookResult{Ignored: true}, nil
	}

	res, err := s.repo.ApplyOutcome(ctx, outcome)
	if err != nil {
		return nil, err
	}

	result := &WebhookResult{Transaction: res.Current, Applied: res.Applied}

	switch {
	case res.Applied:
		s.log.Info("payment outcome applied",
			"transaction_id", txID,
			"status", outcome.TransactionStatus,
			"gateway_payment_id", entity.ID,
		)

		if !res.BookingUpdated {
			// The transaction settled but its booking had already left the
			// payable states, e.g. cancelled while the order was open. The
			// ledger records the money; the booking keeps its own terminal
			// status and support reconciles the refund.
			s.log.Error("settled transaction for booking in terminal status",
				"transaction_id", txID,
				"booking_id", res.Current.BookingID,
				"transaction_status", res.Current.Status,
			)
		}
	case res.Current.Status == outcome.TransactionStatus:
		result.Duplicate = true

		s.log.Info("duplicate webhook delivery ignored",
			"transaction_id", txID,
			"status", res.Current.Status,
		)
	default:
		// A terminal transaction must never be rewritten. Whatever the
		// gateway thinks happened afterwards, the first applied outcome wins.
		result.Conflict = true

		s.log.Error("conflicting terminal outcome for settled transaction",
			"transaction_id", txID,
			"recorded_status", res.Current.Status,
			"delivered_status", outcome.TransactionStatus,
		)
	}

	return result, nil
}
