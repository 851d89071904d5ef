package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lancehub/lancehub/internal/booking"
)

// Status represents the lifecycle state of a payment transaction.
// CREATED is the only non-terminal status: a transaction leaves it exactly
// once, either to PAID or to the uppercased status reported by the gateway
// for an unsuccessful payment (e.g. FAILED).
type Status string

const (
	StatusCreated Status = "CREATED"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusCreated
}

// Transaction represents one payment attempt tied to a booking.
type Transaction struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string // empty until the gateway reports capture
	Amount           decimal.Decimal
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// PayableBooking is the slice of a booking the engine needs to create an
// order: ownership already checked, gig price snapshotted at read time.
type PayableBooking struct {
	ID                   uuid.UUID
	Status               booking.Status
	Price                decimal.Decimal
	HasActiveTransaction bool
}

// OrderParams describes the remote order to create at the gateway.
type OrderParams struct {
	AmountMinor   int64 // amount in the currency's smallest unit
	Currency      string
	Receipt       string
	TransactionID uuid.UUID
}

// Order is the gateway's echo of a created order.
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
}
