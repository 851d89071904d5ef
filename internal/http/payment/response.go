package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lancehub/lancehub/internal/payment"
)

type transactionResponse struct {
	ID               uuid.UUID       `json:"id"`
	BookingID        uuid.UUID       `json:"booking_id"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Status           payment.Status  `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

func toTransactionResponse(tx *payment.Transaction) transactionResponse {
	return transactionResponse{
		ID:               tx.ID,
		BookingID:        tx.BookingID,
		GatewayOrderID:   tx.GatewayOrderID,
		GatewayPaymentID: tx.GatewayPaymentID,
		Amount:           tx.Amount,
		Status:           tx.Status,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}
