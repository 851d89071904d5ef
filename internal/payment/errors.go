package payment

import "errors"

var (
	// ErrBookingNotFound covers both a missing booking and a booking owned
	// by someone else; callers must not be able to tell the two apart.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingNotPayable means the booking is not awaiting payment.
	ErrBookingNotPayable = errors.New("booking is not awaiting payment")

	// ErrActiveTransaction means an order for this booking is already open.
	ErrActiveTransaction = errors.New("booking already has an active transaction")

	// ErrGatewayUnavailable wraps remote order-creation failures. It is
	// retryable: nothing was persisted.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidSignature means the webhook body does not match its signature.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedPayload means the webhook body could not be understood.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrUnknownTransaction means the webhook referenced no known transaction.
	ErrUnknownTransaction = errors.New("unknown transaction")

	ErrNotFound = errors.New("transaction not found")
)
