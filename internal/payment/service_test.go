package payment_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lancehub/lancehub/internal/booking"
	"github.com/lancehub/lancehub/internal/payment"
)

func newService(t *testing.T) (*payment.Service, *payment.MockRepository, *payment.MockGateway) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	gw := payment.NewMockGateway(ctrl)
	svc := payment.NewService(repo, gw, "INR", slog.New(slog.NewTextHandler(io.Discard, nil)))

	return svc, repo, gw
}

func TestService_InitiateOrder(t *testing.T) {
	bookingID := uuid.New()
	userID := uuid.New()
	price := decimal.RequireFromString("500.00")

	t.Run("Success", func(t *testing.T) {
		svc, repo, gw := newService(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusPending,
				Price:  price,
			}, nil)

		var orderedTxID uuid.UUID

		gw.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params payment.OrderParams) (*payment.Order, error) {
				assert.Equal(t, int64(50000), params.AmountMinor)
				assert.Equal(t, "INR", params.Currency)
				assert.Equal(t, fmt.Sprintf("booking_%s", bookingID), params.Receipt)

				orderedTxID = params.TransactionID

				return &payment.Order{ID: "order_123", AmountMinor: params.AmountMinor, Currency: params.Currency}, nil
			})

		repo.EXPECT().
			CreateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tx *payment.Transaction) error {
				assert.Equal(t, orderedTxID, tx.ID)
				assert.Equal(t, bookingID, tx.BookingID)
				assert.Equal(t, "order_123", tx.GatewayOrderID)
				assert.Equal(t, payment.StatusCreated, tx.Status)
				assert.True(t, tx.Amount.Equal(price))
				return nil
			})

		tx, order, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		require.NoError(t, err)
		assert.Equal(t, "order_123", order.ID)
		assert.Equal(t, orderedTxID, tx.ID)
	})

	t.Run("BookingNotFound", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(nil, payment.ErrBookingNotFound)

		_, _, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		assert.ErrorIs(t, err, payment.ErrBookingNotFound)
	})

	t.Run("BookingNotPayable", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusConfirmed,
				Price:  price,
			}, nil)

		_, _, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		assert.ErrorIs(t, err, payment.ErrBookingNotPayable)
	})

	t.Run("FailedBookingIsPayableAgain", func(t *testing.T) {
		svc, repo, gw := newService(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusFailed,
				Price:  price,
			}, nil)

		gw.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			Return(&payment.Order{ID: "order_retry", AmountMinor: 50000, Currency: "INR"}, nil)

		repo.EXPECT().
			CreateTransaction(gomock.Any(), gomock.Any()).
			Return(nil)

		_, _, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		assert.NoError(t, err)
	})

	t.Run("ActiveTransactionBlocksNewOrder", func(t *testing.T) {
		svc, repo, _ := newService(t)

		// The gateway must not be called at all.
		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:                   bookingID,
				Status:               booking.StatusPending,
				Price:                price,
				HasActiveTransaction: true,
			}, nil)

		_, _, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		assert.ErrorIs(t, err, payment.ErrActiveTransaction)
	})

	t.Run("GatewayUnavailableLeavesNoState", func(t *testing.T) {
		svc, repo, gw := newService(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusPending,
				Price:  price,
			}, nil)

		gw.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: connection refused", payment.ErrGatewayUnavailable))

		// No CreateTransaction expectation: persisting anything here fails the test.
		_, _, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	})

	t.Run("ConcurrentInitiateLosesInsertRace", func(t *testing.T) {
		svc, repo, gw := newService(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusPending,
				Price:  price,
			}, nil)

		gw.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			Return(&payment.Order{ID: "order_456", AmountMinor: 50000, Currency: "INR"}, nil)

		repo.EXPECT().
			CreateTransaction(gomock.Any(), gomock.Any()).
			Return(payment.ErrActiveTransaction)

		_, _, err := svc.InitiateOrder(context.Background(), bookingID, userID)
		assert.ErrorIs(t, err, payment.ErrActiveTransaction)
	})
}

func webhookBody(txID uuid.UUID, paymentID, status string) []byte {
	return fmt.Appendf(nil, `{
		"event": "payment.%s",
		"payload": {
			"payment": {
				"entity": {
					"id": %q,
					"status": %q,
					"notes": {"transaction_id": %q}
				}
			}
		}
	}`, status, paymentID, status, txID)
}

func TestService_ApplyPaymentOutcome(t *testing.T) {
	txID := uuid.New()

	t.Run("CapturedOutcomeApplied", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "captured")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), payment.Outcome{
				TransactionID:     txID,
				TransactionStatus: payment.StatusPaid,
				GatewayPaymentID:  "pay_789",
				BookingStatus:     booking.StatusConfirmed,
			}).
			Return(&payment.ApplyResult{
				Applied:        true,
				BookingUpdated: true,
				Current:        &payment.Transaction{ID: txID, Status: payment.StatusPaid, GatewayPaymentID: "pay_789"},
			}, nil)

		res, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.False(t, res.Duplicate)
		assert.False(t, res.Conflict)
		assert.Equal(t, payment.StatusPaid, res.Transaction.Status)
	})

	t.Run("FailedOutcomeApplied", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "failed")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), payment.Outcome{
				TransactionID:     txID,
				TransactionStatus: payment.StatusFailed,
				GatewayPaymentID:  "pay_789",
				BookingStatus:     booking.StatusFailed,
			}).
			Return(&payment.ApplyResult{
				Applied:        true,
				BookingUpdated: true,
				Current:        &payment.Transaction{ID: txID, Status: payment.StatusFailed},
			}, nil)

		res, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)
		assert.True(t, res.Applied)
	})

	t.Run("CapturedAfterCancelKeepsBookingTerminal", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "captured")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		// The booking was cancelled while the order was open: the ledger
		// records the capture, the booking stays CANCELLED.
		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{
				Applied:        true,
				BookingUpdated: false,
				Current:        &payment.Transaction{ID: txID, Status: payment.StatusPaid, GatewayPaymentID: "pay_789"},
			}, nil)

		res, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, payment.StatusPaid, res.Transaction.Status)
	})

	t.Run("AuthorizedDeliveryIsNotAnOutcome", func(t *testing.T) {
		svc, _, gw := newService(t)
		body := webhookBody(txID, "pay_789", "authorized")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		// No repository expectations: an authorized payment is still in
		// flight and must not settle anything.
		res, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)
		assert.True(t, res.Ignored)
		assert.False(t, res.Applied)
	})

	t.Run("AuthorizedThenCapturedSettlesPaid", func(t *testing.T) {
		svc, repo, gw := newService(t)
		authorized := webhookBody(txID, "pay_789", "authorized")
		captured := webhookBody(txID, "pay_789", "captured")

		gw.EXPECT().VerifyWebhookSignature(authorized, "sig").Return(true)
		gw.EXPECT().VerifyWebhookSignature(captured, "sig").Return(true)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), payment.Outcome{
				TransactionID:     txID,
				TransactionStatus: payment.StatusPaid,
				GatewayPaymentID:  "pay_789",
				BookingStatus:     booking.StatusConfirmed,
			}).
			Return(&payment.ApplyResult{
				Applied:        true,
				BookingUpdated: true,
				Current:        &payment.Transaction{ID: txID, Status: payment.StatusPaid, GatewayPaymentID: "pay_789"},
			}, nil)

		res, err := svc.ApplyPaymentOutcome(context.Background(), authorized, "sig")
		require.NoError(t, err)
		assert.True(t, res.Ignored)

		res, err = svc.ApplyPaymentOutcome(context.Background(), captured, "sig")
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, payment.StatusPaid, res.Transaction.Status)
	})

	t.Run("DuplicateDeliveryIsNoOp", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "captured")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{
				Applied: false,
				Current: &payment.Transaction{ID: txID, Status: payment.StatusPaid, GatewayPaymentID: "pay_789"},
			}, nil)

		res, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.True(t, res.Duplicate)
		assert.False(t, res.Conflict)
	})

	t.Run("ConflictingOutcomeDoesNotOverwrite", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "failed")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{
				Applied: false,
				Current: &payment.Transaction{ID: txID, Status: payment.StatusPaid},
			}, nil)

		res, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.False(t, res.Duplicate)
		assert.True(t, res.Conflict)
		// The recorded state stays PAID no matter what was delivered.
		assert.Equal(t, payment.StatusPaid, res.Transaction.Status)
	})

	t.Run("InvalidSignatureTouchesNothing", func(t *testing.T) {
		svc, _, gw := newService(t)
		body := webhookBody(txID, "pay_789", "captured")

		gw.EXPECT().VerifyWebhookSignature(body, "bad").Return(false)

		// No repository expectations: reads or writes here fail the test.
		_, err := svc.ApplyPaymentOutcome(context.Background(), body, "bad")
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		svc, _, gw := newService(t)
		body := []byte("{not json")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		_, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		assert.ErrorIs(t, err, payment.ErrMalformedPayload)
	})

	t.Run("MissingTransactionID", func(t *testing.T) {
		svc, _, gw := newService(t)
		body := []byte(`{"payload": {"payment": {"entity": {"id": "pay_1", "status": "captured", "notes": {}}}}}`)

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		_, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		assert.ErrorIs(t, err, payment.ErrUnknownTransaction)
	})

	t.Run("UnknownTransaction", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "captured")

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(nil, payment.ErrUnknownTransaction)

		_, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		assert.ErrorIs(t, err, payment.ErrUnknownTransaction)
	})

	t.Run("IdempotentReplayYieldsSameState", func(t *testing.T) {
		svc, repo, gw := newService(t)
		body := webhookBody(txID, "pay_789", "captured")

		final := &payment.Transaction{ID: txID, Status: payment.StatusPaid, GatewayPaymentID: "pay_789"}

		gw.EXPECT().VerifyWebhookSignature(body, "sig").Return(true).Times(2)

		first := repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{Applied: true, BookingUpdated: true, Current: final}, nil)

		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{Applied: false, Current: final}, nil).
			After(first)

		res1, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)

		res2, err := svc.ApplyPaymentOutcome(context.Background(), body, "sig")
		require.NoError(t, err)

		assert.Equal(t, res1.Transaction, res2.Transaction)
		assert.True(t, res2.Duplicate)
	})
}

func TestService_GetTransaction(t *testing.T) {
	svc, repo, _ := newService(t)

	txID := uuid.New()
	userID := uuid.New()

	repo.EXPECT().
		GetTransactionForUser(gomock.Any(), txID, userID).
		Return(nil, payment.ErrNotFound)

	_, err := svc.GetTransaction(context.Background(), txID, userID)
	assert.ErrorIs(t, err, payment.ErrNotFound)

	repo.EXPECT().
		GetTransactionForUser(gomock.Any(), txID, userID).
		Return(&payment.Transaction{ID: txID}, nil)

	tx, err := svc.GetTransaction(context.Background(), txID, userID)
	require.NoError(t, err)
	assert.Equal(t, txID, tx.ID)
}
