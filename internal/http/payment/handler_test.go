package payment_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/lancehub/lancehub/internal/auth"
	"github.com/lancehub/lancehub/internal/booking"
	paymentHandler "github.com/lancehub/lancehub/internal/http/payment"
	"github.com/lancehub/lancehub/internal/payment"
)

func newHandler(t *testing.T) (*paymentHandler.Handler, *payment.MockRepository, *payment.MockGateway) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := payment.NewMockRepository(ctrl)
	gw := payment.NewMockGateway(ctrl)
	svc := payment.NewService(repo, gw, "INR", slog.New(slog.NewTextHandler(io.Discard, nil)))

	return paymentHandler.NewHandler(svc, "rzp_test_key"), repo, gw
}

func authed(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), userID))
}

func TestHandler_CreateOrder(t *testing.T) {
	bookingID := uuid.New()
	userID := uuid.New()

	body := fmt.Sprintf(`{"booking_id": %q}`, bookingID)

	t.Run("Success", func(t *testing.T) {
		h, repo, gw := newHandler(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusPending,
				Price:  decimal.RequireFromString("500.00"),
			}, nil)
		gw.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			Return(&payment.Order{ID: "order_123", AmountMinor: 50000, Currency: "INR"}, nil)
		repo.EXPECT().
			CreateTransaction(gomock.Any(), gomock.Any()).
			Return(nil)

		req := authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), userID)
		rec := httptest.NewRecorder()

		r := chi.NewRouter()
		r.Route("/", h.OrderRoutes)
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"order_id":"order_123"`)
		assert.Contains(t, rec.Body.String(), `"key":"rzp_test_key"`)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		h, _, _ := newHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()

		r := chi.NewRouter()
		r.Route("/", h.OrderRoutes)
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	tests := []struct {
		name     string
		svcErr   error
		wantCode int
	}{
		{
			name:     "UnknownBooking",
			svcErr:   payment.ErrBookingNotFound,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "BookingNotPayable",
			svcErr:   payment.ErrBookingNotPayable,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "ActiveTransaction",
			svcErr:   payment.ErrActiveTransaction,
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, _ := newHandler(t)

			repo.EXPECT().
				GetPayableBooking(gomock.Any(), bookingID, userID).
				Return(nil, tt.svcErr)

			req := authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), userID)
			rec := httptest.NewRecorder()

			r := chi.NewRouter()
			r.Route("/", h.OrderRoutes)
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	t.Run("GatewayDown", func(t *testing.T) {
		h, repo, gw := newHandler(t)

		repo.EXPECT().
			GetPayableBooking(gomock.Any(), bookingID, userID).
			Return(&payment.PayableBooking{
				ID:     bookingID,
				Status: booking.StatusPending,
				Price:  decimal.RequireFromString("500.00"),
			}, nil)
		gw.EXPECT().
			CreateOrder(gomock.Any(), gomock.Any()).
			Return(nil, payment.ErrGatewayUnavailable)

		req := authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), userID)
		rec := httptest.NewRecorder()

		r := chi.NewRouter()
		r.Route("/", h.OrderRoutes)
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_Webhook(t *testing.T) {
	txID := uuid.New()
	body := fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","status":"captured","notes":{"transaction_id":%q}}}}}`,
		txID)

	webhook := func(h *paymentHandler.Handler, body, signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
		req.Header.Set("X-Razorpay-Signature", signature)
		rec := httptest.NewRecorder()
		h.Webhook(rec, req)

		return rec
	}

	t.Run("AppliedOutcome", func(t *testing.T) {
		h, repo, gw := newHandler(t)

		gw.EXPECT().VerifyWebhookSignature([]byte(body), "sig").Return(true)
		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{
				Applied:        true,
				BookingUpdated: true,
				Current:        &payment.Transaction{ID: txID, Status: payment.StatusPaid},
			}, nil)

		assert.Equal(t, http.StatusOK, webhook(h, body, "sig").Code)
	})

	t.Run("AuthorizedEventAcknowledged", func(t *testing.T) {
		h, _, gw := newHandler(t)
		authorized := fmt.Sprintf(
			`{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_1","status":"authorized","notes":{"transaction_id":%q}}}}}`,
			txID)

		gw.EXPECT().VerifyWebhookSignature([]byte(authorized), "sig").Return(true)

		// Nothing settles, but the delivery is still acknowledged.
		assert.Equal(t, http.StatusOK, webhook(h, authorized, "sig").Code)
	})

	t.Run("DuplicateDelivery", func(t *testing.T) {
		h, repo, gw := newHandler(t)

		gw.EXPECT().VerifyWebhookSignature([]byte(body), "sig").Return(true)
		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(&payment.ApplyResult{
				Applied: false,
				Current: &payment.Transaction{ID: txID, Status: payment.StatusPaid},
			}, nil)

		// Duplicates are acknowledged so the gateway stops retrying.
		assert.Equal(t, http.StatusOK, webhook(h, body, "sig").Code)
	})

	t.Run("BadSignature", func(t *testing.T) {
		h, _, gw := newHandler(t)

		gw.EXPECT().VerifyWebhookSignature([]byte(body), "bad").Return(false)

		assert.Equal(t, http.StatusBadRequest, webhook(h, body, "bad").Code)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		h, _, gw := newHandler(t)

		gw.EXPECT().VerifyWebhookSignature([]byte("{not json"), "sig").Return(true)

		assert.Equal(t, http.StatusBadRequest, webhook(h, "{not json", "sig").Code)
	})

	t.Run("UnknownTransaction", func(t *testing.T) {
		h, repo, gw := newHandler(t)

		gw.EXPECT().VerifyWebhookSignature([]byte(body), "sig").Return(true)
		repo.EXPECT().
			ApplyOutcome(gomock.Any(), gomock.Any()).
			Return(nil, payment.ErrUnknownTransaction)

		assert.Equal(t, http.StatusNotFound, webhook(h, body, "sig").Code)
	})
}
