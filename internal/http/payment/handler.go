package payment

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/auth"
	"github.com/lancehub/lancehub/internal/payment"
)

// signatureHeader carries the gateway's hex HMAC over the raw webhook body.
const signatureHeader = "X-Razorpay-Signature"

// maxWebhookBody caps how much of a webhook request we are willing to read.
const maxWebhookBody = 1 << 20

type Handler struct {
	svc   *payment.Service
	keyID string
}

func NewHandler(svc *payment.Service, keyID string) *Handler {
	return &Handler{svc: svc, keyID: keyID}
}

func (h *Handler) OrderRoutes(r chi.Router) {
	r.Post("/", h.createOrder)
}

func (h *Handler) TransactionRoutes(r chi.Router) {
	r.Get("/{id}", h.getTransaction)
}

type createOrderRequest struct {
	BookingID uuid.UUID `json:"booking_id"`
}

type createOrderResponse struct {
	OrderID       string    `json:"order_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Key           string    `json:"key"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tx, order, err := h.svc.InitiateOrder(r.Context(), req.BookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrBookingNotFound),
			errors.Is(err, payment.ErrBookingNotPayable):
			http.Error(w, "invalid booking", http.StatusBadRequest)
		case errors.Is(err, payment.ErrActiveTransaction):
			http.Error(w, "an order for this booking is already open", http.StatusConflict)
		case errors.Is(err, payment.ErrGatewayUnavailable):
			http.Error(w, "payment gateway unavailable", http.StatusBadGateway)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := createOrderResponse{
		OrderID:       order.ID,
		Amount:        order.AmountMinor,
		Currency:      order.Currency,
		Key:           h.keyID,
		TransactionID: tx.ID,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.GetTransaction(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toTransactionResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Webhook receives the gateway's asynchronous payment notifications. The
// caller is untrusted: authenticity rests entirely on the body signature, and
// the response is a bare status code so nothing internal leaks back.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	_, err = h.svc.ApplyPaymentOutcome(r.Context(), body, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature),
			errors.Is(err, payment.ErrMalformedPayload):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, payment.ErrUnknownTransaction):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}

		return
	}

	// Duplicates and conflicting redeliveries also land here: acknowledging
	// them is what stops the gateway's retry loop.
	w.WriteHeader(http.StatusOK)
}
