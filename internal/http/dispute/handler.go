package dispute

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/dispute"
)

type Handler struct {
	svc *dispute.Service
}

func NewHandler(svc *dispute.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Patch("/{id}", h.resolve)
}

type createDisputeRequest struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Description string    `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Description == "" {
		http.Error(w, "description is required", http.StatusBadRequest)
		return
	}

	d, err := h.svc.Open(r.Context(), req.BookingID, req.Description)
	if err != nil {
		if errors.Is(err, dispute.ErrBookingNotFound) {
			http.Error(w, "booking not found", http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(d)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(r.URL.Query().Get("booking_id"))
	if err != nil {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	disputes, err := h.svc.ListByBooking(r.Context(), bookingID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(disputes)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type resolveDisputeRequest struct {
	ResolutionStatus dispute.ResolutionStatus `json:"resolution_status"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req resolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ResolutionStatus != dispute.StatusResolved && req.ResolutionStatus != dispute.StatusRejected {
		http.Error(w, "resolution_status must be RESOLVED or REJECTED", http.StatusBadRequest)
		return
	}

	d, err := h.svc.Resolve(r.Context(), id, req.ResolutionStatus)
	if err != nil {
		switch {
		case errors.Is(err, dispute.ErrNotFound):
			http.Error(w, "dispute not found", http.StatusNotFound)
		case errors.Is(err, dispute.ErrAlreadyResolved):
			http.Error(w, "dispute is already resolved", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(d)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type disputeResponse struct {
	ID               uuid.UUID                `json:"id"`
	BookingID        uuid.UUID                `json:"booking_id"`
	Description      string                   `json:"description"`
	ResolutionStatus dispute.ResolutionStatus `json:"resolution_status"`
	OpenedAt         time.Time                `json:"opened_at"`
	ResolvedAt       *time.Time               `json:"resolved_at,omitempty"`
}

func toResponse(d *dispute.Dispute) disputeResponse {
	return disputeResponse{
		ID:               d.ID,
		BookingID:        d.BookingID,
		Description:      d.Description,
		ResolutionStatus: d.ResolutionStatus,
		OpenedAt:         d.OpenedAt,
		ResolvedAt:       d.ResolvedAt,
	}
}

func toResponseList(disputes []*dispute.Dispute) []disputeResponse {
	resp := make([]disputeResponse, len(disputes))
	for i, d := range disputes {
		resp[i] = toResponse(d)
	}

	return resp
}
