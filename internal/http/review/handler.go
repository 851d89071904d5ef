package review

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/auth"
	"github.com/lancehub/lancehub/internal/review"
)

type Handler struct {
	svc *review.Service
}

func NewHandler(svc *review.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

type createReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rev, err := h.svc.Create(r.Context(), req.BookingID, userID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidRating):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, review.ErrBookingNotFound):
			http.Error(w, "booking not found", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(rev)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(r.URL.Query().Get("booking_id"))
	if err != nil {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	reviews, err := h.svc.ListByBooking(r.Context(), bookingID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(reviews)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type reviewResponse struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

func toResponse(r *review.Review) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		BookingID:  r.BookingID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewedAt: r.ReviewedAt,
	}
}

func toResponseList(reviews []*review.Review) []reviewResponse {
	resp := make([]reviewResponse, len(reviews))
	for i, r := range reviews {
		resp[i] = toResponse(r)
	}

	return resp
}
