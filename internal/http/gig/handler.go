package gig

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lancehub/lancehub/internal/auth"
	"github.com/lancehub/lancehub/internal/gig"
	"github.com/lancehub/lancehub/internal/profile"
)

type Handler struct {
	svc      *gig.Service
	profiles *profile.Service
}

func NewHandler(svc *gig.Service, profiles *profile.Service) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) freelancerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}

	p, err := h.profiles.GetByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "profile not found", http.StatusUnauthorized)
		return uuid.Nil, false
	}

	return p.ID, true
}

type createGigRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	freelancerID, ok := h.freelancerID(w, r)
	if !ok {
		return
	}

	var req createGigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	g, err := h.svc.Create(r.Context(), freelancerID, gig.CreateParams{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		if errors.Is(err, gig.ErrInvalidPrice) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(g)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	gigs, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(gigs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	g, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gig.ErrNotFound) {
			http.Error(w, "gig not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(g)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateGigRequest struct {
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	DeliveryDays *int             `json:"delivery_days,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	freelancerID, ok := h.freelancerID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateGigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	g, err := h.svc.Update(r.Context(), id, freelancerID, gig.UpdateParams{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, gig.ErrNotFound):
			http.Error(w, "gig not found", http.StatusNotFound)
		case errors.Is(err, gig.ErrInvalidPrice):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(g)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	freelancerID, ok := h.freelancerID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id, freelancerID); err != nil {
		if errors.Is(err, gig.ErrNotFound) {
			http.Error(w, "gig not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type gigResponse struct {
	ID           uuid.UUID       `json:"id"`
	FreelancerID uuid.UUID       `json:"freelancer_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toResponse(g *gig.Gig) gigResponse {
	return gigResponse{
		ID:           g.ID,
		FreelancerID: g.FreelancerID,
		Title:        g.Title,
		Description:  g.Description,
		Price:        g.Price,
		DeliveryDays: g.DeliveryDays,
		CreatedAt:    g.CreatedAt,
	}
}

func toResponseList(gigs []*gig.Gig) []gigResponse {
	resp := make([]gigResponse, len(gigs))
	for i, g := range gigs {
		resp[i] = toResponse(g)
	}

	return resp
}
