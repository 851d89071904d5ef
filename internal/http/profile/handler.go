package profile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lancehub/lancehub/internal/auth"
	"github.com/lancehub/lancehub/internal/profile"
)

type Handler struct {
	svc *profile.Service
}

func NewHandler(svc *profile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
	r.Patch("/me", h.updateMe)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.svc.GetByUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateProfileRequest struct {
	Bio          *string  `json:"bio,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	PortfolioURL *string  `json:"portfolio_url,omitempty"`
	ContactEmail *string  `json:"contact_email,omitempty"`
	ContactPhone *string  `json:"contact_phone,omitempty"`
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.UpdateByUser(r.Context(), userID, profile.UpdateParams{
		Bio:          req.Bio,
		Skills:       req.Skills,
		PortfolioURL: req.PortfolioURL,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type profileResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Bio          string    `json:"bio"`
	Skills       []string  `json:"skills"`
	PortfolioURL string    `json:"portfolio_url"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
}

func toResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Bio:          p.Bio,
		Skills:       p.Skills,
		PortfolioURL: p.PortfolioURL,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
	}
}
