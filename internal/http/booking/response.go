package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lancehub/lancehub/internal/booking"
)

type bookingResponse struct {
	ID        uuid.UUID      `json:"id"`
	GigID     uuid.UUID      `json:"gig_id"`
	Status    booking.Status `json:"status"`
	Gig       *gigSummary    `json:"gig,omitempty"`
	BookedAt  time.Time      `json:"booked_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

type gigSummary struct {
	ID    uuid.UUID       `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

func toResponse(b *booking.Booking) bookingResponse {
	resp := bookingResponse{
		ID:        b.ID,
		GigID:     b.GigID,
		Status:    b.Status,
		BookedAt:  b.BookedAt,
		UpdatedAt: b.UpdatedAt,
	}

	if b.Gig != nil {
		resp.Gig = &gigSummary{
			ID:    b.Gig.ID,
			Title: b.Gig.Title,
			Price: b.Gig.Price,
		}
	}

	return resp
}

func toResponseList(bookings []*booking.Booking) []bookingResponse {
	resp := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toResponse(b)
	}

	return resp
}
