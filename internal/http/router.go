package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lancehub/lancehub/internal/auth"
	bookingHandler "github.com/lancehub/lancehub/internal/http/booking"
	disputeHandler "github.com/lancehub/lancehub/internal/http/dispute"
	gigHandler "github.com/lancehub/lancehub/internal/http/gig"
	paymentHandler "github.com/lancehub/lancehub/internal/http/payment"
	profileHandler "github.com/lancehub/lancehub/internal/http/profile"
	reviewHandler "github.com/lancehub/lancehub/internal/http/review"
	userHandler "github.com/lancehub/lancehub/internal/http/user"
)

type Config struct {
	AllowedOrigins []string
	Tokens         *auth.Tokens
}

func New(
	cfg Config,
	authV1 *userHandler.Handler,
	profilesV1 *profileHandler.Handler,
	gigsV1 *gigHandler.Handler,
	bookingsV1 *bookingHandler.Handler,
	paymentsV1 *paymentHandler.Handler,
	reviewsV1 *reviewHandler.Handler,
	disputesV1 *disputeHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Route("/auth", authV1.Routes)
		})

		// The gateway authenticates by body signature, not by bearer token.
		r.Post("/webhooks/payment", paymentsV1.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(cfg.Tokens))

			r.Route("/profiles", profilesV1.Routes)
			r.Route("/gigs", gigsV1.Routes)
			r.Route("/bookings", bookingsV1.Routes)
			r.Route("/reviews", reviewsV1.Routes)
			r.Route("/disputes", disputesV1.Routes)

			r.Route("/orders", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				paymentsV1.OrderRoutes(r)
			})

			r.Route("/transactions", paymentsV1.TransactionRoutes)
		})
	})

	return router
}
