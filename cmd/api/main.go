package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/lancehub/lancehub/internal/auth"
	"github.com/lancehub/lancehub/internal/booking"
	bookingStore "github.com/lancehub/lancehub/internal/booking/store"
	"github.com/lancehub/lancehub/internal/config"
	"github.com/lancehub/lancehub/internal/database"
	"github.com/lancehub/lancehub/internal/dispute"
	disputeStore "github.com/lancehub/lancehub/internal/dispute/store"
	"github.com/lancehub/lancehub/internal/gateway"
	"github.com/lancehub/lancehub/internal/gig"
	gigStore "github.com/lancehub/lancehub/internal/gig/store"
	lancehubHttp "github.com/lancehub/lancehub/internal/http"
	bookingHandler "github.com/lancehub/lancehub/internal/http/booking"
	disputeHandler "github.com/lancehub/lancehub/internal/http/dispute"
	gigHandler "github.com/lancehub/lancehub/internal/http/gig"
	paymentHandler "github.com/lancehub/lancehub/internal/http/payment"
	profileHandler "github.com/lancehub/lancehub/internal/http/profile"
	reviewHandler "github.com/lancehub/lancehub/internal/http/review"
	userHandler "github.com/lancehub/lancehub/internal/http/user"
	"github.com/lancehub/lancehub/internal/payment"
	paymentStore "github.com/lancehub/lancehub/internal/payment/store"
	"github.com/lancehub/lancehub/internal/profile"
	profileStore "github.com/lancehub/lancehub/internal/profile/store"
	"github.com/lancehub/lancehub/internal/review"
	reviewStore "github.com/lancehub/lancehub/internal/review/store"
	"github.com/lancehub/lancehub/internal/user"
	userStore "github.com/lancehub/lancehub/internal/user/store"
)

const migrationsDir = "migrations"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, migrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	tokens := auth.New(cfg.JWT.Secret, cfg.JWT.TTL)

	razorpay := gateway.NewRazorpay(gateway.Config{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		BaseURL:       cfg.Razorpay.BaseURL,
		Timeout:       cfg.Razorpay.Timeout,
	})

	var (
		profileService = profile.NewService(profileStore.New(db))
		userService    = user.NewService(userStore.New(db), profileService)
		gigService     = gig.NewService(gigStore.New(db))
		bookingService = booking.NewService(bookingStore.New(db))
		paymentService = payment.NewService(paymentStore.New(db), razorpay, cfg.Razorpay.Currency, slog.Default())
		reviewService  = review.NewService(reviewStore.New(db))
		disputeService = dispute.NewService(disputeStore.New(db))
	)

	var (
		authH     = userHandler.NewHandler(userService, tokens)
		profilesH = profileHandler.NewHandler(profileService)
		gigsH     = gigHandler.NewHandler(gigService, profileService)
		bookingsH = bookingHandler.NewHandler(bookingService, profileService)
		paymentsH = paymentHandler.NewHandler(paymentService, cfg.Razorpay.KeyID)
		reviewsH  = reviewHandler.NewHandler(reviewService)
		disputesH = disputeHandler.NewHandler(disputeService)
	)

	router := lancehubHttp.New(
		lancehubHttp.Config{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Tokens:         tokens,
		},
		authH, profilesH, gigsH, bookingsH, paymentsH, reviewsH, disputesH,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
