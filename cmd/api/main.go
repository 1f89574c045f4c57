package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/queendomzy/swiftstay-api/internal/database"
	"github.com/queendomzy/swiftstay-api/internal/http/handlers"
	mw "github.com/queendomzy/swiftstay-api/internal/http/middleware"
	"github.com/queendomzy/swiftstay-api/internal/platform/ai"
	"github.com/queendomzy/swiftstay-api/internal/platform/auth"
	"github.com/queendomzy/swiftstay-api/internal/platform/mailer"
	"github.com/queendomzy/swiftstay-api/internal/platform/payments"
	"github.com/queendomzy/swiftstay-api/internal/repo/postgres"
	"github.com/queendomzy/swiftstay-api/internal/service"
	"github.com/queendomzy/swiftstay-api/pkg/config"
	"github.com/queendomzy/swiftstay-api/pkg/events"
	"github.com/queendomzy/swiftstay-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Startup refuses to continue without a signing secret; running
		// with a default one would accept forged tokens.
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	signer, err := auth.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTL)
	if err != nil {
		logger.Error("Failed to initialize token signer", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to parse redis URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	var bus events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	}

	// Repositories
	usersRepo := postgres.NewUsersRepo(pool)
	propertiesRepo := postgres.NewPropertiesRepo(pool)
	bookingsRepo := postgres.NewBookingsRepo(pool)
	paymentsRepo := postgres.NewPaymentsRepo(pool)
	idempotencyRepo := postgres.NewIdempotencyRepo(pool)
	onboardingRepo := postgres.NewOnboardingRepo(pool)

	// Mail
	var mail mailer.Service = mailer.Dev{}
	if !cfg.Email.DevMode {
		if cfg.Email.MailerSendKey != "" {
			ms, err := mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromAddress)
			if err != nil {
				logger.Error("Failed to initialize mailer", "error", err)
				os.Exit(1)
			}
			mail = ms
		} else {
			mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.FromAddress, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
		}
	}

	// Payment channels
	channel := payments.Router{Offline: payments.Offline{}}
	if cfg.Stripe.SecretKey != "" {
		stripeCh, err := payments.NewStripeChannel(cfg.Stripe.SecretKey)
		if err != nil {
			logger.Error("Failed to initialize stripe channel", "error", err)
			os.Exit(1)
		}
		channel.Stripe = stripeCh
	}

	// Services
	authSvc := service.NewAuthService(usersRepo, signer, bus)
	propertySvc := service.NewPropertyService(propertiesRepo)
	bookingSvc := service.NewBookingService(bookingsRepo, propertiesRepo, idempotencyRepo, bus)
	paymentSvc := service.NewPaymentService(paymentsRepo, bookingsRepo, channel, mail, bus)

	// Handlers
	authH := handlers.NewAuthHandler(authSvc)
	propertyH := handlers.NewPropertyHandler(propertySvc, signer)
	bookingH := handlers.NewBookingHandler(bookingSvc, signer)
	paymentH := handlers.NewPaymentHandler(paymentSvc, signer)
	onboardingH := handlers.NewOnboardingHandler(onboardingRepo)
	aiH := handlers.NewAIHandler(ai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model))

	authLimiter := mw.NewRateLimiter(rdb, mw.RateLimitConfig{
		Requests: 20,
		Window:   time.Minute,
	})

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://swiftstaynigeria-frontend.onrender.com", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(authLimiter.Middleware()).Mount("/auth", authH.Routes())
		r.Mount("/properties", propertyH.Routes())
		r.Mount("/bookings", bookingH.Routes())
		r.Mount("/payments", paymentH.Routes())
		r.Mount("/onboarding", onboardingH.Routes())
		r.Mount("/ai", aiH.Routes())
		r.With(mw.RequireAuth(signer)).Get("/user/profile", authH.Profile)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting SwiftStay API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
