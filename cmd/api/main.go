package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinicbook/internal/config"
	"clinicbook/internal/database"
	"clinicbook/internal/events"
	"clinicbook/internal/mailer"
	"clinicbook/internal/middleware"
	"clinicbook/internal/modules/admin"
	"clinicbook/internal/modules/availability"
	"clinicbook/internal/modules/booking"
	"clinicbook/internal/modules/notification"
	"clinicbook/internal/modules/payment"
	"clinicbook/internal/modules/pricing"
	jwtsvc "clinicbook/internal/pkg/jwt"
	"clinicbook/internal/pkg/logger"
	"clinicbook/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connect", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("database migrate", zap.Error(err))
	}

	adminUserRepo := repository.NewAdminUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	slotRepo := repository.NewAvailabilityRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	txRunner := repository.NewTxRunner(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.TokenTTL)

	bus := events.NewBus()
	hub := events.NewHub()
	stopHub := hub.Run(bus)
	defer stopHub()
	defer hub.Close()

	notifier := notification.NewService(newMailer(cfg, zlog), notificationRepo, zlog)
	priceResolver := pricing.NewResolver(serviceRepo, zlog)

	provider := newProvider(cfg, zlog)
	paymentService := payment.NewService(paymentRepo, bookingRepo, notifier, provider, bus, payment.Config{
		Currency:     cfg.Currency,
		MerchantName: cfg.MerchantName,
		BaseURL:      cfg.BaseURL,
		FrontendURL:  cfg.FrontendURL,
	}, zlog)
	paymentHandler := payment.NewHandler(paymentService, provider, zlog)

	stopSweep := startExpirySweep(paymentService, 10*time.Minute, zlog)
	defer stopSweep()

	bookingService := booking.NewService(
		txRunner,
		bookingRepo,
		customerRepo,
		slotRepo,
		paymentRepo,
		idempotencyRepo,
		priceResolver,
		notifier,
		bus,
		booking.Config{
			Currency:          cfg.Currency,
			FrontendURL:       cfg.FrontendURL,
			PaymentRequestTTL: cfg.PaymentRequestTTL,
			IdempotencyKeyTTL: cfg.IdempotencyKeyTTL,
			Dedupe:            cfg.Dedupe(),
		},
		zlog,
	)
	bookingHandler := booking.NewHandler(bookingService, zlog)

	availabilityService := availability.NewService(slotRepo, zlog)
	availabilityHandler := availability.NewHandler(availabilityService, zlog)

	adminService := admin.NewService(
		adminUserRepo,
		bookingRepo,
		slotRepo,
		paymentRepo,
		paymentService,
		notificationRepo,
		notifier,
		j,
		bus,
		zlog,
	)
	adminHandler := admin.NewHandler(adminService, zlog)
	wsHandler := admin.NewWSHandler(hub, j, zlog)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zlog), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		availabilityHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)
		if cfg.CheckoutProvider == config.ProviderSimulated {
			paymentHandler.RegisterSimulationRoutes(v1)
		}

		adminGroup := v1.Group("/admin")
		adminHandler.RegisterPublicRoutes(adminGroup)
		// The websocket upgrade authenticates via ?token=, not headers.
		wsHandler.RegisterRoutes(adminGroup)

		protected := adminGroup.Group("/")
		protected.Use(middleware.Auth(j), middleware.RequireRole("admin"))
		{
			adminHandler.RegisterProtectedRoutes(protected)
		}
	}

	zlog.Info("api listening",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.String("checkout_provider", cfg.CheckoutProvider))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

// startExpirySweep expires overdue payment requests in-process so the admin
// event stream sees them without waiting for the cleanup binary. The on-read
// check still covers requests a customer opens between ticks.
func startExpirySweep(svc *payment.Service, every time.Duration, zlog *zap.Logger) func() {
	ticker := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := svc.ExpireDue(ctx); err != nil {
					zlog.Error("expiry sweep", zap.Error(err))
				}
				cancel()
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

func newProvider(cfg *config.Config, zlog *zap.Logger) payment.Provider {
	if cfg.CheckoutProvider == config.ProviderStripe {
		return payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret, zlog)
	}
	return payment.NewSimulatedProvider(cfg.FrontendURL)
}

func newMailer(cfg *config.Config, zlog *zap.Logger) mailer.Mailer {
	switch cfg.MailProvider {
	case config.MailerMailerSend:
		return mailer.NewMailerSend(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	case config.MailerSMTP:
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFromEmail, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPTLS)
	default:
		return mailer.NewLog(zlog)
	}
}
