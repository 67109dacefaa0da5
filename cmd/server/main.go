package main // Entry point package

import (
	"context"
	"log"  // Logging library
	"time" // Duration conversions for the engine tunables

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/hotel-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/hotel-reservation/internal/database"   // MySQL pool and transaction runner
	"github.com/iliyamo/hotel-reservation/internal/gateway"    // Stripe / PayPal clients
	"github.com/iliyamo/hotel-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/hotel-reservation/internal/middleware" // Redis rate limit / cache middleware
	"github.com/iliyamo/hotel-reservation/internal/queue"      // RabbitMQ notifications
	"github.com/iliyamo/hotel-reservation/internal/repository" // Data access layer
	"github.com/iliyamo/hotel-reservation/internal/router"     // Route registration
	"github.com/iliyamo/hotel-reservation/internal/service"    // Booking / payment engine
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: when unreachable, rate limiting and response
	// caching are disabled and the service still serves traffic.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories.
	ledger := repository.NewAvailabilityRepo(db)
	bookings := repository.NewBookingRepo(db)
	links := repository.NewPaymentLinkRepo(db)
	payments := repository.NewPaymentRecordRepo(db)
	rooms := repository.NewRoomRepo(db)
	users := repository.NewUserRepo(db)

	// Notifications go through RabbitMQ; the consumer drains the queue in
	// the background.  A broker outage degrades to logged publish errors.
	notifier := queue.NewNotifier()
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	engineCfg := service.Config{
		PendingBookingCap: cfg.PendingBookingCap,
		MaxAdvance:        time.Duration(cfg.MaxAdvanceDays) * 24 * time.Hour,
		MaxStayNights:     cfg.MaxStayNights,
		PaymentLinkTTL:    cfg.PaymentLinkTTL,
		PendingExpiry:     cfg.PendingExpiry,
		SweepInterval:     cfg.SweepInterval,
		CancelCutoff:      cfg.CancelCutoff,
		PaymentURLBase:    cfg.PaymentURLBase,
	}

	run := &database.TxRunner{DB: db}
	bookingSvc := service.NewBookingService(run, ledger, bookings, links, rooms, users, notifier, engineCfg)
	paymentSvc := service.NewPaymentService(run, bookings, links, payments, ledger, users, notifier)

	// The sweeper reclaims nights held by unpaid bookings past expiry.
	sweeper := service.NewSweeper(run, bookings, ledger, engineCfg)
	go sweeper.Start(context.Background())

	// Gateway clients; unset credentials disable the endpoint.
	var stripe handler.StripeIntents
	if cfg.StripeSecretKey != "" {
		stripe = gateway.NewStripeClient(cfg.StripeSecretKey, "")
	}
	var paypal handler.PayPalOrders
	if cfg.PayPalClientID != "" {
		paypal = gateway.NewPayPalClient(cfg.PayPalClientID, cfg.PayPalClientSecret, "")
	}

	bookingHandler := handler.NewBookingHandler(bookingSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, payments, stripe, paypal, cfg.PaymentCurrency)
	availHandler := handler.NewAvailabilityHandler(ledger, rooms)

	var rateMW, cacheMW echo.MiddlewareFunc
	if rdb != nil {
		rateMW = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, availHandler, paymentHandler, cacheMW)
	router.RegisterCustomer(e, bookingHandler, cfg.JWTSecret, rateMW)
	router.RegisterAdmin(e, bookingHandler, paymentHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
