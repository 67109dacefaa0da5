package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time expresses the booking engine tunables as durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints and durations
// for the booking engine tunables.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify JWTs issued by the identity service

	PendingBookingCap int           // max simultaneous unpaid bookings per user
	MaxAdvanceDays    int           // how far ahead check-out may lie
	MaxStayNights     int           // longest allowed stay
	PaymentLinkTTL    time.Duration // payment link lifetime
	PendingExpiry     time.Duration // age at which an unpaid booking is reclaimed
	SweepInterval     time.Duration // cadence of the expiration sweeper
	CancelCutoff      time.Duration // minimum notice before check-in for self cancellation
	PaymentURLBase    string        // base URL of the payment page links point at

	StripeSecretKey    string // Stripe API secret (empty disables Stripe)
	PayPalClientID     string // PayPal app client id (empty disables PayPal)
	PayPalClientSecret string // PayPal app secret
	PaymentCurrency    string // ISO currency code sent to gateways
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The booking
// tunables all carry defaults so a bare .env still boots a working
// engine.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used for verifying JWTs

		PendingBookingCap: envInt("PENDING_BOOKING_CAP", 3),
		MaxAdvanceDays:    envInt("MAX_ADVANCE_DAYS", 365),
		MaxStayNights:     envInt("MAX_STAY_NIGHTS", 30),
		PaymentLinkTTL:    time.Duration(envInt("PAYMENT_LINK_TTL_MIN", 10)) * time.Minute,
		PendingExpiry:     time.Duration(envInt("PENDING_EXPIRY_MIN", 30)) * time.Minute,
		SweepInterval:     time.Duration(envInt("SWEEP_INTERVAL_MIN", 10)) * time.Minute,
		CancelCutoff:      time.Duration(envInt("CANCEL_CUTOFF_HOURS", 24)) * time.Hour,
		PaymentURLBase:    envStr("PAYMENT_URL_BASE", "http://localhost:4200/payment"),

		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PaymentCurrency:    envStr("PAYMENT_CURRENCY", "usd"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

