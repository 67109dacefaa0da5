package model

import "time"

// PaymentGateway identifies the external processor a payment attempt
// went through.
type PaymentGateway string

const (
	GatewayStripe PaymentGateway = "STRIPE"
	GatewayPaypal PaymentGateway = "PAYPAL"
)

// PaymentLink is a single-use, time-boxed credential that authorizes
// gateway interaction for exactly one booking.  A token is validated
// before every gateway-facing operation; validation never consumes it,
// so retries within the expiry window are allowed.  Expiry is enforced
// lazily on validation and actively by the sweeper.
//
// Fields:
//  ID        – primary key identifier.
//  Token     – high-entropy opaque token handed to the payer.
//  BookingID – booking the token is bound to (1:1).
//  ExpiresAt – absolute expiry timestamp.
//  CreatedAt – issuance timestamp.
type PaymentLink struct {
	ID        uint64    // payment_links.id
	Token     string    // payment_links.token
	BookingID uint64    // payment_links.booking_id
	ExpiresAt time.Time // payment_links.expires_at
	CreatedAt time.Time // payment_links.created_at
}

// Expired reports whether the link has lapsed at the given instant.
func (l *PaymentLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// PaymentRecord is an immutable audit entry for one gateway capture
// attempt.  Records are only ever inserted; the unique transaction id
// suppresses duplicate deliveries of the same capture (webhook retries).
//
// Fields:
//  ID               – primary key identifier.
//  Gateway          – which gateway processed the attempt.
//  BookingReference – public reference of the booking it applies to.
//  TransactionID    – gateway transaction id (unique).
//  AmountCents      – captured amount in cents.
//  Status           – resulting payment status (PAID or FAILED).
//  FailureReason    – gateway-supplied reason when Status is FAILED.
//  CreatedAt        – when the attempt was recorded.
type PaymentRecord struct {
	ID               uint64         // payments.id
	Gateway          PaymentGateway // payments.gateway
	BookingReference string         // payments.booking_reference
	TransactionID    string         // payments.transaction_id
	AmountCents      int64          // payments.amount_cents
	Status           PaymentStatus  // payments.status
	FailureReason    *string        // payments.failure_reason (nullable)
	CreatedAt        time.Time      // payments.created_at
}
