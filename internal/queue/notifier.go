package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Notifier adapts the broker publisher to the engine's notification
// contract.  Each method composes the user-facing message and enqueues
// it; the engine treats every returned error as non-fatal.
type Notifier struct{}

// NewNotifier returns a broker-backed Notifier.
func NewNotifier() *Notifier { return &Notifier{} }

// BookingCreated enqueues the confirmation message with the payment link
// the guest must follow to pay.
func (n *Notifier) BookingCreated(ctx context.Context, b *model.Booking, email, paymentURL string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your booking with reference %s has been successfully created.\n", b.Reference)
	fmt.Fprintf(&sb, "Price per night: $%.2f\n", float64(b.PricePerNightCents)/100)
	fmt.Fprintf(&sb, "Total price: $%.2f\n", float64(b.TotalCents)/100)
	fmt.Fprintf(&sb, "Please proceed with your payment using the payment link below:\n%s\n", paymentURL)
	if len(b.Guests) > 0 {
		sb.WriteString("Guests:\n")
		for _, g := range b.Guests {
			fmt.Fprintf(&sb, "- %s %s (%s)\n", g.FirstName, g.LastName, g.Email)
		}
	}
	return PublishNotification(ctx, NotificationEvent{
		Type:             "booking.created",
		Recipient:        email,
		Subject:          "Booking Confirmation",
		Body:             sb.String(),
		BookingReference: b.Reference,
		QueuedAt:         time.Now().UTC().Format(time.RFC3339),
	})
}

// BookingCancelled enqueues the cancellation confirmation.
func (n *Notifier) BookingCancelled(ctx context.Context, b *model.Booking, email string) error {
	body := fmt.Sprintf("Your booking with reference %s has been cancelled.", b.Reference)
	if b.PaymentStatus == model.PaymentRefunded {
		body += " Your payment will be refunded."
	}
	return PublishNotification(ctx, NotificationEvent{
		Type:             "booking.cancelled",
		Recipient:        email,
		Subject:          "Booking Cancellation Confirmation",
		Body:             body,
		BookingReference: b.Reference,
		QueuedAt:         time.Now().UTC().Format(time.RFC3339),
	})
}

// PaymentResult enqueues the payment outcome message.
func (n *Notifier) PaymentResult(ctx context.Context, b *model.Booking, email string, succeeded bool, reason string) error {
	subject := "Booking Payment Successful"
	body := fmt.Sprintf("Congratulations! Your payment for booking %s is successful.", b.Reference)
	if !succeeded {
		subject = "Booking Payment Failed"
		body = fmt.Sprintf("Your payment for booking %s failed", b.Reference)
		if reason != "" {
			body += ": " + reason
		}
	}
	return PublishNotification(ctx, NotificationEvent{
		Type:             "payment.result",
		Recipient:        email,
		Subject:          subject,
		Body:             body,
		BookingReference: b.Reference,
		QueuedAt:         time.Now().UTC().Format(time.RFC3339),
	})
}
