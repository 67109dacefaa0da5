// Package queue defines message payloads exchanged over the message
// broker, the publisher that enqueues them and the background consumer
// that delivers them.
package queue

// NotificationEvent is published whenever the engine wants a user-facing
// message sent.  It carries everything the delivery side needs so
// downstream consumers never query the primary database.
type NotificationEvent struct {
	Type             string `json:"type"` // booking.created | booking.cancelled | payment.result
	Recipient        string `json:"recipient"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
	BookingReference string `json:"booking_reference"`
	QueuedAt         string `json:"queued_at"`
}
