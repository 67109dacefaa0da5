package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
// The only legal moves are BOOKED -> CHECKED_IN -> CHECKED_OUT and
// BOOKED -> CANCELLED.  CANCELLED and CHECKED_OUT are terminal.
type BookingStatus string

const (
	StatusBooked     BookingStatus = "BOOKED"
	StatusCheckedIn  BookingStatus = "CHECKED_IN"
	StatusCheckedOut BookingStatus = "CHECKED_OUT"
	StatusCancelled  BookingStatus = "CANCELLED"
)

// PaymentStatus enumerates the payment states of a booking.
// PENDING may move to PAID, FAILED or CANCELLED.  PAID may only move
// to REFUNDED.  FAILED, CANCELLED and REFUNDED are terminal.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Booking records a guest's stay in a room over a half-open date range
// [CheckIn, CheckOut).  The nightly price is frozen at creation time and
// never recomputed from the room's current price.  A booking is never
// hard-deleted; it only ever moves to CANCELLED.
//
// Fields:
//  ID                 – primary key identifier.
//  Reference          – public 10 character alphanumeric booking reference.
//  RoomID             – room being booked.
//  UserID             – user who made the booking.
//  CheckIn            – first night of the stay (inclusive).
//  CheckOut           – day of departure (exclusive).
//  PricePerNightCents – nightly price in cents, frozen at creation.
//  TotalCents         – PricePerNightCents multiplied by the night count.
//  Status             – booking lifecycle state.
//  PaymentStatus      – payment state.
//  CreatedAt          – creation timestamp.
type Booking struct {
	ID                 uint64        // bookings.id
	Reference          string        // bookings.booking_reference
	RoomID             uint64        // bookings.room_id
	UserID             uint64        // bookings.user_id
	CheckIn            time.Time     // bookings.check_in (DATE)
	CheckOut           time.Time     // bookings.check_out (DATE)
	PricePerNightCents int64         // bookings.price_per_night_cents
	TotalCents         int64         // bookings.total_cents
	Status             BookingStatus // bookings.booking_status
	PaymentStatus      PaymentStatus // bookings.payment_status
	CreatedAt          time.Time     // bookings.created_at
	Guests             []Guest       // owned guest rows, loaded on demand
}

// Nights returns the number of room-nights covered by the booking.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// NightsBetween counts nights in the half-open range [start, end).
func NightsBetween(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)) / (24 * time.Hour))
}

// DateOnly truncates a timestamp to midnight UTC.  All calendar
// comparisons in the engine operate on these normalized values.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TotalPriceCents computes the total for a stay at the given nightly rate.
func TotalPriceCents(pricePerNightCents int64, start, end time.Time) int64 {
	return pricePerNightCents * int64(NightsBetween(start, end))
}

// TerminalBookingStatus reports whether no further booking-status
// transition may leave s.
func TerminalBookingStatus(s BookingStatus) bool {
	return s == StatusCancelled || s == StatusCheckedOut
}

// TerminalPaymentStatus reports whether no further payment-status
// transition may leave s.  PAID is not terminal because a single move
// to REFUNDED remains allowed.
func TerminalPaymentStatus(s PaymentStatus) bool {
	return s == PaymentFailed || s == PaymentCancelled || s == PaymentRefunded
}

// ValidBookingTransition reports whether moving from one booking status
// to another is permitted by the state machine.  Date and payment
// preconditions (check-in day reached, booking paid) are enforced by the
// service layer on top of this structural check.
func ValidBookingTransition(from, to BookingStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusBooked:
		return to == StatusCheckedIn || to == StatusCancelled
	case StatusCheckedIn:
		return to == StatusCheckedOut
	default:
		return false
	}
}

// ValidPaymentTransition reports whether moving from one payment status
// to another is permitted.
func ValidPaymentTransition(from, to PaymentStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case PaymentPending:
		return to == PaymentPaid || to == PaymentFailed || to == PaymentCancelled
	case PaymentPaid:
		return to == PaymentRefunded
	default:
		return false
	}
}
