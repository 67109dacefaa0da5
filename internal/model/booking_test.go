package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNightsBetween(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 1, NightsBetween(d(1), d(2)))
	assert.Equal(t, 3, NightsBetween(d(1), d(4)))
	assert.Equal(t, 0, NightsBetween(d(1), d(1)))

	// Wall-clock times within the day never change the night count.
	late := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 3, 4, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 3, NightsBetween(late, early))
}

func TestDateOnlyNormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2026, 3, 2, 1, 30, 0, 0, loc) // 2026-03-01 22:30 UTC
	got := DateOnly(in)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestTotalPriceCents(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(30000), TotalPriceCents(10000, start, end))
	assert.Equal(t, int64(0), TotalPriceCents(10000, start, start))
}

func TestValidBookingTransition(t *testing.T) {
	assert.True(t, ValidBookingTransition(StatusBooked, StatusCheckedIn))
	assert.True(t, ValidBookingTransition(StatusBooked, StatusCancelled))
	assert.True(t, ValidBookingTransition(StatusCheckedIn, StatusCheckedOut))

	assert.False(t, ValidBookingTransition(StatusBooked, StatusCheckedOut))
	assert.False(t, ValidBookingTransition(StatusCheckedIn, StatusCancelled))
	assert.False(t, ValidBookingTransition(StatusCancelled, StatusBooked))
	assert.False(t, ValidBookingTransition(StatusCheckedOut, StatusCheckedIn))
	assert.False(t, ValidBookingTransition(StatusBooked, StatusBooked))
}

func TestValidPaymentTransition(t *testing.T) {
	assert.True(t, ValidPaymentTransition(PaymentPending, PaymentPaid))
	assert.True(t, ValidPaymentTransition(PaymentPending, PaymentFailed))
	assert.True(t, ValidPaymentTransition(PaymentPending, PaymentCancelled))
	assert.True(t, ValidPaymentTransition(PaymentPaid, PaymentRefunded))

	assert.False(t, ValidPaymentTransition(PaymentPaid, PaymentPending))
	assert.False(t, ValidPaymentTransition(PaymentFailed, PaymentPaid))
	assert.False(t, ValidPaymentTransition(PaymentRefunded, PaymentPaid))
	assert.False(t, ValidPaymentTransition(PaymentCancelled, PaymentPending))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, TerminalBookingStatus(StatusCancelled))
	assert.True(t, TerminalBookingStatus(StatusCheckedOut))
	assert.False(t, TerminalBookingStatus(StatusBooked))
	assert.False(t, TerminalBookingStatus(StatusCheckedIn))

	// PAID is not terminal: one move to REFUNDED remains.
	assert.False(t, TerminalPaymentStatus(PaymentPaid))
	assert.False(t, TerminalPaymentStatus(PaymentPending))
	assert.True(t, TerminalPaymentStatus(PaymentFailed))
	assert.True(t, TerminalPaymentStatus(PaymentCancelled))
	assert.True(t, TerminalPaymentStatus(PaymentRefunded))
}

func TestPaymentLinkExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	link := PaymentLink{ExpiresAt: now.Add(10 * time.Minute)}
	assert.False(t, link.Expired(now))
	assert.False(t, link.Expired(now.Add(10*time.Minute))) // boundary is inclusive
	assert.True(t, link.Expired(now.Add(10*time.Minute+time.Second)))
}
