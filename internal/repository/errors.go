// Package repository implements raw-SQL data access for the booking
// engine.  This file defines error values and types reused across the
// repositories so that higher layers such as handlers can distinguish
// failure scenarios with errors.Is / errors.As instead of string
// matching.
package repository

import (
	"errors"
	"fmt"
	"time"
)

// ErrBookingNotFound is returned when a booking cannot be located by id
// or reference.  Handlers translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomNotFound is returned when a referenced room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrLinkNotFound is returned when a payment token is unknown.  The
// token is attacker-controlled input, so the error carries no detail.
var ErrLinkNotFound = errors.New("payment link not found")

// ConflictError is returned by the availability ledger when a reserve
// finds a night already held by another booking.  Date is the first
// conflicting night in chronological order.  Handlers should translate
// it into an HTTP 409 response.
type ConflictError struct {
	RoomID uint64
	Date   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %d already booked for date %s", e.RoomID, e.Date.Format("2006-01-02"))
}
