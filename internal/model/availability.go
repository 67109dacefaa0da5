package model

import "time"

// AvailabilityDay is one row of the per-room-per-night inventory ledger.
// There is at most one row per (room, date); rows are created lazily on
// first reservation.  A booked row always back-references a live
// (non-cancelled) booking.  Unbooked rows may be garbage-collected at
// any time without affecting correctness.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room this night belongs to.
//  Date      – the calendar night (DATE, midnight UTC).
//  Booked    – whether the night is held by a booking.
//  BookingID – booking holding the night (nullable back-reference).
type AvailabilityDay struct {
	ID        uint64    // room_availability.id
	RoomID    uint64    // room_availability.room_id
	Date      time.Time // room_availability.date
	Booked    bool      // room_availability.booked
	BookingID *uint64   // room_availability.booking_id (nullable)
}
