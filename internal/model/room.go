package model

// Room is an external collaborator owned by the inventory service.  The
// engine only ever reads rooms: capacity bounds the guest list and the
// current nightly price seeds PricePerNightCents when a booking is
// created.  The room price is not authoritative for existing bookings.
//
// Fields:
//  ID                 – primary key identifier.
//  RoomNumber         – human readable room number.
//  Capacity           – maximum number of guests.
//  PricePerNightCents – current nightly price in cents.
type Room struct {
	ID                 uint64 // rooms.id
	RoomNumber         string // rooms.room_number
	Capacity           int    // rooms.capacity
	PricePerNightCents int64  // rooms.price_per_night_cents
}

// User is the slice of the external identity service's user record the
// engine needs: an id for ownership checks and an email for
// notifications.
type User struct {
	ID       uint64 // users.id
	Email    string // users.email
	FullName string // users.full_name
}
