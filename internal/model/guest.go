package model

// Guest is a person staying under a booking.  Guests are owned
// exclusively by their booking and are removed together with it when a
// user's data is purged.  The number of guests on a booking may never
// exceed the room's capacity.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – booking that owns this guest.
//  FirstName      – given name.
//  LastName       – family name.
//  Email          – contact email.
//  PhoneNumber    – contact phone number.
//  IdentityNumber – passport or national id presented at check-in.
type Guest struct {
	ID             uint64 // guests.id
	BookingID      uint64 // guests.booking_id
	FirstName      string // guests.first_name
	LastName       string // guests.last_name
	Email          string // guests.email
	PhoneNumber    string // guests.phone_number
	IdentityNumber string // guests.identity_number
}
