package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel comparisons used below
	"net/http"
	"strconv" // strconv converts strings to numeric types
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"      // model holds domain types rendered in responses
	"github.com/iliyamo/hotel-reservation/internal/repository" // repository holds data access sentinels
	"github.com/iliyamo/hotel-reservation/internal/service"    // service holds business rule errors
	"github.com/labstack/echo/v4"                              // echo defines request context types
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) { // perform type switch on the value
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// isAdmin reports whether the authenticated request carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// writeServiceError maps errors surfaced from the service and repository
// layers onto HTTP responses.  Business rule violations become 400 or
// 409, missing resources 404, and everything else 500 with a generic
// message so internals never leak to clients.
func writeServiceError(c echo.Context, err error) error {
	var inv *service.InvalidStateError
	if errors.As(err, &inv) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": inv.Reason})
	}
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error()})
	}
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrLinkNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment link not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// bookingView is the JSON shape a booking is rendered as.
type bookingView struct {
	ID                 uint64      `json:"id"`
	Reference          string      `json:"booking_reference"`
	RoomID             uint64      `json:"room_id"`
	UserID             uint64      `json:"user_id"`
	CheckIn            string      `json:"check_in"`
	CheckOut           string      `json:"check_out"`
	Nights             int         `json:"nights"`
	PricePerNightCents int64       `json:"price_per_night_cents"`
	TotalCents         int64       `json:"total_cents"`
	Status             string      `json:"booking_status"`
	PaymentStatus      string      `json:"payment_status"`
	CreatedAt          string      `json:"created_at"`
	Guests             []guestView `json:"guests,omitempty"`
}

type guestView struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	IdentityNumber string `json:"identity_number,omitempty"`
}

func toBookingView(b *model.Booking) bookingView {
	v := bookingView{
		ID:                 b.ID,
		Reference:          b.Reference,
		RoomID:             b.RoomID,
		UserID:             b.UserID,
		CheckIn:            b.CheckIn.Format("2006-01-02"),
		CheckOut:           b.CheckOut.Format("2006-01-02"),
		Nights:             b.Nights(),
		PricePerNightCents: b.PricePerNightCents,
		TotalCents:         b.TotalCents,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		CreatedAt:          b.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, g := range b.Guests {
		v.Guests = append(v.Guests, guestView{
			FirstName:      g.FirstName,
			LastName:       g.LastName,
			Email:          g.Email,
			PhoneNumber:    g.PhoneNumber,
			IdentityNumber: g.IdentityNumber,
		})
	}
	return v
}

func toBookingViews(bs []*model.Booking) []bookingView {
	out := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingView(b))
	}
	return out
}
