package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // parsing check-in / check-out dates

	"github.com/iliyamo/hotel-reservation/internal/model"   // domain types
	"github.com/iliyamo/hotel-reservation/internal/service" // booking business logic
	"github.com/labstack/echo/v4"                           // Echo web framework
)

// BookingHandler exposes booking creation, lookup, listing and
// cancellation for customers, plus the administrative update and purge
// operations.  All methods assume that JWT authentication and role
// validation has already been performed by middleware.  Methods may
// return 401 Unauthorized if the user ID cannot be extracted from the
// context.
type BookingHandler struct {
	Bookings *service.BookingService // booking workflows
}

// NewBookingHandler constructs a new BookingHandler.  The service must
// be non-nil.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// createBookingRequest is the JSON body accepted by CreateBooking.
type createBookingRequest struct {
	RoomID   uint64 `json:"room_id"`
	CheckIn  string `json:"check_in"`  // YYYY-MM-DD
	CheckOut string `json:"check_out"` // YYYY-MM-DD
	Guests   []struct {
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		Email          string `json:"email"`
		PhoneNumber    string `json:"phone_number"`
		IdentityNumber string `json:"identity_number"`
	} `json:"guests"`
}

// CreateBooking handles POST /v1/bookings.  It reserves the requested
// nights for the authenticated user and returns 201 Created with the
// booking and its payment URL.  Date-rule and pending-cap violations
// return 400; a room whose nights were taken by a concurrent request
// returns 409 with the first conflicting date.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	checkIn, err := time.Parse("2006-01-02", body.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in date, expected YYYY-MM-DD"})
	}
	checkOut, err := time.Parse("2006-01-02", body.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out date, expected YYYY-MM-DD"})
	}
	guests := make([]model.Guest, 0, len(body.Guests))
	for _, g := range body.Guests {
		if g.FirstName == "" || g.LastName == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest first_name and last_name are required"})
		}
		guests = append(guests, model.Guest{
			FirstName:      g.FirstName,
			LastName:       g.LastName,
			Email:          g.Email,
			PhoneNumber:    g.PhoneNumber,
			IdentityNumber: g.IdentityNumber,
		})
	}
	res, err := h.Bookings.CreateBooking(c.Request().Context(), userID, body.RoomID, checkIn, checkOut, guests)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking":     toBookingView(res.Booking),
		"payment_url": res.PaymentURL,
	})
}

// GetBooking handles GET /v1/bookings/:reference.  Customers may only
// read their own bookings; admins may read any.  An existing booking
// owned by another user answers 404, not 403, so references cannot be
// probed.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking reference is required"})
	}
	b, err := h.Bookings.FindByReference(c.Request().Context(), ref, userID, isAdmin(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingView(b)})
}

// ListMyBookings handles GET /v1/my-bookings.  It returns every booking
// the authenticated user has ever made, newest first.  When none exist
// it returns an empty array.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookingViews(items)})
}

// CancelBooking handles DELETE /v1/bookings/:reference.  It cancels the
// authenticated user's booking, frees its nights and marks a paid
// booking REFUNDED.  Violating any cancellation rule (already
// cancelled, checked in, stay begun, inside the cutoff window) answers
// 400 with the reason.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking reference is required"})
	}
	if err := h.Bookings.CancelBooking(c.Request().Context(), ref, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAllBookings handles GET /v1/admin/bookings.  Admin only.
func (h *BookingHandler) ListAllBookings(c echo.Context) error {
	items, err := h.Bookings.ListAllBookings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookingViews(items)})
}

// updateBookingRequest carries the optional new states for the
// administrative update.  Absent fields leave the current state alone.
type updateBookingRequest struct {
	BookingStatus *string `json:"booking_status"`
	PaymentStatus *string `json:"payment_status"`
}

// UpdateBooking handles PATCH /v1/admin/bookings/:id.  Admin only.  It
// applies a manual state transition; illegal transitions answer 400.
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body updateBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BookingStatus == nil && body.PaymentStatus == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	var newStatus *model.BookingStatus
	if body.BookingStatus != nil {
		s := model.BookingStatus(*body.BookingStatus)
		newStatus = &s
	}
	var newPayment *model.PaymentStatus
	if body.PaymentStatus != nil {
		p := model.PaymentStatus(*body.PaymentStatus)
		newPayment = &p
	}
	if err := h.Bookings.UpdateBooking(c.Request().Context(), id, newStatus, newPayment); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// PurgeUserData handles DELETE /v1/admin/users/:id/data.  Admin only.
// It releases the user's active holds and removes their bookings and
// guests, returning the number of bookings removed.
func (h *BookingHandler) PurgeUserData(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	removed, err := h.Bookings.PurgeUserData(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings_removed": removed})
}
