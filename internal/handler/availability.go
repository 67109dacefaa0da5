package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"      // date normalization
	"github.com/iliyamo/hotel-reservation/internal/repository" // availability ledger reads
	"github.com/labstack/echo/v4"
)

// AvailabilityHandler answers the public room-availability query.  The
// answer is advisory: a room shown available may still be lost to a
// concurrent booking, the race is settled inside the create
// transaction.
type AvailabilityHandler struct {
	Ledger *repository.AvailabilityRepo
	Rooms  *repository.RoomRepo
}

// NewAvailabilityHandler constructs a new AvailabilityHandler.
func NewAvailabilityHandler(ledger *repository.AvailabilityRepo, rooms *repository.RoomRepo) *AvailabilityHandler {
	if ledger == nil || rooms == nil {
		panic("nil repository passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Ledger: ledger, Rooms: rooms}
}

// Check handles GET /v1/rooms/:id/availability?check_in=&check_out=.
// It reports whether every night in [check_in, check_out) is free and
// what the stay would cost at the room's current nightly price.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	checkIn, err := time.Parse("2006-01-02", c.QueryParam("check_in"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in date, expected YYYY-MM-DD"})
	}
	checkOut, err := time.Parse("2006-01-02", c.QueryParam("check_out"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out date, expected YYYY-MM-DD"})
	}
	checkIn = model.DateOnly(checkIn)
	checkOut = model.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
	}

	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return writeServiceError(c, err)
	}
	booked, err := h.Ledger.BookedDays(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := echo.Map{
		"room_id":   roomID,
		"check_in":  checkIn.Format("2006-01-02"),
		"check_out": checkOut.Format("2006-01-02"),
		"nights":    model.NightsBetween(checkIn, checkOut),
		"available": len(booked) == 0,
	}
	if len(booked) == 0 {
		resp["price_per_night_cents"] = room.PricePerNightCents
		resp["total_cents"] = model.TotalPriceCents(room.PricePerNightCents, checkIn, checkOut)
	} else {
		taken := make([]string, 0, len(booked))
		for _, d := range booked {
			taken = append(taken, d.Date.Format("2006-01-02"))
		}
		resp["unavailable_dates"] = taken
	}
	return c.JSON(http.StatusOK, resp)
}
