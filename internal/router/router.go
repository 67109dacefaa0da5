package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hotel-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/hotel-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated endpoints.  The availability
// query is open to guests planning a stay; the payment-link endpoints
// are open because the high-entropy token itself is the credential —
// payers follow the link from their notification without logging in.
// cacheMW, when non-nil, fronts the availability query with the Redis
// response cache.
func RegisterPublic(e *echo.Echo, av *handler.AvailabilityHandler, p *handler.PaymentHandler, cacheMW echo.MiddlewareFunc) {
	if cacheMW != nil {
		e.GET("/v1/rooms/:id/availability", av.Check, cacheMW)
	} else {
		e.GET("/v1/rooms/:id/availability", av.Check)
	}

	// Payment page protocol: validate before rendering, poll status,
	// open a gateway intent/order for the frozen total.
	e.GET("/v1/payments/validate/:token", p.Validate)
	e.GET("/v1/payments/status/:token", p.Status)
	e.POST("/v1/payments/:token/stripe-intent", p.CreateStripeIntent)
	e.POST("/v1/payments/:token/paypal-order", p.CreatePayPalOrder)
	// Capture results are reported back here; idempotent on replay.
	e.POST("/v1/payments/result", p.Reconcile)
}

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER or ADMIN role.  rateMW,
// when non-nil, throttles booking creation.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, rateMW echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)
	if rateMW != nil {
		g.POST("/bookings", b.CreateBooking, rateMW)
	} else {
		g.POST("/bookings", b.CreateBooking)
	}
	g.GET("/bookings/:reference", b.GetBooking)
	g.DELETE("/bookings/:reference", b.CancelBooking)
	g.GET("/my-bookings", b.ListMyBookings)
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.GET("/bookings", b.ListAllBookings)
	g.PATCH("/bookings/:id", b.UpdateBooking)
	g.GET("/bookings/:reference/payments", p.ListPayments)
	g.DELETE("/users/:id/data", b.PurgeUserData)
}
