package handler

import (
	"context"
	"net/http" // HTTP status codes
	"strings"  // gateway name normalization

	"github.com/iliyamo/hotel-reservation/internal/model"      // domain types
	"github.com/iliyamo/hotel-reservation/internal/repository" // payment audit trail access
	"github.com/iliyamo/hotel-reservation/internal/service"    // payment business logic
	"github.com/labstack/echo/v4"                              // Echo web framework
)

// StripeIntents creates Stripe PaymentIntents for a validated booking.
type StripeIntents interface {
	CreateIntent(ctx context.Context, amountCents int64, currency, bookingReference string) (string, error)
}

// PayPalOrders creates PayPal capture orders for a validated booking.
type PayPalOrders interface {
	CreateOrder(ctx context.Context, amountCents int64, currency, bookingReference string) (string, error)
}

// PaymentHandler exposes the payment-link protocol: token validation,
// status polling, per-gateway intent creation and the reconciliation
// endpoint the payment page reports capture results to.  Validation and
// status endpoints are public (the token itself is the credential);
// reconciliation requires an authenticated session.
type PaymentHandler struct {
	Payments *service.PaymentService       // link protocol and reconciliation
	Records  *repository.PaymentRecordRepo // audit trail reads
	Stripe   StripeIntents                 // nil disables the Stripe endpoint
	PayPal   PayPalOrders                  // nil disables the PayPal endpoint
	Currency string                        // ISO currency code sent to gateways
}

// NewPaymentHandler constructs a new PaymentHandler.  Gateway clients
// may be nil when the corresponding processor is not configured.
func NewPaymentHandler(payments *service.PaymentService, records *repository.PaymentRecordRepo, stripe StripeIntents, paypal PayPalOrders, currency string) *PaymentHandler {
	if payments == nil || records == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	if currency == "" {
		currency = "usd"
	}
	return &PaymentHandler{Payments: payments, Records: records, Stripe: stripe, PayPal: paypal, Currency: currency}
}

// Validate handles GET /v1/payments/validate/:token.  It checks the
// token without consuming it and returns the booking the payment page
// should charge for.  Unknown tokens answer 404; expired links and
// unpayable bookings answer 400 with the reason.
func (h *PaymentHandler) Validate(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment token is required"})
	}
	b, err := h.Payments.Validate(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":             true,
		"booking_reference": b.Reference,
		"amount_cents":      b.TotalCents,
		"check_in":          b.CheckIn.Format("2006-01-02"),
		"check_out":         b.CheckOut.Format("2006-01-02"),
	})
}

// Status handles GET /v1/payments/status/:token.  It classifies the
// booking behind the token for the payment page's polling loop.  An
// expired link on a still-pending booking cancels the booking as a side
// effect and answers 400.
func (h *PaymentHandler) Status(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment token is required"})
	}
	rep, err := h.Payments.CheckStatus(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":            rep.Status,
		"booking_reference": rep.BookingReference,
		"amount_cents":      rep.AmountCents,
		"message":           rep.Message,
	})
}

// CreateStripeIntent handles POST /v1/payments/:token/stripe-intent.
// It validates the token, opens a PaymentIntent for the frozen booking
// total and returns the client secret the payment page completes the
// charge with.
func (h *PaymentHandler) CreateStripeIntent(c echo.Context) error {
	if h.Stripe == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "stripe is not configured"})
	}
	token := c.Param("token")
	b, err := h.Payments.Validate(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, err)
	}
	secret, err := h.Stripe.CreateIntent(c.Request().Context(), b.TotalCents, h.Currency, b.Reference)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to create payment intent"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"client_secret":     secret,
		"booking_reference": b.Reference,
		"amount_cents":      b.TotalCents,
	})
}

// CreatePayPalOrder handles POST /v1/payments/:token/paypal-order.  It
// validates the token, opens a capture order and returns the approval
// URL to redirect the payer to.
func (h *PaymentHandler) CreatePayPalOrder(c echo.Context) error {
	if h.PayPal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "paypal is not configured"})
	}
	token := c.Param("token")
	b, err := h.Payments.Validate(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, err)
	}
	approveURL, err := h.PayPal.CreateOrder(c.Request().Context(), b.TotalCents, h.Currency, b.Reference)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to create paypal order"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"approve_url":       approveURL,
		"booking_reference": b.Reference,
		"amount_cents":      b.TotalCents,
	})
}

// reconcileRequest is the capture result the payment page reports back
// after the gateway round trip completes.  The token identifies the
// booking; the page never needs to know internal ids.
type reconcileRequest struct {
	Token         string `json:"token"`
	Gateway       string `json:"gateway"` // STRIPE or PAYPAL
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	Succeeded     bool   `json:"succeeded"`
	FailureReason string `json:"failure_reason"`
}

// Reconcile handles POST /v1/payments/result.  It applies one gateway
// capture result to the booking behind the token.  The operation is
// idempotent: replays answer 200 with ALREADY_PAID or DUPLICATE instead
// of double-applying.
func (h *PaymentHandler) Reconcile(c echo.Context) error {
	var body reconcileRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Token == "" || body.TransactionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and transaction_id are required"})
	}
	var gw model.PaymentGateway
	switch strings.ToUpper(body.Gateway) {
	case string(model.GatewayStripe):
		gw = model.GatewayStripe
	case string(model.GatewayPaypal):
		gw = model.GatewayPaypal
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown gateway"})
	}
	out, err := h.Payments.ApplyResultByToken(c.Request().Context(), body.Token, gw,
		body.TransactionID, body.AmountCents, body.Succeeded, body.FailureReason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":            out.Status,
		"booking_reference": out.BookingReference,
	})
}

// ListPayments handles GET /v1/admin/bookings/:reference/payments.
// Admin only.  It returns the immutable audit trail for a booking,
// oldest first.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking reference is required"})
	}
	recs, err := h.Records.ListByBookingReference(c.Request().Context(), ref)
	if err != nil {
		return writeServiceError(c, err)
	}
	items := make([]echo.Map, 0, len(recs))
	for _, r := range recs {
		item := echo.Map{
			"gateway":        string(r.Gateway),
			"transaction_id": r.TransactionID,
			"amount_cents":   r.AmountCents,
			"status":         string(r.Status),
			"created_at":     r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		if r.FailureReason != nil {
			item["failure_reason"] = *r.FailureReason
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
