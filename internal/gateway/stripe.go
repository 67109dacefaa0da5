// Package gateway contains thin clients for the external payment
// processors.  Adapters only open payment intents/orders; capture
// results come back through the reconciliation endpoint, so the core
// engine never depends on a specific gateway.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeClient creates PaymentIntents against the Stripe REST API.
type StripeClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewStripeClient returns a client authenticated with the given secret
// key.  baseURL may be empty to use the public API endpoint.
func NewStripeClient(secretKey, baseURL string) *StripeClient {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeClient{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateIntent opens a PaymentIntent for the booking's total and returns
// the client secret the payment page needs.  The booking reference rides
// along as metadata so captures can be traced back.
func (c *StripeClient) CreateIntent(ctx context.Context, amountCents int64, currency, bookingReference string) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("metadata[booking_reference]", bookingReference)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("stripe: create intent failed: %s: %s", resp.Status, string(body))
	}

	var out struct {
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ClientSecret == "" {
		return "", fmt.Errorf("stripe: response carried no client secret")
	}
	return out.ClientSecret, nil
}
