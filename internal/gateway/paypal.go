package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PayPalClient creates orders against the PayPal Orders v2 API.
type PayPalClient struct {
	clientID string
	secret   string
	baseURL  string
	http     *http.Client
}

// NewPayPalClient returns a client for the given app credentials.
// baseURL selects the environment; empty means sandbox.
func NewPayPalClient(clientID, secret, baseURL string) *PayPalClient {
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &PayPalClient{
		clientID: clientID,
		secret:   secret,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// accessToken exchanges the app credentials for a bearer token.
func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal: token request failed: %s: %s", resp.Status, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// CreateOrder opens a capture order for the booking's total and returns
// the approval URL the payment page redirects the guest to.
func (c *PayPalClient) CreateOrder(ctx context.Context, amountCents int64, currency, bookingReference string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": bookingReference,
				"amount": map[string]string{
					"currency_code": strings.ToUpper(currency),
					"value":         fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100),
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/checkout/orders", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal: create order failed: %s: %s", resp.Status, string(raw))
	}

	var out struct {
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	for _, l := range out.Links {
		if l.Rel == "approve" {
			return l.Href, nil
		}
	}
	return "", fmt.Errorf("paypal: order response carried no approve link")
}
