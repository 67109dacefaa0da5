package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk_test_123", user)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "30000", r.PostFormValue("amount"))
		assert.Equal(t, "usd", r.PostFormValue("currency"))
		assert.Equal(t, "REFAAAA001", r.PostFormValue("metadata[booking_reference]"))

		_ = json.NewEncoder(w).Encode(map[string]string{"client_secret": "pi_secret_abc"})
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_123", srv.URL)
	secret, err := c.CreateIntent(context.Background(), 30000, "usd", "REFAAAA001")
	require.NoError(t, err)
	assert.Equal(t, "pi_secret_abc", secret)
}

func TestStripeCreateIntentErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewStripeClient("sk_bad", srv.URL)
	_, err := c.CreateIntent(context.Background(), 1000, "usd", "REFAAAA001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create intent failed")
}

func TestPayPalCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-abc"})
		case "/v2/checkout/orders":
			assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
			var payload struct {
				Intent        string `json:"intent"`
				PurchaseUnits []struct {
					ReferenceID string `json:"reference_id"`
					Amount      struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"purchase_units"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "CAPTURE", payload.Intent)
			require.Len(t, payload.PurchaseUnits, 1)
			assert.Equal(t, "REFAAAA001", payload.PurchaseUnits[0].ReferenceID)
			assert.Equal(t, "USD", payload.PurchaseUnits[0].Amount.CurrencyCode)
			assert.Equal(t, "300.00", payload.PurchaseUnits[0].Amount.Value)

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"links": []map[string]string{
					{"href": "https://paypal.test/self", "rel": "self"},
					{"href": "https://paypal.test/approve", "rel": "approve"},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewPayPalClient("client-id", "client-secret", srv.URL)
	approve, err := c.CreateOrder(context.Background(), 30000, "usd", "REFAAAA001")
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.test/approve", approve)
}
