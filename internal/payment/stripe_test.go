package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntent(t *testing.T) {
	var gotAuth string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_abc"}`))
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_key", srv.URL)
	intent, err := c.CreateIntent(context.Background(), 190000, "EUR", map[string]string{
		"contract_id": "42",
		"purpose":     "DEPOSIT",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.Equal(t, "190000", gotForm["amount"])
	assert.Equal(t, "eur", gotForm["currency"])
	assert.Equal(t, "42", gotForm["metadata[contract_id]"])
	assert.Equal(t, "DEPOSIT", gotForm["metadata[purpose]"])
}

func TestCreateIntentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_key", srv.URL)
	_, err := c.CreateIntent(context.Background(), 1000, "EUR", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card_error")
	assert.Contains(t, err.Error(), "declined")
}

func TestCreateIntentIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123"}`))
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_key", srv.URL)
	_, err := c.CreateIntent(context.Background(), 1000, "EUR", nil)
	assert.Error(t, err)
}
