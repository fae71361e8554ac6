package payment

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

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeClient talks to the Stripe payment-intents API using the
// form-encoded wire format. Only intent creation is needed here; the
// client-side confirmation happens in the browser with the client
// secret, and the server verifies the resulting reference against its
// own payment_intents records.
type StripeClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewStripeClient returns a client authenticated with the given secret
// key. An empty baseURL selects the public Stripe endpoint; tests point
// it at a local server.
func NewStripeClient(secretKey, baseURL string) *StripeClient {
	if baseURL == "" {
		baseURL = defaultStripeBaseURL
	}
	return &StripeClient{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type stripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent creates a payment intent and returns its provider
// reference and client secret.
func (s *StripeClient) CreateIntent(ctx context.Context, amountCents uint32, currency string, metadata map[string]string) (Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatUint(uint64(amountCents), 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create intent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: read response: %w", err)
	}

	var out stripeIntentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Intent{}, fmt.Errorf("stripe: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return Intent{}, fmt.Errorf("stripe: %s: %s", out.Error.Type, out.Error.Message)
		}
		return Intent{}, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}
	if out.ID == "" || out.ClientSecret == "" {
		return Intent{}, fmt.Errorf("stripe: incomplete intent response")
	}
	return Intent{ID: out.ID, ClientSecret: out.ClientSecret}, nil
}
