// Package payment abstracts the external payment-intent provider. The
// lifecycle orchestrator only ever sees the Provider interface: it asks
// for an intent, hands the client secret to the caller, and later
// verifies the confirmation reference against the intent it recorded.
// Provider internals (Stripe wire format, retries) stay out of the
// state machine.
package payment

import "context"

// Intent is the provider's view of a created payment intent.
type Intent struct {
	ID           string // provider reference, e.g. "pi_..."
	ClientSecret string // returned to the client for confirmation
}

// Provider creates payment intents at an external processor. Amounts
// are minor currency units. Metadata is attached verbatim so the intent
// can be traced back to a contract from the provider dashboard.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents uint32, currency string, metadata map[string]string) (Intent, error)
}
