package model

import "time"

// PaymentPurpose says what a payment intent pays for. The gate enforces
// deposit before rent, so the purpose is fixed at intent creation time.
type PaymentPurpose string

const (
	PaymentDeposit PaymentPurpose = "DEPOSIT"
	PaymentRent    PaymentPurpose = "RENT"
)

// PaymentIntent mirrors the `payment_intents` table. One row is written
// for every intent created at the provider, so a later confirmation can
// be verified against the contract and amount the intent was created
// for. The client secret is returned to the caller once and not exposed
// afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  ContractID  – contract the payment belongs to.
//  Purpose     – DEPOSIT or RENT.
//  AmountCents – amount in minor currency units at creation time.
//  Currency    – ISO 4217 code.
//  ProviderRef – the provider's intent identifier (e.g. "pi_...").
type PaymentIntent struct {
	ID          uint64         // payment_intents.id
	ContractID  uint64         // payment_intents.contract_id
	Purpose     PaymentPurpose // payment_intents.purpose
	AmountCents uint32         // payment_intents.amount_cents
	Currency    string         // payment_intents.currency
	ProviderRef string         // payment_intents.provider_ref
	CreatedAt   time.Time      // payment_intents.created_at
}
