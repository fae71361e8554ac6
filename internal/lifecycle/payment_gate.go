package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

// The payment gate enforces strict ordering: the deposit may only be
// initiated once the contract is executed (FULLY_SIGNED or ACTIVE), the
// first month's rent only once the deposit is paid, and the keys only
// after that. Confirmations are verified against the intent recorded at
// creation time and are idempotent for client retries.

// CreateDepositIntent creates a payment intent for the security deposit
// and returns the provider client secret.
func (o *Orchestrator) CreateDepositIntent(ctx context.Context, actor Actor, contractID uint64) (string, error) {
	c, err := o.paymentContract(ctx, actor, contractID)
	if err != nil {
		return "", err
	}
	if c.DepositPaid {
		return "", fmt.Errorf("%w: deposit already paid", ErrInvalidTransition)
	}
	return o.createIntent(ctx, c, model.PaymentDeposit, c.DepositCents)
}

// CreateRentIntent creates a payment intent for the first month's rent.
// It fails until the deposit has been paid.
func (o *Orchestrator) CreateRentIntent(ctx context.Context, actor Actor, contractID uint64) (string, error) {
	c, err := o.paymentContract(ctx, actor, contractID)
	if err != nil {
		return "", err
	}
	if !c.DepositPaid {
		return "", fmt.Errorf("%w: deposit must be paid before rent", ErrPaymentMismatch)
	}
	if c.RentPaid {
		return "", fmt.Errorf("%w: first month rent already paid", ErrInvalidTransition)
	}
	return o.createIntent(ctx, c, model.PaymentRent, c.MonthlyRentCents)
}

// ConfirmDepositPayment verifies the provider reference against the
// intent it was created from and marks the deposit paid. Confirming the
// same reference twice is a no-op.
func (o *Orchestrator) ConfirmDepositPayment(ctx context.Context, actor Actor, contractID uint64, providerRef string) (*model.Contract, error) {
	c, err := o.paymentContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	if c.DepositPaid {
		if c.DepositPaymentRef != nil && *c.DepositPaymentRef == providerRef {
			return c, nil // client retry, already applied
		}
		return nil, fmt.Errorf("%w: deposit already paid with a different reference", ErrPaymentMismatch)
	}
	if err := o.verifyIntent(ctx, c, providerRef, model.PaymentDeposit, c.DepositCents); err != nil {
		return nil, err
	}
	if err := o.deps.Contracts.MarkDepositPaid(ctx, c.ID, providerRef); err != nil {
		return o.recheckPaid(ctx, c.ID, providerRef, true, err)
	}
	o.emit(ctx, c, queue.EventDepositPaid, "", "", actor)
	return o.deps.Contracts.GetByID(ctx, c.ID)
}

// ConfirmRentPayment is the rent counterpart of ConfirmDepositPayment.
// It additionally fails while the deposit is unpaid, so rent can never
// be recorded first.
func (o *Orchestrator) ConfirmRentPayment(ctx context.Context, actor Actor, contractID uint64, providerRef string) (*model.Contract, error) {
	c, err := o.paymentContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	if !c.DepositPaid {
		return nil, fmt.Errorf("%w: deposit must be paid before rent", ErrPaymentMismatch)
	}
	if c.RentPaid {
		if c.RentPaymentRef != nil && *c.RentPaymentRef == providerRef {
			return c, nil
		}
		return nil, fmt.Errorf("%w: rent already paid with a different reference", ErrPaymentMismatch)
	}
	if err := o.verifyIntent(ctx, c, providerRef, model.PaymentRent, c.MonthlyRentCents); err != nil {
		return nil, err
	}
	if err := o.deps.Contracts.MarkRentPaid(ctx, c.ID, providerRef); err != nil {
		return o.recheckPaid(ctx, c.ID, providerRef, false, err)
	}
	o.emit(ctx, c, queue.EventRentPaid, "", "", actor)
	return o.deps.Contracts.GetByID(ctx, c.ID)
}

// paymentContract loads the contract and applies the checks shared by
// every payment operation: the caller must be the tenant party and the
// contract must be executed.
func (o *Orchestrator) paymentContract(ctx context.Context, actor Actor, contractID uint64) (*model.Contract, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.isTenantOf(c) {
		return nil, ErrForbidden
	}
	if !c.Executed() {
		return nil, fmt.Errorf("%w: contract must be fully signed before payments", ErrInvalidTransition)
	}
	return c, nil
}

// createIntent calls the provider, records the intent locally and
// returns the client secret.
func (o *Orchestrator) createIntent(ctx context.Context, c *model.Contract, purpose model.PaymentPurpose, amount uint32) (string, error) {
	if amount == 0 {
		return "", fmt.Errorf("%w: nothing to pay", ErrValidation)
	}
	intent, err := o.deps.Provider.CreateIntent(ctx, amount, c.Currency, map[string]string{
		"contract_id": strconv.FormatUint(c.ID, 10),
		"purpose":     string(purpose),
	})
	if err != nil {
		return "", err
	}
	rec := &model.PaymentIntent{
		ContractID:  c.ID,
		Purpose:     purpose,
		AmountCents: amount,
		Currency:    c.Currency,
		ProviderRef: intent.ID,
	}
	if err := o.deps.Intents.Create(ctx, rec); err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// verifyIntent checks that the confirmation reference corresponds to an
// intent created for this contract, purpose and amount. Any mismatch,
// including an unknown or foreign reference, is a PaymentMismatch.
func (o *Orchestrator) verifyIntent(ctx context.Context, c *model.Contract, providerRef string, purpose model.PaymentPurpose, amount uint32) error {
	if providerRef == "" {
		return fmt.Errorf("%w: payment reference is required", ErrValidation)
	}
	pi, err := o.deps.Intents.GetByProviderRef(ctx, providerRef)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown payment reference", ErrPaymentMismatch)
		}
		return err
	}
	switch {
	case pi.ContractID != c.ID:
		return fmt.Errorf("%w: payment reference belongs to another contract", ErrPaymentMismatch)
	case pi.Purpose != purpose:
		return fmt.Errorf("%w: payment reference was created for %s", ErrPaymentMismatch, pi.Purpose)
	case pi.AmountCents != amount:
		return fmt.Errorf("%w: paid amount does not match the amount due", ErrPaymentMismatch)
	}
	return nil
}

// recheckPaid resolves a lost race on a payment flag: if a concurrent
// confirmation with the same reference won, the retry is treated as the
// idempotent no-op it is; anything else propagates.
func (o *Orchestrator) recheckPaid(ctx context.Context, contractID uint64, providerRef string, deposit bool, orig error) (*model.Contract, error) {
	if !errors.Is(orig, ErrConcurrentModification) {
		return nil, orig
	}
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, orig
	}
	ref := c.RentPaymentRef
	paid := c.RentPaid
	if deposit {
		ref = c.DepositPaymentRef
		paid = c.DepositPaid
	}
	if paid && ref != nil && *ref == providerRef {
		return c, nil
	}
	return nil, orig
}
