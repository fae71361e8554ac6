package lifecycle

import (
	"context"
	"fmt"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

// Key handover is a small sub-state-machine gated on the payment gate:
// nothing can be proposed until the contract is executed and the
// deposit is paid. Either party proposes slots, the counter-party
// confirms one, and completion flips the contract's keys_collected
// flag.

// ProposeKeyCollection proposes handover slots. A new proposal replaces
// an outstanding PROPOSED one; a CONFIRMED handover cannot be replaced.
func (o *Orchestrator) ProposeKeyCollection(ctx context.Context, actor Actor, contractID uint64, slots []model.KeySlot) (*model.KeyCollection, error) {
	c, err := o.keyContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	if c.KeysCollected {
		return nil, fmt.Errorf("%w: keys already collected", ErrInvalidTransition)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: at least one slot is required", ErrValidation)
	}
	for i, s := range slots {
		if s.At.IsZero() || s.Location == "" {
			return nil, fmt.Errorf("%w: slot %d is missing time or location", ErrValidation, i)
		}
	}
	kc := &model.KeyCollection{
		ContractID: contractID,
		ProposedBy: actor.ID,
		Slots:      slots,
		Status:     model.KeyCollectionProposed,
	}
	if err := o.deps.Keys.Propose(ctx, kc); err != nil {
		return nil, err
	}
	o.emit(ctx, c, queue.EventKeysProposed, "", "", actor)
	return kc, nil
}

// GetKeyCollection returns the live handover record for the contract.
func (o *Orchestrator) GetKeyCollection(ctx context.Context, actor Actor, contractID uint64) (*model.KeyCollection, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(c) {
		return nil, ErrForbidden
	}
	return o.deps.Keys.GetLive(ctx, contractID)
}

// ConfirmKeyCollection lets the counter-party pick one of the proposed
// slots. The proposer cannot confirm their own proposal.
func (o *Orchestrator) ConfirmKeyCollection(ctx context.Context, actor Actor, contractID uint64, slot int) (*model.KeyCollection, error) {
	c, err := o.keyContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	kc, err := o.deps.Keys.GetLive(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if kc.Status != model.KeyCollectionProposed {
		return nil, fmt.Errorf("%w: no open proposal to confirm", ErrInvalidTransition)
	}
	if kc.ProposedBy == actor.ID {
		return nil, fmt.Errorf("%w: the counter-party must confirm the slot", ErrForbidden)
	}
	if slot < 0 || slot >= len(kc.Slots) {
		return nil, fmt.Errorf("%w: slot index out of range", ErrValidation)
	}
	if err := o.deps.Keys.Confirm(ctx, kc.ID, slot); err != nil {
		return nil, err
	}
	o.emit(ctx, c, queue.EventKeysConfirmed, "", "", actor)
	return o.deps.Keys.GetLive(ctx, contractID)
}

// CompleteKeyCollection marks a confirmed handover as done and sets the
// contract's keys_collected flag. Either party may mark it, typically
// after the chosen slot has passed.
func (o *Orchestrator) CompleteKeyCollection(ctx context.Context, actor Actor, contractID uint64) (*model.KeyCollection, error) {
	c, err := o.keyContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	kc, err := o.deps.Keys.GetLive(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if kc.Status != model.KeyCollectionConfirmed {
		return nil, fmt.Errorf("%w: handover must be confirmed before completion", ErrInvalidTransition)
	}
	if err := o.deps.Keys.Complete(ctx, kc.ID); err != nil {
		return nil, err
	}
	if err := o.deps.Contracts.SetKeysCollected(ctx, contractID); err != nil {
		return nil, err
	}
	o.emit(ctx, c, queue.EventKeysCollected, "", "", actor)
	return o.deps.Keys.GetLive(ctx, contractID)
}

// keyContract loads the contract and applies the shared handover gate:
// the caller must be a party, the contract executed, and the deposit
// paid.
func (o *Orchestrator) keyContract(ctx context.Context, actor Actor, contractID uint64) (*model.Contract, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.isPartyOf(c) {
		return nil, ErrForbidden
	}
	if !c.Executed() {
		return nil, fmt.Errorf("%w: contract must be fully signed before key handover", ErrInvalidTransition)
	}
	if !c.DepositPaid {
		return nil, fmt.Errorf("%w: deposit must be paid before key handover", ErrInvalidTransition)
	}
	return c, nil
}
