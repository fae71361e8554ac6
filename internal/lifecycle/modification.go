package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

// Termination and amendment share one request/approve/reject shape: a
// party files a request against an executed contract, and only the
// counter-party may resolve it. At most one PENDING request per type
// exists per contract, enforced by a conditional insert. An approved
// termination moves the contract to TERMINATED; an approved amendment
// records agreement only, the contract-editing surface applies the
// actual diff.

// RequestTermination files a termination request. The reason must meet
// the server-side minimum length and the desired end date must not be
// in the past.
func (o *Orchestrator) RequestTermination(ctx context.Context, actor Actor, contractID uint64, reason string, desiredEnd time.Time) (*model.ModificationRequest, error) {
	c, err := o.modifiableContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	if desiredEnd.IsZero() {
		return nil, fmt.Errorf("%w: desired_end_date is required", ErrValidation)
	}
	if desiredEnd.Before(o.now().Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("%w: desired_end_date cannot be in the past", ErrValidation)
	}
	end := desiredEnd.UTC()
	req := &model.ModificationRequest{
		ContractID:     contractID,
		RequesterID:    actor.ID,
		RequesterRole:  string(actor.Role),
		Type:           model.ModificationTermination,
		Reason:         strings.TrimSpace(reason),
		DesiredEndDate: &end,
		Status:         model.ModificationPending,
	}
	if err := o.deps.Mods.CreatePending(ctx, req); err != nil {
		return nil, err
	}
	o.emit(ctx, c, queue.EventModificationFiled, "", "", actor)
	return req, nil
}

// RequestAmendment files an amendment request describing the changes
// the requester wants agreed. The contract status never changes through
// this flow.
func (o *Orchestrator) RequestAmendment(ctx context.Context, actor Actor, contractID uint64, reason, changes string) (*model.ModificationRequest, error) {
	c, err := o.modifiableContract(ctx, actor, contractID)
	if err != nil {
		return nil, err
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	if strings.TrimSpace(changes) == "" {
		return nil, fmt.Errorf("%w: changes payload is required", ErrValidation)
	}
	req := &model.ModificationRequest{
		ContractID:    contractID,
		RequesterID:   actor.ID,
		RequesterRole: string(actor.Role),
		Type:          model.ModificationAmendment,
		Reason:        strings.TrimSpace(reason),
		Changes:       changes,
		Status:        model.ModificationPending,
	}
	if err := o.deps.Mods.CreatePending(ctx, req); err != nil {
		return nil, err
	}
	o.emit(ctx, c, queue.EventModificationFiled, "", "", actor)
	return req, nil
}

// ListModifications returns all modification requests for a contract,
// newest first.
func (o *Orchestrator) ListModifications(ctx context.Context, actor Actor, contractID uint64) ([]model.ModificationRequest, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(c) {
		return nil, ErrForbidden
	}
	return o.deps.Mods.ListByContract(ctx, contractID)
}

// RespondModification resolves a pending request. Only the contract
// counter-party of the requester may respond; self-approval is
// forbidden. Approving a termination transitions the contract to
// TERMINATED with the requested effective end date.
func (o *Orchestrator) RespondModification(ctx context.Context, actor Actor, requestID uint64, approve bool) (*model.ModificationRequest, error) {
	req, err := o.deps.Mods.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	c, err := o.deps.Contracts.GetByID(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	if actor.ID == req.RequesterID {
		return nil, fmt.Errorf("%w: a request cannot be approved by its requester", ErrForbidden)
	}
	if !actor.isPartyOf(c) || actor.ID != c.CounterParty(req.RequesterID) {
		return nil, ErrForbidden
	}
	if req.Status != model.ModificationPending {
		return nil, fmt.Errorf("%w: request already resolved", ErrInvalidTransition)
	}

	status := model.ModificationRejected
	if approve {
		status = model.ModificationApproved
	}
	// A resolved request is immutable, so an approval is only recorded
	// once the termination it carries can actually apply. A contract
	// that reached a terminal state while the request was open fails
	// here and the request stays PENDING.
	if approve && req.Type == model.ModificationTermination && !CanTransition(c.Status, model.StatusTerminated) {
		return nil, fmt.Errorf("%w: contract is %s", ErrInvalidTransition, c.Status)
	}
	if err := o.deps.Mods.Resolve(ctx, requestID, status, actor.ID, o.now()); err != nil {
		return nil, err
	}

	if approve && req.Type == model.ModificationTermination {
		if err := o.terminate(ctx, c, *req.DesiredEndDate); err != nil {
			if rerr := o.deps.Mods.Reopen(ctx, requestID, status); rerr != nil {
				log.Printf("lifecycle: reopen request %d after failed termination: %v", requestID, rerr)
			}
			return nil, err
		}
	}
	o.emit(ctx, c, queue.EventModificationClosed, "", "", actor)
	return o.deps.Mods.GetByID(ctx, requestID)
}

// terminate moves the contract to TERMINATED, retrying once when the
// status moved underneath us but is still terminable (e.g. the sweeper
// activated the contract between our read and write).
func (o *Orchestrator) terminate(ctx context.Context, c *model.Contract, effective time.Time) error {
	from := c.Status
	for attempt := 0; attempt < 2; attempt++ {
		if !CanTransition(from, model.StatusTerminated) {
			return fmt.Errorf("%w: contract is %s", ErrInvalidTransition, from)
		}
		err := o.deps.Contracts.SetTerminated(ctx, c.ID, from, effective)
		if err == nil {
			o.emitTransition(ctx, c, from, model.StatusTerminated, Actor{Role: RoleSystem})
			return nil
		}
		if !errors.Is(err, ErrConcurrentModification) {
			return err
		}
		cur, gerr := o.deps.Contracts.GetByID(ctx, c.ID)
		if gerr != nil {
			return err
		}
		from = cur.Status
	}
	return ErrConcurrentModification
}

// modifiableContract loads the contract and applies the shared gate for
// filing a request: the caller must be a party and the contract
// executed (ACTIVE or FULLY_SIGNED).
func (o *Orchestrator) modifiableContract(ctx context.Context, actor Actor, contractID uint64) (*model.Contract, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.isPartyOf(c) {
		return nil, ErrForbidden
	}
	if !c.Executed() {
		return nil, fmt.Errorf("%w: contract is %s", ErrForbidden, c.Status)
	}
	return c, nil
}

func validateReason(reason string) error {
	if len(strings.TrimSpace(reason)) < minReasonLen {
		return fmt.Errorf("%w: reason must be at least %d characters", ErrValidation, minReasonLen)
	}
	return nil
}
