package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

// The move-in checklist documents the property condition at handover.
// Items are freely editable while the checklist is DRAFT; the tenant's
// signature freezes them, and the landlord's countersignature completes
// the checklist. The deadline is advisory for UI urgency only: overdue
// checklists stay editable and signable.

// defaultChecklistRooms is the skeleton used when no template is given.
func defaultChecklistRooms() []model.ChecklistRoom {
	rooms := []struct {
		name  string
		items []string
	}{
		{"Living room", []string{"Walls", "Floor", "Windows", "Lighting"}},
		{"Kitchen", []string{"Walls", "Floor", "Counter", "Stove", "Fridge", "Sink"}},
		{"Bedroom", []string{"Walls", "Floor", "Windows", "Closet"}},
		{"Bathroom", []string{"Walls", "Floor", "Shower", "Toilet", "Sink"}},
	}
	out := make([]model.ChecklistRoom, 0, len(rooms))
	for _, r := range rooms {
		items := make([]model.ChecklistItem, 0, len(r.items))
		for _, name := range r.items {
			items = append(items, model.ChecklistItem{Name: name, Condition: model.ConditionGood})
		}
		out = append(out, model.ChecklistRoom{Name: r.name, Items: items})
	}
	return out
}

// CreateChecklist creates the move-in checklist for an executed
// contract, from the given rooms or the default skeleton. Creation is
// idempotent: if the contract already has a checklist it is returned
// unchanged.
func (o *Orchestrator) CreateChecklist(ctx context.Context, actor Actor, contractID uint64, rooms []model.ChecklistRoom) (*model.MoveInChecklist, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.isPartyOf(c) {
		return nil, ErrForbidden
	}
	if !c.Executed() {
		return nil, fmt.Errorf("%w: contract must be fully signed before the move-in checklist", ErrInvalidTransition)
	}
	if c.ChecklistID != nil {
		return o.deps.Checklists.GetByID(ctx, *c.ChecklistID)
	}
	if len(rooms) == 0 {
		rooms = defaultChecklistRooms()
	} else if err := validateRooms(rooms); err != nil {
		return nil, err
	}

	cl := &model.MoveInChecklist{
		ContractID: contractID,
		Rooms:      rooms,
		Status:     model.ChecklistDraft,
	}
	if err := o.deps.Checklists.Create(ctx, cl); err != nil {
		return nil, err
	}
	deadline := o.checklistDeadline(c)
	if err := o.deps.Contracts.SetChecklist(ctx, contractID, cl.ID, deadline); err != nil {
		return nil, err
	}
	o.emit(ctx, c, queue.EventChecklistCreated, "", "", actor)
	return cl, nil
}

// GetChecklist returns the contract's checklist.
func (o *Orchestrator) GetChecklist(ctx context.Context, actor Actor, contractID uint64) (*model.MoveInChecklist, error) {
	c, err := o.deps.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(c) {
		return nil, ErrForbidden
	}
	return o.deps.Checklists.GetByContract(ctx, contractID)
}

// UpdateChecklistItems replaces the room/item document. Edits are only
// allowed while the checklist is DRAFT; once the tenant has signed,
// every mutation fails with ChecklistFrozen.
func (o *Orchestrator) UpdateChecklistItems(ctx context.Context, actor Actor, checklistID uint64, rooms []model.ChecklistRoom) (*model.MoveInChecklist, error) {
	cl, c, err := o.checklistWithContract(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if !actor.isPartyOf(c) {
		return nil, ErrForbidden
	}
	if cl.Status != model.ChecklistDraft {
		return nil, ErrChecklistFrozen
	}
	if err := validateRooms(rooms); err != nil {
		return nil, err
	}
	if err := o.deps.Checklists.UpdateRooms(ctx, checklistID, rooms); err != nil {
		return nil, err
	}
	return o.deps.Checklists.GetByID(ctx, checklistID)
}

// SignChecklist captures a checklist signature. The tenant signs first
// (DRAFT → TENANT_SIGNED); the landlord's countersignature completes it
// (TENANT_SIGNED → COMPLETED). A landlord signature before the tenant's
// is OutOfOrder, and neither party can sign twice.
func (o *Orchestrator) SignChecklist(ctx context.Context, actor Actor, checklistID uint64, blobRef string) (*model.MoveInChecklist, error) {
	if blobRef == "" {
		return nil, fmt.Errorf("%w: signature reference is required", ErrValidation)
	}
	cl, c, err := o.checklistWithContract(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	sig := model.Signature{BlobRef: blobRef, SignedAt: o.now()}

	switch {
	case actor.isTenantOf(c):
		if cl.TenantSignature != nil {
			return nil, ErrAlreadySigned
		}
		if err := o.deps.Checklists.SetTenantSigned(ctx, checklistID, sig); err != nil {
			return nil, err
		}
		o.emit(ctx, c, queue.EventChecklistSigned, "", "", actor)
	case actor.isLandlordOf(c):
		if cl.LandlordSignature != nil {
			return nil, ErrAlreadySigned
		}
		if cl.TenantSignature == nil {
			return nil, ErrOutOfOrder
		}
		if err := o.deps.Checklists.SetCompleted(ctx, checklistID, sig); err != nil {
			return nil, err
		}
		o.emit(ctx, c, queue.EventChecklistCompleted, "", "", actor)
	default:
		return nil, ErrForbidden
	}
	return o.deps.Checklists.GetByID(ctx, checklistID)
}

// checklistWithContract loads a checklist together with its owning
// contract.
func (o *Orchestrator) checklistWithContract(ctx context.Context, checklistID uint64) (*model.MoveInChecklist, *model.Contract, error) {
	cl, err := o.deps.Checklists.GetByID(ctx, checklistID)
	if err != nil {
		return nil, nil, err
	}
	c, err := o.deps.Contracts.GetByID(ctx, cl.ContractID)
	if err != nil {
		return nil, nil, err
	}
	return cl, c, nil
}

// checklistDeadline derives the advisory completion date: N days after
// move-in, where move-in is the later of the lease start and now.
func (o *Orchestrator) checklistDeadline(c *model.Contract) time.Time {
	base := o.now()
	if c.StartDate.After(base) {
		base = c.StartDate
	}
	return base.AddDate(0, 0, o.deps.ChecklistDeadlineDays)
}

func validateRooms(rooms []model.ChecklistRoom) error {
	if len(rooms) == 0 {
		return fmt.Errorf("%w: at least one room is required", ErrValidation)
	}
	for _, r := range rooms {
		if r.Name == "" {
			return fmt.Errorf("%w: room name is required", ErrValidation)
		}
		for _, it := range r.Items {
			if it.Name == "" {
				return fmt.Errorf("%w: item name is required in room %q", ErrValidation, r.Name)
			}
			if !model.ValidCondition(it.Condition) {
				return fmt.Errorf("%w: unknown condition %q for item %q", ErrValidation, it.Condition, it.Name)
			}
		}
	}
	return nil
}
