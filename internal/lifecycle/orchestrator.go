package lifecycle

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/payment"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

// minReasonLen is the server-side minimum length of a modification
// request reason, enforced regardless of client checks.
const minReasonLen = 10

// Deps bundles everything the orchestrator needs. Contracts, Keys,
// Checklists, Mods, Intents and Provider are required; Events may be
// nil, in which case transitions are not published.
type Deps struct {
	Contracts  ContractStore
	Keys       KeyCollectionStore
	Checklists ChecklistStore
	Mods       ModificationStore
	Intents    IntentStore
	Provider   payment.Provider
	Events     EventPublisher

	// ChecklistDeadlineDays is how many days after move-in the checklist
	// should be completed. The deadline is advisory only.
	ChecklistDeadlineDays int
}

// Orchestrator is the single authority validating every lifecycle
// action against the contract's current state and the actor's role. No
// other component writes a contract's status.
type Orchestrator struct {
	deps Deps
	now  func() time.Time
}

// New constructs an Orchestrator and panics if a required dependency is
// missing.
func New(deps Deps) *Orchestrator {
	if deps.Contracts == nil || deps.Keys == nil || deps.Checklists == nil ||
		deps.Mods == nil || deps.Intents == nil || deps.Provider == nil {
		panic("nil dependency passed to lifecycle.New")
	}
	if deps.ChecklistDeadlineDays <= 0 {
		deps.ChecklistDeadlineDays = 14
	}
	return &Orchestrator{
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ContractDraft carries the terms for a new draft contract. The
// landlord identity comes from the actor, not the payload.
type ContractDraft struct {
	PropertyID        uint64    `json:"property_id"`
	TenantID          uint64    `json:"tenant_id"`
	ApplicationID     uint64    `json:"application_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	MonthlyRentCents  uint32    `json:"monthly_rent_cents"`
	DepositCents      uint32    `json:"deposit_cents"`
	Currency          string    `json:"currency"`
	Terms             string    `json:"terms"`
	SpecialConditions string    `json:"special_conditions"`
}

func (d ContractDraft) validate() error {
	switch {
	case d.PropertyID == 0:
		return fmt.Errorf("%w: property_id is required", ErrValidation)
	case d.TenantID == 0:
		return fmt.Errorf("%w: tenant_id is required", ErrValidation)
	case d.MonthlyRentCents == 0:
		return fmt.Errorf("%w: monthly_rent_cents must be positive", ErrValidation)
	case len(d.Currency) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	case d.StartDate.IsZero() || d.EndDate.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", ErrValidation)
	case !d.EndDate.After(d.StartDate):
		return fmt.Errorf("%w: end_date must be after start_date", ErrValidation)
	}
	return nil
}

// CreateContract creates a draft contract owned by the acting landlord.
func (o *Orchestrator) CreateContract(ctx context.Context, actor Actor, draft ContractDraft) (*model.Contract, error) {
	if actor.Role != RoleLandlord {
		return nil, ErrForbidden
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}
	if draft.TenantID == actor.ID {
		return nil, fmt.Errorf("%w: landlord cannot rent to themselves", ErrValidation)
	}
	c := &model.Contract{
		PropertyID:        draft.PropertyID,
		TenantID:          draft.TenantID,
		LandlordID:        actor.ID,
		ApplicationID:     draft.ApplicationID,
		StartDate:         draft.StartDate.UTC(),
		EndDate:           draft.EndDate.UTC(),
		MonthlyRentCents:  draft.MonthlyRentCents,
		DepositCents:      draft.DepositCents,
		Currency:          strings.ToUpper(draft.Currency),
		Terms:             draft.Terms,
		SpecialConditions: draft.SpecialConditions,
		Status:            model.StatusDraft,
	}
	if err := o.deps.Contracts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetContract returns a contract the actor is allowed to see.
func (o *Orchestrator) GetContract(ctx context.Context, actor Actor, id uint64) (*model.Contract, error) {
	c, err := o.deps.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(c) {
		return nil, ErrForbidden
	}
	return c, nil
}

// ListContracts returns the contracts the actor is a party of, newest
// first.
func (o *Orchestrator) ListContracts(ctx context.Context, actor Actor) ([]model.Contract, error) {
	switch actor.Role {
	case RoleTenant:
		return o.deps.Contracts.ListByTenant(ctx, actor.ID)
	case RoleLandlord:
		return o.deps.Contracts.ListByLandlord(ctx, actor.ID)
	}
	return nil, ErrForbidden
}

// SendToTenant moves a draft to SENT_TO_TENANT. Only the owning
// landlord may send, and only when the terms are complete (creation
// already validates them, so the status check is what matters here).
func (o *Orchestrator) SendToTenant(ctx context.Context, actor Actor, id uint64) (*model.Contract, error) {
	c, err := o.deps.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.authorizeEdge(actor, c, model.StatusSentToTenant); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Terms) == "" {
		return nil, fmt.Errorf("%w: terms must be filled in before sending", ErrValidation)
	}
	if err := o.deps.Contracts.ApplyTransition(ctx, id, c.Status, model.StatusSentToTenant); err != nil {
		return nil, err
	}
	o.emitTransition(ctx, c, c.Status, model.StatusSentToTenant, actor)
	return o.deps.Contracts.GetByID(ctx, id)
}

// Sign captures a party signature and advances the contract in the same
// atomic write: the tenant moves SENT_TO_TENANT → TENANT_SIGNED, the
// landlord countersigns TENANT_SIGNED → FULLY_SIGNED. When the landlord
// countersigns a lease whose start date has already been reached, the
// contract is activated immediately.
func (o *Orchestrator) Sign(ctx context.Context, actor Actor, id uint64, blobRef string) (*model.Contract, error) {
	if strings.TrimSpace(blobRef) == "" {
		return nil, fmt.Errorf("%w: signature reference is required", ErrValidation)
	}
	c, err := o.deps.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var to model.ContractStatus
	var tenant bool
	switch {
	case actor.isTenantOf(c):
		tenant, to = true, model.StatusTenantSigned
	case actor.isLandlordOf(c):
		tenant, to = false, model.StatusFullySigned
	default:
		return nil, ErrForbidden
	}
	if c.Signed(tenant) {
		return nil, ErrAlreadySigned
	}
	if err := o.authorizeEdge(actor, c, to); err != nil {
		return nil, err
	}

	sig := model.Signature{BlobRef: blobRef, SignedAt: o.now()}
	if err := o.deps.Contracts.SetSignature(ctx, id, tenant, sig, c.Status, to); err != nil {
		return nil, err
	}
	o.emitTransition(ctx, c, c.Status, to, actor)

	// Countersigning a lease that has already started activates it on
	// the spot; future-dated leases are picked up by the sweeper.
	if to == model.StatusFullySigned && !o.now().Before(c.StartDate) {
		if err := o.deps.Contracts.ApplyTransition(ctx, id, model.StatusFullySigned, model.StatusActive); err == nil {
			o.emitTransition(ctx, c, model.StatusFullySigned, model.StatusActive, Actor{Role: RoleSystem})
		}
	}
	return o.deps.Contracts.GetByID(ctx, id)
}

// DeleteContract removes a contract that has not been countersigned
// yet. Only the owning landlord (or an admin) may delete, and only
// while the status is DRAFT, SENT_TO_TENANT or TENANT_SIGNED.
func (o *Orchestrator) DeleteContract(ctx context.Context, actor Actor, id uint64) error {
	c, err := o.deps.Contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.isLandlordOf(c) && actor.Role != RoleAdmin {
		return ErrForbidden
	}
	if !Deletable(c.Status) {
		return ErrInvalidTransition
	}
	return o.deps.Contracts.Delete(ctx, id,
		model.StatusDraft, model.StatusSentToTenant, model.StatusTenantSigned)
}

// authorizeEdge validates that current → to is an edge of the state
// machine and that the actor holds the role that edge requires. The
// order matters: an impossible edge reports InvalidTransition even to
// the wrong actor, while a real edge requested by the wrong party
// reports Forbidden.
func (o *Orchestrator) authorizeEdge(actor Actor, c *model.Contract, to model.ContractStatus) error {
	required, ok := RequiredRole(c.Status, to)
	if !ok {
		return ErrInvalidTransition
	}
	switch required {
	case RoleTenant:
		if !actor.isTenantOf(c) {
			return ErrForbidden
		}
	case RoleLandlord:
		if !actor.isLandlordOf(c) {
			return ErrForbidden
		}
	case RoleSystem:
		if actor.Role != RoleSystem {
			return ErrForbidden
		}
	}
	return nil
}

// emitTransition publishes a status-change event. Failures are logged
// and ignored; a broker outage must not fail the transition.
func (o *Orchestrator) emitTransition(ctx context.Context, c *model.Contract, from, to model.ContractStatus, actor Actor) {
	o.emit(ctx, c, "contract."+strings.ToLower(string(to)), string(from), string(to), actor)
}

// emit publishes an arbitrary contract event through the configured
// publisher, if any.
func (o *Orchestrator) emit(ctx context.Context, c *model.Contract, eventType, from, to string, actor Actor) {
	if o.deps.Events == nil {
		return
	}
	ev := queue.ContractEvent{
		ContractID: c.ID,
		PropertyID: c.PropertyID,
		TenantID:   c.TenantID,
		LandlordID: c.LandlordID,
		Type:       eventType,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		OccurredAt: o.now().Format(time.RFC3339),
	}
	if err := o.deps.Events.PublishContractEvent(ctx, ev); err != nil {
		log.Printf("lifecycle: publish %s for contract %d failed: %v", eventType, c.ID, err)
	}
}
