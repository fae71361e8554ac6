package lifecycle

import (
	"context"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

// The orchestrator persists through these narrow store interfaces. The
// MySQL implementations live in internal/repository; tests substitute
// in-memory fakes with the same compare-and-swap semantics. Every write
// that depends on previously read state is expressed as a conditional
// update and fails with ErrConcurrentModification when the condition no
// longer holds.

// ContractStore persists the root aggregate.
type ContractStore interface {
	Create(ctx context.Context, c *model.Contract) error
	GetByID(ctx context.Context, id uint64) (*model.Contract, error)
	ListByTenant(ctx context.Context, tenantID uint64) ([]model.Contract, error)
	ListByLandlord(ctx context.Context, landlordID uint64) ([]model.Contract, error)

	// ApplyTransition moves the status from → to, conditioned on the
	// status still being `from` at write time.
	ApplyTransition(ctx context.Context, id uint64, from, to model.ContractStatus) error

	// SetSignature stores a party signature and performs the matching
	// status transition in the same atomic write. The signature column
	// must still be empty, otherwise the write is treated as a lost race.
	SetSignature(ctx context.Context, id uint64, tenant bool, sig model.Signature, from, to model.ContractStatus) error

	// MarkDepositPaid / MarkRentPaid flip the payment flag exactly once,
	// conditioned on it still being unset.
	MarkDepositPaid(ctx context.Context, id uint64, providerRef string) error
	MarkRentPaid(ctx context.Context, id uint64, providerRef string) error

	SetKeysCollected(ctx context.Context, id uint64) error
	SetChecklist(ctx context.Context, id uint64, checklistID uint64, deadline time.Time) error

	// SetTerminated transitions to TERMINATED and records the effective
	// end date, conditioned on the status still being `from`.
	SetTerminated(ctx context.Context, id uint64, from model.ContractStatus, effective time.Time) error

	// Delete removes the contract only while its status is still one of
	// `allowed`; a row in any other state fails with
	// ErrConcurrentModification.
	Delete(ctx context.Context, id uint64, allowed ...model.ContractStatus) error

	// ListActivatable returns FULLY_SIGNED contracts whose start date has
	// been reached; ListExpirable returns ACTIVE contracts whose end date
	// has passed. Both feed the advisory sweeper.
	ListActivatable(ctx context.Context, now time.Time) ([]uint64, error)
	ListExpirable(ctx context.Context, now time.Time) ([]uint64, error)
}

// KeyCollectionStore persists key handover proposals.
type KeyCollectionStore interface {
	// Propose inserts a new PROPOSED record, atomically marking any live
	// PROPOSED record for the contract as SUPERSEDED. It fails with
	// ErrConcurrentModification when a CONFIRMED record exists.
	Propose(ctx context.Context, kc *model.KeyCollection) error

	// GetLive returns the latest non-superseded record for the contract.
	GetLive(ctx context.Context, contractID uint64) (*model.KeyCollection, error)

	Confirm(ctx context.Context, id uint64, slot int) error // PROPOSED → CONFIRMED
	Complete(ctx context.Context, id uint64) error          // CONFIRMED → COMPLETED
}

// ChecklistStore persists move-in checklists.
type ChecklistStore interface {
	Create(ctx context.Context, cl *model.MoveInChecklist) error
	GetByID(ctx context.Context, id uint64) (*model.MoveInChecklist, error)
	GetByContract(ctx context.Context, contractID uint64) (*model.MoveInChecklist, error)

	// UpdateRooms replaces the room/item document while the checklist is
	// still DRAFT.
	UpdateRooms(ctx context.Context, id uint64, rooms []model.ChecklistRoom) error

	SetTenantSigned(ctx context.Context, id uint64, sig model.Signature) error // DRAFT → TENANT_SIGNED
	SetCompleted(ctx context.Context, id uint64, sig model.Signature) error    // TENANT_SIGNED → COMPLETED
}

// ModificationStore persists termination and amendment requests.
type ModificationStore interface {
	// CreatePending inserts the request only if no PENDING request of the
	// same type exists for the contract; otherwise ErrDuplicatePending.
	// The uniqueness check and the insert are a single statement, not a
	// check-then-write.
	CreatePending(ctx context.Context, req *model.ModificationRequest) error

	GetByID(ctx context.Context, id uint64) (*model.ModificationRequest, error)
	ListByContract(ctx context.Context, contractID uint64) ([]model.ModificationRequest, error)

	// Resolve moves PENDING → status exactly once; a second resolution
	// attempt fails with ErrConcurrentModification.
	Resolve(ctx context.Context, id uint64, status model.ModificationStatus, responderID uint64, at time.Time) error

	// Reopen reverts a resolution whose effect could not be applied,
	// returning the request to PENDING. Conditioned on the status still
	// being `from`.
	Reopen(ctx context.Context, id uint64, from model.ModificationStatus) error
}

// IntentStore records payment intents created at the provider so that a
// later confirmation can be matched to contract, purpose and amount.
type IntentStore interface {
	Create(ctx context.Context, pi *model.PaymentIntent) error
	GetByProviderRef(ctx context.Context, ref string) (*model.PaymentIntent, error)
}

// EventPublisher is the one-way notification sink fed on every
// transition. Errors are logged and swallowed by the orchestrator.
type EventPublisher interface {
	PublishContractEvent(ctx context.Context, ev queue.ContractEvent) error
}
