// Package queue defines message payloads exchanged over the message broker.
package queue

// ContractEvent is published on every contract lifecycle transition.
// It carries enough information for downstream consumers (notification
// delivery, analytics, CRM) to react without querying the primary
// database. Publication is fire-and-forget; the transition itself never
// fails because the broker is down.
type ContractEvent struct {
	ContractID uint64 `json:"contract_id"`
	PropertyID uint64 `json:"property_id"`
	TenantID   uint64 `json:"tenant_id"`
	LandlordID uint64 `json:"landlord_id"`
	Type       string `json:"type"`        // e.g. "contract.sent_to_tenant"
	FromStatus string `json:"from_status"` // empty for non-status events
	ToStatus   string `json:"to_status"`
	ActorID    uint64 `json:"actor_id"`   // zero for system transitions
	ActorRole  string `json:"actor_role"` // TENANT, LANDLORD, ADMIN or SYSTEM
	OccurredAt string `json:"occurred_at"`
}

// Event types that do not change the contract status but are still
// worth notifying about.
const (
	EventDepositPaid        = "contract.deposit_paid"
	EventRentPaid           = "contract.rent_paid"
	EventKeysProposed       = "contract.keys_proposed"
	EventKeysConfirmed      = "contract.keys_confirmed"
	EventKeysCollected      = "contract.keys_collected"
	EventChecklistCreated   = "contract.checklist_created"
	EventChecklistSigned    = "contract.checklist_signed"
	EventChecklistCompleted = "contract.checklist_completed"
	EventModificationFiled  = "contract.modification_filed"
	EventModificationClosed = "contract.modification_resolved"
)
