package model

import "time"

// KeyCollectionStatus enumerates the states of the key handover
// sub-state-machine. A proposal that is replaced by a newer one is kept
// for audit purposes with status SUPERSEDED; only the latest proposal is
// live.
type KeyCollectionStatus string

const (
	KeyCollectionProposed   KeyCollectionStatus = "PROPOSED"
	KeyCollectionConfirmed  KeyCollectionStatus = "CONFIRMED"
	KeyCollectionCompleted  KeyCollectionStatus = "COMPLETED"
	KeyCollectionSuperseded KeyCollectionStatus = "SUPERSEDED"
)

// KeySlot is one proposed handover time and place.
type KeySlot struct {
	At       time.Time `json:"at"`       // UTC handover time
	Location string    `json:"location"` // where to meet, freeform
}

// KeyCollection mirrors the `key_collections` table. Either party may
// propose slots once the contract is executed and the deposit is paid;
// the counter-party confirms one of them.
//
// Fields:
//  ID           – primary key identifier.
//  ContractID   – contract this handover belongs to.
//  ProposedBy   – user who proposed the slots.
//  Slots        – ordered proposed slots (stored as JSON).
//  ChosenSlot   – index into Slots, nil until confirmed.
//  Status       – see KeyCollectionStatus.
type KeyCollection struct {
	ID         uint64              `json:"id"`
	ContractID uint64              `json:"contract_id"`
	ProposedBy uint64              `json:"proposed_by"`
	Slots      []KeySlot           `json:"slots"`
	ChosenSlot *int                `json:"chosen_slot,omitempty"`
	Status     KeyCollectionStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
