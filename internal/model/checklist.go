package model

import "time"

// ChecklistStatus enumerates the move-in checklist states. The tenant
// signs first, which freezes item edits; the landlord's countersignature
// completes the checklist.
type ChecklistStatus string

const (
	ChecklistDraft        ChecklistStatus = "DRAFT"
	ChecklistTenantSigned ChecklistStatus = "TENANT_SIGNED"
	ChecklistCompleted    ChecklistStatus = "COMPLETED"
)

// ItemCondition grades the state of a single checklist item.
type ItemCondition string

const (
	ConditionExcellent ItemCondition = "EXCELLENT"
	ConditionGood      ItemCondition = "GOOD"
	ConditionFair      ItemCondition = "FAIR"
	ConditionPoor      ItemCondition = "POOR"
)

// ValidCondition reports whether s is one of the four condition grades.
func ValidCondition(s ItemCondition) bool {
	switch s {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ChecklistItem is one inspectable item inside a room.
type ChecklistItem struct {
	Name      string        `json:"name"`
	Condition ItemCondition `json:"condition"`
	Notes     string        `json:"notes,omitempty"`
	PhotoRefs []string      `json:"photo_refs,omitempty"` // references into file storage
}

// ChecklistRoom groups items of one room, in display order.
type ChecklistRoom struct {
	Name  string          `json:"name"`
	Items []ChecklistItem `json:"items"`
}

// MoveInChecklist mirrors the `checklists` table. Rooms and items are
// stored as a JSON document since they are always read and written as a
// whole.
//
// Fields:
//  ID                – primary key identifier.
//  ContractID        – contract this checklist documents.
//  Rooms             – ordered rooms with their items.
//  Status            – see ChecklistStatus.
//  TenantSignature   – tenant signature, nil until signed.
//  LandlordSignature – landlord signature, nil until countersigned.
type MoveInChecklist struct {
	ID                uint64          `json:"id"`
	ContractID        uint64          `json:"contract_id"`
	Rooms             []ChecklistRoom `json:"rooms"`
	Status            ChecklistStatus `json:"status"`
	TenantSignature   *Signature      `json:"tenant_signature,omitempty"`
	LandlordSignature *Signature      `json:"landlord_signature,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
