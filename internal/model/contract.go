package model

import "time"

// ContractStatus enumerates the lifecycle states of a rental contract.
// Transitions between states are validated exclusively by the lifecycle
// orchestrator; no other component writes the status column.
type ContractStatus string

const (
	StatusDraft        ContractStatus = "DRAFT"
	StatusSentToTenant ContractStatus = "SENT_TO_TENANT"
	StatusTenantSigned ContractStatus = "TENANT_SIGNED"
	StatusFullySigned  ContractStatus = "FULLY_SIGNED"
	StatusActive       ContractStatus = "ACTIVE"
	StatusTerminated   ContractStatus = "TERMINATED"
	StatusExpired      ContractStatus = "EXPIRED"
)

// Signature records one party's signature on a contract. Only a
// reference to the stored signature blob is kept; the blob itself lives
// in external file storage.
type Signature struct {
	BlobRef  string    `json:"blob_ref"`  // reference into file storage
	SignedAt time.Time `json:"signed_at"` // UTC signing timestamp
}

// Contract mirrors the `contracts` table. It is the root aggregate of
// the rental lifecycle: key collections, checklists and modification
// requests all reference it by ID.
//
// Fields:
//  ID                – primary key identifier.
//  PropertyID        – listed property being rented.
//  TenantID          – tenant party user ID.
//  LandlordID        – landlord party user ID.
//  ApplicationID     – accepted application this contract originated from.
//  StartDate/EndDate – lease period (dates, stored at UTC midnight).
//  MonthlyRentCents  – monthly rent in minor currency units.
//  DepositCents      – security deposit in minor currency units.
//  Currency          – ISO 4217 code, e.g. "EUR".
//  Terms             – freeform lease terms text.
//  SpecialConditions – freeform extra conditions text.
//  Status            – lifecycle state, see ContractStatus.
//  TenantSignature   – tenant signature, nil until signed.
//  LandlordSignature – landlord signature, nil until countersigned.
//  DepositPaid       – deposit flag; set true exactly once.
//  DepositPaymentRef – provider reference of the deposit payment.
//  RentPaid          – first month rent flag; set true exactly once.
//  RentPaymentRef    – provider reference of the rent payment.
//  KeysCollected     – set when the key handover is completed.
//  ChecklistID       – move-in checklist, nil until created.
//  ChecklistDeadline – advisory date the checklist should be done by.
//  TerminatedAt      – effective end date recorded on termination.
type Contract struct {
	ID                uint64         `json:"id"`
	PropertyID        uint64         `json:"property_id"`
	TenantID          uint64         `json:"tenant_id"`
	LandlordID        uint64         `json:"landlord_id"`
	ApplicationID     uint64         `json:"application_id"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	MonthlyRentCents  uint32         `json:"monthly_rent_cents"`
	DepositCents      uint32         `json:"deposit_cents"`
	Currency          string         `json:"currency"`
	Terms             string         `json:"terms"`
	SpecialConditions string         `json:"special_conditions,omitempty"`
	Status            ContractStatus `json:"status"`
	TenantSignature   *Signature     `json:"tenant_signature,omitempty"`
	LandlordSignature *Signature     `json:"landlord_signature,omitempty"`
	DepositPaid       bool           `json:"deposit_paid"`
	DepositPaymentRef *string        `json:"deposit_payment_ref,omitempty"`
	RentPaid          bool           `json:"first_month_rent_paid"`
	RentPaymentRef    *string        `json:"rent_payment_ref,omitempty"`
	KeysCollected     bool           `json:"keys_collected"`
	ChecklistID       *uint64        `json:"checklist_id,omitempty"`
	ChecklistDeadline *time.Time     `json:"checklist_deadline,omitempty"`
	TerminatedAt      *time.Time     `json:"terminated_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Signed reports whether the given party has already signed.
func (c *Contract) Signed(tenant bool) bool {
	if tenant {
		return c.TenantSignature != nil
	}
	return c.LandlordSignature != nil
}

// IsParty reports whether the user is one of the two contract parties.
func (c *Contract) IsParty(userID uint64) bool {
	return userID == c.TenantID || userID == c.LandlordID
}

// CounterParty returns the other party's user ID. The caller must have
// verified IsParty first; unknown IDs return zero.
func (c *Contract) CounterParty(userID uint64) uint64 {
	switch userID {
	case c.TenantID:
		return c.LandlordID
	case c.LandlordID:
		return c.TenantID
	}
	return 0
}

// Executed reports whether both parties have signed, i.e. the contract
// reached FULLY_SIGNED or a later state. Payment and key-handover gates
// treat FULLY_SIGNED and ACTIVE as equivalent.
func (c *Contract) Executed() bool {
	switch c.Status {
	case StatusFullySigned, StatusActive:
		return true
	}
	return false
}
