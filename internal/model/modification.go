package model

import "time"

// ModificationType distinguishes the two modification sub-processes a
// party can initiate against an executed contract.
type ModificationType string

const (
	ModificationTermination ModificationType = "TERMINATION"
	ModificationAmendment   ModificationType = "AMENDMENT"
)

// ModificationStatus enumerates request resolution states. A resolved
// request is immutable.
type ModificationStatus string

const (
	ModificationPending  ModificationStatus = "PENDING"
	ModificationApproved ModificationStatus = "APPROVED"
	ModificationRejected ModificationStatus = "REJECTED"
)

// ModificationRequest mirrors the `modification_requests` table and
// covers both termination and amendment requests. At most one PENDING
// request per type may exist per contract; the database enforces this
// with a conditional insert, not a check-then-write.
//
// Fields:
//  ID             – primary key identifier.
//  ContractID     – contract being modified.
//  RequesterID    – party who filed the request.
//  RequesterRole  – TENANT or LANDLORD at filing time.
//  Type           – TERMINATION or AMENDMENT.
//  Reason         – why the request was filed (min length enforced).
//  DesiredEndDate – termination only: requested effective end date.
//  Changes        – amendment only: freeform description of the diff the
//                   contract-editing UI is expected to apply on approval.
//  Status         – PENDING until the counter-party resolves it.
//  RespondedBy    – counter-party who resolved the request.
//  RespondedAt    – resolution timestamp.
type ModificationRequest struct {
	ID             uint64             `json:"id"`
	ContractID     uint64             `json:"contract_id"`
	RequesterID    uint64             `json:"requester_id"`
	RequesterRole  string             `json:"requester_role"`
	Type           ModificationType   `json:"type"`
	Reason         string             `json:"reason"`
	DesiredEndDate *time.Time         `json:"desired_end_date,omitempty"`
	Changes        string             `json:"changes,omitempty"`
	Status         ModificationStatus `json:"status"`
	RespondedBy    *uint64            `json:"responded_by,omitempty"`
	RespondedAt    *time.Time         `json:"responded_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
