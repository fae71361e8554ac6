// Package lifecycle implements the rental contract state machine: who
// may move a contract between lifecycle states, in what order payments,
// key handover, move-in checklist and modification requests happen, and
// which invariants every transition must hold. All status mutations go
// through the Orchestrator; handlers and background jobs never write a
// contract's status directly.
package lifecycle

import "errors"

// Sentinel errors surfaced to callers. Every rejected action maps to
// exactly one of these so the UI can explain why it was rejected.
// Handlers translate them into HTTP status codes with errors.Is.
var (
	// ErrNotFound is returned when the referenced aggregate does not
	// exist or the store reported no matching row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when the requested edge is not in
	// the allowed edge set for the contract's current status, or a gate
	// precondition (deposit before keys, executed contract before
	// payment) does not hold.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrForbidden is returned when the actor's role or identity is not
	// authorized for the action, including self-approval of modification
	// requests.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadySigned is returned when a party attempts to sign a
	// document they have already signed. Signatures are append-only.
	ErrAlreadySigned = errors.New("already signed")

	// ErrChecklistFrozen is returned for item mutations after the tenant
	// has signed the checklist.
	ErrChecklistFrozen = errors.New("checklist frozen")

	// ErrOutOfOrder is returned when the landlord tries to countersign
	// the checklist before the tenant has signed.
	ErrOutOfOrder = errors.New("out of order")

	// ErrPaymentMismatch is returned when a payment confirmation does not
	// correspond to an intent created for this contract and amount, or a
	// rent payment is attempted before the deposit is paid.
	ErrPaymentMismatch = errors.New("payment mismatch")

	// ErrDuplicatePending is returned when a pending modification request
	// of the same type already exists for the contract.
	ErrDuplicatePending = errors.New("duplicate pending request")

	// ErrConcurrentModification is returned when an optimistic write lost
	// a race: the state read before validation no longer matched at write
	// time. Callers are expected to reload and retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrValidation is returned for malformed input rejected before any
	// state is touched (short termination reason, bad slot index, unknown
	// item condition). The wrapped message names the offending field.
	ErrValidation = errors.New("validation failed")
)
