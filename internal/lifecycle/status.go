package lifecycle

import "github.com/iliyamo/rental-lifecycle/internal/model"

// edges is the complete transition table of the contract state machine,
// keyed by current status. The value maps each reachable next status to
// the role allowed to trigger that edge. Anything absent here is an
// invalid transition, no matter who asks.
var edges = map[model.ContractStatus]map[model.ContractStatus]Role{
	model.StatusDraft: {
		model.StatusSentToTenant: RoleLandlord,
	},
	model.StatusSentToTenant: {
		model.StatusTenantSigned: RoleTenant,
	},
	model.StatusTenantSigned: {
		model.StatusFullySigned: RoleLandlord,
	},
	model.StatusFullySigned: {
		model.StatusActive:     RoleSystem,
		model.StatusTerminated: RoleSystem,
	},
	model.StatusActive: {
		model.StatusTerminated: RoleSystem,
		model.StatusExpired:    RoleSystem,
	},
}

// CanTransition reports whether from → to is an edge of the state
// machine.
func CanTransition(from, to model.ContractStatus) bool {
	_, ok := edges[from][to]
	return ok
}

// RequiredRole returns the role allowed to trigger the from → to edge.
// The second return value is false when the edge does not exist.
func RequiredRole(from, to model.ContractStatus) (Role, bool) {
	r, ok := edges[from][to]
	return r, ok
}

// Deletable reports whether a contract in the given status may still be
// physically deleted. Once the tenant has countersigned nothing is ever
// deleted, only terminated.
func Deletable(s model.ContractStatus) bool {
	switch s {
	case model.StatusDraft, model.StatusSentToTenant, model.StatusTenantSigned:
		return true
	}
	return false
}

// Terminal reports whether no further edges leave the given status.
func Terminal(s model.ContractStatus) bool {
	return len(edges[s]) == 0
}
