package lifecycle

import "github.com/iliyamo/rental-lifecycle/internal/model"

// Role identifies what kind of account is acting. RoleSystem is used
// internally for transitions not triggered by a user, such as the
// sweeper activating a contract whose start date has been reached.
type Role string

const (
	RoleTenant   Role = "TENANT"
	RoleLandlord Role = "LANDLORD"
	RoleAdmin    Role = "ADMIN"
	RoleSystem   Role = "SYSTEM"
)

// ValidUserRole reports whether s names a role an account can hold.
func ValidUserRole(s string) bool {
	switch Role(s) {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// Actor is the explicit identity every orchestrator call runs as. It is
// built by the HTTP layer from the JWT claims and passed down; the
// orchestrator never reads ambient session state.
type Actor struct {
	ID   uint64
	Role Role
}

// isTenantOf reports whether the actor is the tenant party of c.
func (a Actor) isTenantOf(c *model.Contract) bool {
	return a.Role == RoleTenant && a.ID == c.TenantID
}

// isLandlordOf reports whether the actor is the landlord party of c.
func (a Actor) isLandlordOf(c *model.Contract) bool {
	return a.Role == RoleLandlord && a.ID == c.LandlordID
}

// isPartyOf reports whether the actor is one of the two contract
// parties, acting in the matching role.
func (a Actor) isPartyOf(c *model.Contract) bool {
	return a.isTenantOf(c) || a.isLandlordOf(c)
}

// canView reports whether the actor may read the contract and its
// sub-aggregates. Admins can inspect any contract; parties only their
// own.
func (a Actor) canView(c *model.Contract) bool {
	return a.Role == RoleAdmin || a.isPartyOf(c)
}
