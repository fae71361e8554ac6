package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

var allStatuses = []model.ContractStatus{
	model.StatusDraft,
	model.StatusSentToTenant,
	model.StatusTenantSigned,
	model.StatusFullySigned,
	model.StatusActive,
	model.StatusTerminated,
	model.StatusExpired,
}

func TestTransitionTable(t *testing.T) {
	valid := map[[2]model.ContractStatus]Role{
		{model.StatusDraft, model.StatusSentToTenant}:        RoleLandlord,
		{model.StatusSentToTenant, model.StatusTenantSigned}: RoleTenant,
		{model.StatusTenantSigned, model.StatusFullySigned}:  RoleLandlord,
		{model.StatusFullySigned, model.StatusActive}:        RoleSystem,
		{model.StatusFullySigned, model.StatusTerminated}:    RoleSystem,
		{model.StatusActive, model.StatusTerminated}:         RoleSystem,
		{model.StatusActive, model.StatusExpired}:            RoleSystem,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			role, want := valid[[2]model.ContractStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
			got, ok := RequiredRole(from, to)
			assert.Equal(t, want, ok, "%s -> %s", from, to)
			if want {
				assert.Equal(t, role, got, "%s -> %s", from, to)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, Terminal(model.StatusTerminated))
	assert.True(t, Terminal(model.StatusExpired))
	for _, s := range []model.ContractStatus{
		model.StatusDraft, model.StatusSentToTenant, model.StatusTenantSigned,
		model.StatusFullySigned, model.StatusActive,
	} {
		assert.False(t, Terminal(s), "%s", s)
	}
}

func TestDeletable(t *testing.T) {
	assert.True(t, Deletable(model.StatusDraft))
	assert.True(t, Deletable(model.StatusSentToTenant))
	assert.True(t, Deletable(model.StatusTenantSigned))
	assert.False(t, Deletable(model.StatusFullySigned))
	assert.False(t, Deletable(model.StatusActive))
	assert.False(t, Deletable(model.StatusTerminated))
	assert.False(t, Deletable(model.StatusExpired))
}
