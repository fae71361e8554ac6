package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// signContract walks a specific draft to FULLY_SIGNED.
func signContract(t *testing.T, o *Orchestrator, d ContractDraft) *model.Contract {
	t.Helper()
	ctx := context.Background()
	c, err := o.CreateContract(ctx, landlord, d)
	require.NoError(t, err)
	_, err = o.SendToTenant(ctx, landlord, c.ID)
	require.NoError(t, err)
	_, err = o.Sign(ctx, tenant, c.ID, "sig/t.png")
	require.NoError(t, err)
	c, err = o.Sign(ctx, landlord, c.ID, "sig/l.png")
	require.NoError(t, err)
	return c
}

func TestSweepActivatesDueContracts(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	due := signContract(t, o, testDraft(testNow.AddDate(0, 0, 14), testNow.AddDate(1, 0, 14)))
	future := signContract(t, o, testDraft(testNow.AddDate(0, 2, 0), testNow.AddDate(1, 2, 0)))
	require.Equal(t, model.StatusFullySigned, due.Status)

	// Two weeks later the first lease has started, the second has not.
	o.now = func() time.Time { return testNow.AddDate(0, 0, 15) }

	activated, expired, err := o.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, activated)
	assert.Equal(t, 0, expired)

	got, err := o.GetContract(ctx, landlord, due.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, got.Status)

	got, err = o.GetContract(ctx, landlord, future.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFullySigned, got.Status)
}

func TestSweepExpiresEndedContracts(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signContract(t, o, testDraft(testNow.AddDate(0, 0, -30), testNow.AddDate(0, 11, 0)))
	// Countersigning after the start date auto-activated it.
	got, err := o.GetContract(ctx, landlord, c.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, got.Status)

	// Jump past the lease end.
	o.now = func() time.Time { return testNow.AddDate(1, 0, 0) }

	activated, expired, err := o.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, activated)
	assert.Equal(t, 1, expired)

	got, err = o.GetContract(ctx, landlord, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, got.Status)

	t.Run("expired contract is terminal", func(t *testing.T) {
		_, _, err := o.SweepDue(ctx)
		require.NoError(t, err)
		again, err := o.GetContract(ctx, landlord, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusExpired, again.Status)
	})
}

func TestSweepEmitsSystemEvents(t *testing.T) {
	o, db, _ := newTestEnv(t)
	ctx := context.Background()

	signContract(t, o, testDraft(testNow.AddDate(0, 0, 1), testNow.AddDate(1, 0, 1)))
	o.now = func() time.Time { return testNow.AddDate(0, 0, 2) }

	_, _, err := o.SweepDue(ctx)
	require.NoError(t, err)

	db.mu.Lock()
	defer db.mu.Unlock()
	var found bool
	for _, ev := range db.events {
		if ev.Type == "contract.active" && ev.ActorRole == string(RoleSystem) {
			found = true
		}
	}
	assert.True(t, found, "expected a system-actor activation event")
}
