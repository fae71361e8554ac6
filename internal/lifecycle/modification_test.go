package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

const validReason = "relocating for a new job in another city"

func TestRequestTermination(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	t.Run("requires executed contract", func(t *testing.T) {
		c := newContract(t, o)
		_, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 1, 0))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	c := signedContract(t, o)

	t.Run("short reason rejected", func(t *testing.T) {
		_, err := o.RequestTermination(ctx, tenant, c.ID, "too short", testNow.AddDate(0, 1, 0))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("past end date rejected", func(t *testing.T) {
		_, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 0, -2))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("tenant files request", func(t *testing.T) {
		req, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Equal(t, model.ModificationPending, req.Status)
		assert.Equal(t, model.ModificationTermination, req.Type)
		assert.Equal(t, tenant.ID, req.RequesterID)
	})

	t.Run("second pending termination rejected", func(t *testing.T) {
		_, err := o.RequestTermination(ctx, landlord, c.ID, validReason, testNow.AddDate(0, 2, 0))
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})

	t.Run("amendment still allowed alongside", func(t *testing.T) {
		_, err := o.RequestAmendment(ctx, tenant, c.ID, validReason, "rent 950 -> 900")
		assert.NoError(t, err)
	})
}

func TestRequestAmendmentValidation(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()
	c := signedContract(t, o)

	_, err := o.RequestAmendment(ctx, tenant, c.ID, validReason, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRespondModification(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	req, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 1, 0))
	require.NoError(t, err)

	t.Run("requester cannot approve own request", func(t *testing.T) {
		_, err := o.RespondModification(ctx, tenant, req.ID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("stranger cannot respond", func(t *testing.T) {
		_, err := o.RespondModification(ctx, stranger, req.ID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("counter-party approves and contract terminates", func(t *testing.T) {
		got, err := o.RespondModification(ctx, landlord, req.ID, true)
		require.NoError(t, err)
		assert.Equal(t, model.ModificationApproved, got.Status)
		require.NotNil(t, got.RespondedBy)
		assert.Equal(t, landlord.ID, *got.RespondedBy)

		cGot, err := o.GetContract(ctx, landlord, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusTerminated, cGot.Status)
		require.NotNil(t, cGot.TerminatedAt)
	})

	t.Run("resolved request cannot be responded again", func(t *testing.T) {
		_, err := o.RespondModification(ctx, landlord, req.ID, false)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("terminated contract takes no new requests", func(t *testing.T) {
		_, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 2, 0))
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestRejectedTerminationLeavesContractUntouched(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	req, err := o.RequestTermination(ctx, landlord, c.ID, validReason, testNow.AddDate(0, 1, 0))
	require.NoError(t, err)

	got, err := o.RespondModification(ctx, tenant, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.ModificationRejected, got.Status)

	cGot, err := o.GetContract(ctx, tenant, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFullySigned, cGot.Status)

	t.Run("a new request may be filed after rejection", func(t *testing.T) {
		_, err := o.RequestTermination(ctx, landlord, c.ID, validReason, testNow.AddDate(0, 2, 0))
		assert.NoError(t, err)
	})
}

func TestApprovedAmendmentDoesNotChangeStatus(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	req, err := o.RequestAmendment(ctx, tenant, c.ID, validReason, "add parking spot clause")
	require.NoError(t, err)

	got, err := o.RespondModification(ctx, landlord, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.ModificationApproved, got.Status)

	cGot, err := o.GetContract(ctx, tenant, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFullySigned, cGot.Status)
}

func TestListModifications(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	_, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 1, 0))
	require.NoError(t, err)
	_, err = o.RequestAmendment(ctx, landlord, c.ID, validReason, "adjust notice period")
	require.NoError(t, err)

	mods, err := o.ListModifications(ctx, tenant, c.ID)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	// Newest first.
	assert.Equal(t, model.ModificationAmendment, mods[0].Type)

	_, err = o.ListModifications(ctx, stranger, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

// TestApproveTerminationAfterExpiry: the lease runs out while a
// termination request is still open. Approving it must fail without
// recording the approval, so the request stays respondable.
func TestApproveTerminationAfterExpiry(t *testing.T) {
	o, db, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	req, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 1, 0))
	require.NoError(t, err)

	// The sweeper runs the contract to the end of its life underneath
	// the open request.
	require.NoError(t, memContracts{db}.ApplyTransition(ctx, c.ID, model.StatusFullySigned, model.StatusActive))
	require.NoError(t, memContracts{db}.ApplyTransition(ctx, c.ID, model.StatusActive, model.StatusExpired))

	_, err = o.RespondModification(ctx, landlord, req.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	t.Run("request stays pending", func(t *testing.T) {
		got, err := o.deps.Mods.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ModificationPending, got.Status)
		assert.Nil(t, got.RespondedBy)
	})

	t.Run("contract untouched", func(t *testing.T) {
		got, err := o.GetContract(ctx, landlord, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusExpired, got.Status)
	})

	t.Run("rejection still closes the request", func(t *testing.T) {
		got, err := o.RespondModification(ctx, landlord, req.ID, false)
		require.NoError(t, err)
		assert.Equal(t, model.ModificationRejected, got.Status)
	})
}

// TestTerminationAfterActivation: the sweeper activates the contract
// while a termination request is pending; approval still terminates,
// now from ACTIVE.
func TestTerminationAfterActivation(t *testing.T) {
	o, db, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	req, err := o.RequestTermination(ctx, tenant, c.ID, validReason, testNow.AddDate(0, 1, 0))
	require.NoError(t, err)

	require.NoError(t, memContracts{db}.ApplyTransition(ctx, c.ID, model.StatusFullySigned, model.StatusActive))

	got, err := o.RespondModification(ctx, landlord, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.ModificationApproved, got.Status)

	cGot, err := o.GetContract(ctx, landlord, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTerminated, cGot.Status)
}
