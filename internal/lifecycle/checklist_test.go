package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

func TestCreateChecklist(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	t.Run("requires executed contract", func(t *testing.T) {
		c := newContract(t, o)
		_, err := o.CreateChecklist(ctx, tenant, c.ID, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("default template", func(t *testing.T) {
		c := signedContract(t, o)
		cl, err := o.CreateChecklist(ctx, tenant, c.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, model.ChecklistDraft, cl.Status)
		require.Len(t, cl.Rooms, 4)
		assert.Equal(t, "Living room", cl.Rooms[0].Name)

		got, err := o.GetContract(ctx, tenant, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ChecklistID)
		assert.Equal(t, cl.ID, *got.ChecklistID)
		require.NotNil(t, got.ChecklistDeadline)
		// Deadline: 14 days after move-in (start date is in the future).
		assert.Equal(t, got.StartDate.AddDate(0, 0, 14), *got.ChecklistDeadline)
	})
}

func TestCreateChecklistIdempotent(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	first, err := o.CreateChecklist(ctx, tenant, c.ID, nil)
	require.NoError(t, err)

	again, err := o.CreateChecklist(ctx, landlord, c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestChecklistCustomRoomsValidated(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()
	c := signedContract(t, o)

	t.Run("unknown condition rejected", func(t *testing.T) {
		rooms := []model.ChecklistRoom{{
			Name:  "Studio",
			Items: []model.ChecklistItem{{Name: "Floor", Condition: "SHINY"}},
		}}
		_, err := o.CreateChecklist(ctx, tenant, c.ID, rooms)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("valid custom rooms accepted", func(t *testing.T) {
		rooms := []model.ChecklistRoom{{
			Name: "Studio",
			Items: []model.ChecklistItem{
				{Name: "Floor", Condition: model.ConditionFair, Notes: "scratches near window"},
				{Name: "Walls", Condition: model.ConditionGood},
			},
		}}
		cl, err := o.CreateChecklist(ctx, tenant, c.ID, rooms)
		require.NoError(t, err)
		require.Len(t, cl.Rooms, 1)
		assert.Equal(t, "scratches near window", cl.Rooms[0].Items[0].Notes)
	})
}

func TestChecklistSignOrdering(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	cl, err := o.CreateChecklist(ctx, tenant, c.ID, nil)
	require.NoError(t, err)

	t.Run("landlord cannot sign first", func(t *testing.T) {
		_, err := o.SignChecklist(ctx, landlord, cl.ID, "sig/l.png")
		assert.ErrorIs(t, err, ErrOutOfOrder)
	})

	t.Run("stranger cannot sign", func(t *testing.T) {
		_, err := o.SignChecklist(ctx, stranger, cl.ID, "sig/x.png")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("tenant signs and freezes items", func(t *testing.T) {
		got, err := o.SignChecklist(ctx, tenant, cl.ID, "sig/t.png")
		require.NoError(t, err)
		assert.Equal(t, model.ChecklistTenantSigned, got.Status)
	})

	t.Run("edits after tenant signature rejected", func(t *testing.T) {
		_, err := o.UpdateChecklistItems(ctx, landlord, cl.ID, defaultChecklistRooms())
		assert.ErrorIs(t, err, ErrChecklistFrozen)
	})

	t.Run("tenant cannot sign twice", func(t *testing.T) {
		_, err := o.SignChecklist(ctx, tenant, cl.ID, "sig/t2.png")
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})

	t.Run("landlord completes", func(t *testing.T) {
		got, err := o.SignChecklist(ctx, landlord, cl.ID, "sig/l.png")
		require.NoError(t, err)
		assert.Equal(t, model.ChecklistCompleted, got.Status)
		require.NotNil(t, got.LandlordSignature)
	})

	t.Run("landlord cannot sign twice", func(t *testing.T) {
		_, err := o.SignChecklist(ctx, landlord, cl.ID, "sig/l2.png")
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})
}

func TestUpdateChecklistItemsWhileDraft(t *testing.T) {
	o, _, _ := newTestEnv(t)
	ctx := context.Background()

	c := signedContract(t, o)
	cl, err := o.CreateChecklist(ctx, tenant, c.ID, nil)
	require.NoError(t, err)

	rooms := []model.ChecklistRoom{{
		Name: "Hallway",
		Items: []model.ChecklistItem{
			{Name: "Door", Condition: model.ConditionPoor, PhotoRefs: []string{"photos/door.jpg"}},
		},
	}}
	got, err := o.UpdateChecklistItems(ctx, tenant, cl.ID, rooms)
	require.NoError(t, err)
	require.Len(t, got.Rooms, 1)
	assert.Equal(t, "Hallway", got.Rooms[0].Name)

	t.Run("empty replacement rejected", func(t *testing.T) {
		_, err := o.UpdateChecklistItems(ctx, tenant, cl.ID, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
