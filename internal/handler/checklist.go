package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

type checklistRoomsReq struct {
	Rooms []model.ChecklistRoom `json:"rooms"`
}

// CreateChecklist creates the move-in checklist for a contract. An
// empty rooms payload falls back to the standard room template. Calling
// it again returns the existing checklist.
func (h *ContractHandler) CreateChecklist(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req checklistRoomsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cl, err := h.Lifecycle.CreateChecklist(ctx, actor, id, req.Rooms)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

// GetChecklist returns the contract's move-in checklist.
func (h *ContractHandler) GetChecklist(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cl, err := h.Lifecycle.GetChecklist(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

// UpdateChecklistItems replaces the room/item content while the
// checklist is still a draft.
func (h *ContractHandler) UpdateChecklistItems(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid checklist id")
	}
	var req checklistRoomsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cl, err := h.Lifecycle.UpdateChecklistItems(ctx, actor, id, req.Rooms)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

// SignChecklist records a checklist signature: the tenant first, then
// the landlord to complete it.
func (h *ContractHandler) SignChecklist(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid checklist id")
	}
	var req signReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cl, err := h.Lifecycle.SignChecklist(ctx, actor, id, req.SignatureRef)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}
