package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

type proposeKeysReq struct {
	Slots []model.KeySlot `json:"slots"`
}

// ProposeKeys files a new set of handover time slots, superseding any
// earlier unconfirmed proposal.
func (h *ContractHandler) ProposeKeys(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req proposeKeysReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	kc, err := h.Lifecycle.ProposeKeyCollection(ctx, actor, id, req.Slots)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, kc)
}

// GetKeys returns the live key collection for a contract.
func (h *ContractHandler) GetKeys(c echo.Context) error {
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

	kc, err := h.Lifecycle.GetKeyCollection(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, kc)
}

type confirmKeysReq struct {
	Slot int `json:"slot"`
}

// ConfirmKeys lets the counter-party pick one of the proposed slots.
func (h *ContractHandler) ConfirmKeys(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req confirmKeysReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	kc, err := h.Lifecycle.ConfirmKeyCollection(ctx, actor, id, req.Slot)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, kc)
}

// CompleteKeys marks the handover as done and the keys as collected.
func (h *ContractHandler) CompleteKeys(c echo.Context) error {
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

	kc, err := h.Lifecycle.CompleteKeyCollection(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, kc)
}
