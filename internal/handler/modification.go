package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type terminationReq struct {
	Reason         string    `json:"reason"`
	DesiredEndDate time.Time `json:"desired_end_date"`
}

// RequestTermination files an early-termination request against an
// executed contract.
func (h *ContractHandler) RequestTermination(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req terminationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	mr, err := h.Lifecycle.RequestTermination(ctx, actor, id, req.Reason, req.DesiredEndDate)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, mr)
}

type amendmentReq struct {
	Reason  string `json:"reason"`
	Changes string `json:"changes"`
}

// RequestAmendment files an amendment request against an executed
// contract.
func (h *ContractHandler) RequestAmendment(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req amendmentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	mr, err := h.Lifecycle.RequestAmendment(ctx, actor, id, req.Reason, req.Changes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, mr)
}

// ListModifications returns the contract's modification history, newest
// first.
func (h *ContractHandler) ListModifications(c echo.Context) error {
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

	mods, err := h.Lifecycle.ListModifications(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"modifications": mods})
}

type respondModificationReq struct {
	Approve bool `json:"approve"`
}

// RespondModification lets the counter-party approve or reject a
// pending request. Approving a termination terminates the contract.
func (h *ContractHandler) RespondModification(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid modification id")
	}
	var req respondModificationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	mr, err := h.Lifecycle.RespondModification(ctx, actor, id, req.Approve)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, mr)
}
