package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
)

// ContractHandler exposes the contract lifecycle over HTTP. Every
// method resolves the acting identity, calls the orchestrator and maps
// the outcome; it holds no business rules of its own.
type ContractHandler struct {
	Lifecycle *lifecycle.Orchestrator
}

// NewContractHandler constructs a ContractHandler and panics on a nil
// orchestrator.
func NewContractHandler(o *lifecycle.Orchestrator) *ContractHandler {
	if o == nil {
		panic("nil orchestrator passed to NewContractHandler")
	}
	return &ContractHandler{Lifecycle: o}
}

const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// Create builds a draft contract owned by the acting landlord.
func (h *ContractHandler) Create(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	var draft lifecycle.ContractDraft
	if err := c.Bind(&draft); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	contract, err := h.Lifecycle.CreateContract(ctx, actor, draft)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, contract)
}

// List returns the caller's contracts, newest first.
func (h *ContractHandler) List(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	contracts, err := h.Lifecycle.ListContracts(ctx, actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"contracts": contracts})
}

// Get fetches one contract the caller is allowed to see.
func (h *ContractHandler) Get(c echo.Context) error {
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

	contract, err := h.Lifecycle.GetContract(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contract)
}

// Send moves a draft to the tenant for signature.
func (h *ContractHandler) Send(c echo.Context) error {
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

	contract, err := h.Lifecycle.SendToTenant(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contract)
}

type signReq struct {
	SignatureRef string `json:"signature_ref"`
}

// Sign records the caller's signature and advances the contract.
func (h *ContractHandler) Sign(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req signReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	contract, err := h.Lifecycle.Sign(ctx, actor, id, req.SignatureRef)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contract)
}

// Delete removes a contract that was never countersigned.
func (h *ContractHandler) Delete(c echo.Context) error {
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

	if err := h.Lifecycle.DeleteContract(ctx, actor, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
