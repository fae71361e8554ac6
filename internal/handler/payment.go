package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type confirmPaymentReq struct {
	ProviderRef string `json:"provider_ref"`
}

// DepositIntent starts a deposit payment and returns the provider
// client secret the frontend completes the charge with.
func (h *ContractHandler) DepositIntent(c echo.Context) error {
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

	secret, err := h.Lifecycle.CreateDepositIntent(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"client_secret": secret})
}

// DepositConfirm records a completed deposit payment.
func (h *ContractHandler) DepositConfirm(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ProviderRef) == "" {
		return badRequest(c, "provider_ref required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	contract, err := h.Lifecycle.ConfirmDepositPayment(ctx, actor, id, strings.TrimSpace(req.ProviderRef))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contract)
}

// RentIntent starts the first-month rent payment. Rejected until the
// deposit is in.
func (h *ContractHandler) RentIntent(c echo.Context) error {
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

	secret, err := h.Lifecycle.CreateRentIntent(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"client_secret": secret})
}

// RentConfirm records a completed first-month rent payment.
func (h *ContractHandler) RentConfirm(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid contract id")
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ProviderRef) == "" {
		return badRequest(c, "provider_ref required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	contract, err := h.Lifecycle.ConfirmRentPayment(ctx, actor, id, strings.TrimSpace(req.ProviderRef))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, contract)
}
