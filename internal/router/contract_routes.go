package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-lifecycle/internal/handler"
	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
	"github.com/iliyamo/rental-lifecycle/internal/middleware"
)

// RegisterContracts registers the contract lifecycle endpoints under
// /v1. Every route requires a valid JWT; role enforcement beyond
// tenant/landlord/admin membership happens in the orchestrator, which
// knows which party a contract belongs to.
func RegisterContracts(e *echo.Echo, h *handler.ContractHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(
			string(lifecycle.RoleTenant),
			string(lifecycle.RoleLandlord),
			string(lifecycle.RoleAdmin),
		),
	)

	// Contract CRUD and signature flow.
	g.POST("/contracts", h.Create)
	g.GET("/contracts", h.List)
	g.GET("/contracts/:id", h.Get)
	g.POST("/contracts/:id/send", h.Send)
	g.POST("/contracts/:id/sign", h.Sign)
	g.DELETE("/contracts/:id", h.Delete)

	// Payments: deposit strictly before first rent.
	g.POST("/contracts/:id/payments/deposit/intent", h.DepositIntent)
	g.POST("/contracts/:id/payments/deposit/confirm", h.DepositConfirm)
	g.POST("/contracts/:id/payments/rent/intent", h.RentIntent)
	g.POST("/contracts/:id/payments/rent/confirm", h.RentConfirm)

	// Key handover scheduling.
	g.POST("/contracts/:id/key-collection", h.ProposeKeys)
	g.GET("/contracts/:id/key-collection", h.GetKeys)
	g.POST("/contracts/:id/key-collection/confirm", h.ConfirmKeys)
	g.POST("/contracts/:id/key-collection/complete", h.CompleteKeys)

	// Move-in checklist.
	g.POST("/contracts/:id/checklist", h.CreateChecklist)
	g.GET("/contracts/:id/checklist", h.GetChecklist)
	g.PUT("/checklists/:id/items", h.UpdateChecklistItems)
	g.POST("/checklists/:id/sign", h.SignChecklist)

	// Termination and amendment workflow.
	g.POST("/contracts/:id/termination", h.RequestTermination)
	g.POST("/contracts/:id/amendment", h.RequestAmendment)
	g.GET("/contracts/:id/modifications", h.ListModifications)
	g.POST("/modifications/:id/respond", h.RespondModification)
}
