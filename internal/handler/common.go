// Package handler contains the HTTP adapters. Handlers bind request
// bodies, build the acting identity from the JWT claims and translate
// lifecycle errors into HTTP responses; all business rules live in the
// lifecycle package.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
)

// currentActor builds the acting identity from the claims JWTAuth
// stored in the context.
func currentActor(c echo.Context) (lifecycle.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return lifecycle.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	if !lifecycle.ValidUserRole(role) {
		return lifecycle.Actor{}, errors.New("invalid role in context")
	}
	return lifecycle.Actor{ID: id, Role: lifecycle.Role(role)}, nil
}

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as an unsigned id.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// fail translates a lifecycle error into the matching HTTP response.
// Conflicts caused by a concurrent writer additionally carry
// "retryable": true so clients know a plain retry may succeed.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, lifecycle.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, lifecycle.ErrConcurrentModification):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting update, retry", "retryable": true})
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrAlreadySigned),
		errors.Is(err, lifecycle.ErrChecklistFrozen),
		errors.Is(err, lifecycle.ErrOutOfOrder),
		errors.Is(err, lifecycle.ErrDuplicatePending):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrPaymentMismatch),
		errors.Is(err, lifecycle.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("handler: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// badRequest is the uniform reply for malformed bodies or parameters.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// unauthorized is returned when the context carries no usable identity.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
