// Package handler defines the HTTP handlers.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pnj-dev/facility-booking/internal/lifecycle"
	"github.com/pnj-dev/facility-booking/internal/middleware"
	"github.com/pnj-dev/facility-booking/internal/model"
)

// getUserID extracts the authenticated user's id placed in context by
// the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.CtxUserID).(uint64); ok && id > 0 {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim from context.
func getRole(c echo.Context) model.Role {
	role, _ := c.Get(middleware.CtxRole).(string)
	return model.Role(role)
}

// dbCtx bounds a request's database work.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// writeDomainError maps lifecycle and repository errors onto HTTP
// responses: validation 422, forbidden 403, conflict 409, not found
// 404. Anything else is an internal error.
func writeDomainError(c echo.Context, err error) error {
	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.Is(err, lifecycle.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, lifecycle.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses the named path parameter as an id.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// queryInt returns an integer query parameter or the default.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// queryID returns an id query parameter or zero.
func queryID(c echo.Context, name string) uint64 {
	n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return n
}

// pageMeta is the pagination envelope used by list endpoints.
type pageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}
