package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnj-dev/facility-booking/internal/authz"
	"github.com/pnj-dev/facility-booking/internal/model"
)

// Require gates a route on the authz policy table. It assumes JWTAuth
// ran earlier and stored the role claim; a missing or unknown role is
// denied. Handlers still re-check ownership and, for state transitions,
// the lifecycle engine re-checks the role from the database.
func Require(action authz.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if !authz.Allowed(model.Role(role), action) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
