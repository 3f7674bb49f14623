package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pnj-dev/facility-booking/internal/repository"
)

// DashboardHandler serves the per-role landing page summary.
type DashboardHandler struct {
	Dashboard *repository.DashboardRepo
}

func NewDashboardHandler(d *repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{Dashboard: d}
}

// Summary returns request counters, unread notifications, upcoming
// schedules and the head of the caller's work queue.
func (h *DashboardHandler) Summary(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Dashboard.Summarize(ctx, uid, getRole(c), time.Now().UTC())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
