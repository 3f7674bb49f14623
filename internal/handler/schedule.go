package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnj-dev/facility-booking/internal/lifecycle"
	"github.com/pnj-dev/facility-booking/internal/model"
	"github.com/pnj-dev/facility-booking/internal/repository"
	"github.com/pnj-dev/facility-booking/internal/service"
)

// ScheduleHandler serves the calendar endpoints. Creating, editing and
// deleting go through the lifecycle engine because they flip the owning
// request's status; listing goes through the schedule repository.
type ScheduleHandler struct {
	Engine    *lifecycle.Engine
	Schedules *repository.ScheduleRepo
	Requests  *repository.RequestRepo
	Events    *service.Publisher
}

func NewScheduleHandler(e *lifecycle.Engine, s *repository.ScheduleRepo, r *repository.RequestRepo, ev *service.Publisher) *ScheduleHandler {
	return &ScheduleHandler{Engine: e, Schedules: s, Requests: r, Events: ev}
}

type scheduleBody struct {
	Title         string  `json:"title"`
	ScheduledDate string  `json:"scheduled_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Notes         *string `json:"notes"`
}

func (b scheduleBody) input() lifecycle.ScheduleInput {
	return lifecycle.ScheduleInput{
		Title:         b.Title,
		ScheduledDate: b.ScheduledDate,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Notes:         b.Notes,
	}
}

func (h *ScheduleHandler) publishFor(c echo.Context, requestID, actorID uint64, scheduleID *uint64) {
	if h.Events == nil {
		return
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Requests.GetByID(ctx, requestID)
	if err != nil {
		return
	}
	publishLifecycle(c, h.Events, &d.BorrowingRequest, actorID, scheduleID)
}

// Create attaches a schedule to an approved request.
func (h *ScheduleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body scheduleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Engine.CreateSchedule(ctx, uid, requestID, body.input())
	if err != nil {
		return writeDomainError(c, err)
	}
	h.publishFor(c, requestID, uid, &s.ID)
	return c.JSON(http.StatusCreated, s)
}

// List returns schedules visible to the caller. Users see only
// schedules of their own requests; admins see all.
func (h *ScheduleHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.ScheduleFilter{
		BuildingID: queryID(c, "building_id"),
		From:       c.QueryParam("from"),
		To:         c.QueryParam("to"),
		Search:     c.QueryParam("search"),
		Page:       queryInt(c, "page", 1),
		PerPage:    queryInt(c, "per_page", 10),
	}
	if getRole(c) == model.RoleUser {
		f.OwnerID = uid
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Schedules.List(ctx, f)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": pageMeta{Page: f.Page, PerPage: f.PerPage, Total: total},
	})
}

// Get returns one schedule.
func (h *ScheduleHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Schedules.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	if getRole(c) == model.RoleUser {
		req, err := h.Requests.GetByID(ctx, d.BorrowingRequestID)
		if err != nil {
			return writeDomainError(c, err)
		}
		if req.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return c.JSON(http.StatusOK, d)
}

// Update edits a schedule and notifies the requester.
func (h *ScheduleHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body scheduleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Engine.UpdateSchedule(ctx, uid, id, body.input())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete removes a schedule; the owning request becomes approved again
// and can be rescheduled. No notification is sent.
func (h *ScheduleHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	// capture the owning request before the row disappears
	var requestID uint64
	if d, err := h.Schedules.GetByID(ctx, id); err == nil {
		requestID = d.BorrowingRequestID
	}

	if err := h.Engine.DeleteSchedule(ctx, uid, id); err != nil {
		return writeDomainError(c, err)
	}
	if requestID != 0 {
		h.publishFor(c, requestID, uid, nil)
	}
	return c.NoContent(http.StatusNoContent)
}
