package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnj-dev/facility-booking/internal/repository"
)

// NotificationHandler serves a user's notification feed. Every route
// is scoped to the authenticated user; there is no way to read or
// acknowledge someone else's notifications.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's notifications, newest first. ?unread=true
// restricts to unread ones.
func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)
	unreadOnly := c.QueryParam("unread") == "true"

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Notifications.ListByUser(ctx, uid, unreadOnly, page, perPage)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// UnreadCount returns how many unread notifications the caller has.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, uid)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkRead acknowledges one notification.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
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

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead acknowledges everything and reports how many rows
// changed.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": n})
}

// Recent returns the newest few notifications for the header dropdown.
func (h *NotificationHandler) Recent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Notifications.Recent(ctx, uid, queryInt(c, "limit", 5))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
