package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type decisionBody struct {
	Status          string  `json:"status"` // "approved" or "rejected"
	AdminNotes      *string `json:"admin_notes"`
	RejectionReason *string `json:"rejection_reason"`
}

// Decide records admin1's verdict on a pending request. The route is
// already gated to admin1, and the engine re-checks the actor's role
// from the database before flipping the status.
func (h *RequestHandler) Decide(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body decisionBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	r, err := h.Engine.Decide(ctx, uid, id, body.Status, body.AdminNotes, body.RejectionReason)
	if err != nil {
		return writeDomainError(c, err)
	}
	h.publish(c, r, uid, nil)
	return c.JSON(http.StatusOK, r)
}
