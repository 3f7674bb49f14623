package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnj-dev/facility-booking/internal/model"
	"github.com/pnj-dev/facility-booking/internal/repository"
)

// BuildingHandler serves the public building catalogue. These routes
// sit behind the response cache: the catalogue changes rarely and is
// read by every visitor deciding what to book.
type BuildingHandler struct {
	Buildings *repository.BuildingRepo
}

func NewBuildingHandler(b *repository.BuildingRepo) *BuildingHandler {
	return &BuildingHandler{Buildings: b}
}

// List returns buildings, optionally filtered by status or name.
func (h *BuildingHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Buildings.List(ctx,
		model.BuildingStatus(c.QueryParam("status")), c.QueryParam("search"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// Get returns one building.
func (h *BuildingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	b, err := h.Buildings.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
