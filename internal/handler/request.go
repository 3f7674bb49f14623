package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pnj-dev/facility-booking/internal/lifecycle"
	"github.com/pnj-dev/facility-booking/internal/model"
	"github.com/pnj-dev/facility-booking/internal/queue"
	"github.com/pnj-dev/facility-booking/internal/repository"
	"github.com/pnj-dev/facility-booking/internal/service"
	"github.com/pnj-dev/facility-booking/internal/storage"
)

// RequestHandler serves the borrowing-request endpoints. Transitions go
// through the lifecycle engine; reads go through the request
// repository. Attachments follow store-then-reference: the PDF is
// written to the blob store first and only its key enters the engine,
// so a failed transition leaves at worst an orphan file, which the
// handler removes best-effort.
type RequestHandler struct {
	Engine    *lifecycle.Engine
	Requests  *repository.RequestRepo
	Blobs     *storage.BlobStore
	Events    *service.Publisher
	MaxUpload int64
	Log       *zap.Logger
}

func NewRequestHandler(e *lifecycle.Engine, r *repository.RequestRepo, b *storage.BlobStore, ev *service.Publisher, maxUpload int64, log *zap.Logger) *RequestHandler {
	return &RequestHandler{Engine: e, Requests: r, Blobs: b, Events: ev, MaxUpload: maxUpload, Log: log}
}

type requestBody struct {
	BuildingID           uint64  `json:"building_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Organization         string  `json:"organization"`
	ContactPerson        string  `json:"contact_person"`
	ContactPhone         string  `json:"contact_phone"`
	RequestDate          string  `json:"request_date"`
	StartTime            string  `json:"start_time"`
	EndTime              string  `json:"end_time"`
	ExpectedParticipants uint32  `json:"expected_participants"`
	EquipmentNeeded      *string `json:"equipment_needed"`
}

// bindRequestInput accepts the same fields as JSON or as a multipart
// form (the latter is how the PDF attachment arrives).
func bindRequestInput(c echo.Context) (lifecycle.RequestInput, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		buildingID, _ := strconv.ParseUint(c.FormValue("building_id"), 10, 64)
		participants, _ := strconv.ParseUint(c.FormValue("expected_participants"), 10, 32)
		in := lifecycle.RequestInput{
			BuildingID:           buildingID,
			Title:                c.FormValue("title"),
			Description:          c.FormValue("description"),
			Organization:         c.FormValue("organization"),
			ContactPerson:        c.FormValue("contact_person"),
			ContactPhone:         c.FormValue("contact_phone"),
			RequestDate:          c.FormValue("request_date"),
			StartTime:            c.FormValue("start_time"),
			EndTime:              c.FormValue("end_time"),
			ExpectedParticipants: uint32(participants),
		}
		if v := c.FormValue("equipment_needed"); v != "" {
			in.EquipmentNeeded = &v
		}
		return in, nil
	}
	var body requestBody
	if err := c.Bind(&body); err != nil {
		return lifecycle.RequestInput{}, err
	}
	return lifecycle.RequestInput{
		BuildingID:           body.BuildingID,
		Title:                body.Title,
		Description:          body.Description,
		Organization:         body.Organization,
		ContactPerson:        body.ContactPerson,
		ContactPhone:         body.ContactPhone,
		RequestDate:          body.RequestDate,
		StartTime:            body.StartTime,
		EndTime:              body.EndTime,
		ExpectedParticipants: body.ExpectedParticipants,
		EquipmentNeeded:      body.EquipmentNeeded,
	}, nil
}

// saveAttachment stores an uploaded PDF, if any, and returns its blob
// key. No file is not an error.
func (h *RequestHandler) saveAttachment(c echo.Context) (*string, error) {
	fh, err := c.FormFile("pdf_attachment")
	if err != nil {
		return nil, nil
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "attachment must be a PDF")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	key, err := h.Blobs.SavePDF(src, h.MaxUpload)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "attachment rejected")
	}
	return &key, nil
}

// dropBlob removes a blob best-effort.
func (h *RequestHandler) dropBlob(key *string) {
	if key == nil {
		return
	}
	if err := h.Blobs.Delete(*key); err != nil {
		h.Log.Warn("blob cleanup failed", zap.String("key", *key), zap.Error(err))
	}
}

func (h *RequestHandler) publish(c echo.Context, r *model.BorrowingRequest, actorID uint64, scheduleID *uint64) {
	publishLifecycle(c, h.Events, r, actorID, scheduleID)
}

// publishLifecycle emits a broker event for a committed transition.
// Best-effort: a broker outage never fails the request.
func publishLifecycle(c echo.Context, events *service.Publisher, r *model.BorrowingRequest, actorID uint64, scheduleID *uint64) {
	if events == nil {
		return
	}
	_ = events.PublishLifecycle(c.Request().Context(), queue.RequestLifecycleEvent{
		RequestID:  r.ID,
		UserID:     r.UserID,
		BuildingID: r.BuildingID,
		Title:      r.Title,
		Status:     string(r.Status),
		ActorID:    actorID,
		ScheduleID: scheduleID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Create submits a new borrowing request.
func (h *RequestHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	in, err := bindRequestInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	blobKey, err := h.saveAttachment(c)
	if err != nil {
		return err
	}
	in.PDFAttachment = blobKey

	ctx, cancel := dbCtx(c)
	defer cancel()

	r, err := h.Engine.CreateRequest(ctx, uid, in)
	if err != nil {
		h.dropBlob(blobKey)
		return writeDomainError(c, err)
	}
	h.publish(c, r, uid, nil)
	return c.JSON(http.StatusCreated, r)
}

// List returns requests visible to the caller, filtered and paginated.
// Admins see everything; users only their own.
func (h *RequestHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.RequestFilter{
		Status:     model.RequestStatus(c.QueryParam("status")),
		BuildingID: queryID(c, "building_id"),
		Search:     c.QueryParam("search"),
		Page:       queryInt(c, "page", 1),
		PerPage:    queryInt(c, "per_page", 10),
	}
	if getRole(c) == model.RoleUser {
		f.OwnerID = uid
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Requests.List(ctx, f)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": pageMeta{Page: f.Page, PerPage: f.PerPage, Total: total},
	})
}

// Get returns one request. Users may only read their own.
func (h *RequestHandler) Get(c echo.Context) error {
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

	d, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	if getRole(c) == model.RoleUser && d.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, d)
}

// Update edits a pending request owned by the caller.
func (h *RequestHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	in, err := bindRequestInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	blobKey, err := h.saveAttachment(c)
	if err != nil {
		return err
	}
	in.PDFAttachment = blobKey

	ctx, cancel := dbCtx(c)
	defer cancel()

	replaced, err := h.Engine.UpdateRequest(ctx, uid, id, in)
	if err != nil {
		h.dropBlob(blobKey)
		return writeDomainError(c, err)
	}
	// the old attachment is unreferenced once the update committed
	h.dropBlob(replaced)

	d, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Delete removes a pending request owned by the caller.
func (h *RequestHandler) Delete(c echo.Context) error {
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

	attachment, err := h.Engine.DeleteRequest(ctx, uid, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	h.dropBlob(attachment)
	return c.NoContent(http.StatusNoContent)
}

// Attachment streams the request's PDF. Same visibility rule as Get.
func (h *RequestHandler) Attachment(c echo.Context) error {
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

	d, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	if getRole(c) == model.RoleUser && d.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if d.PDFAttachment == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no attachment"})
	}
	f, err := h.Blobs.Open(*d.PDFAttachment)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "attachment missing"})
	}
	defer f.Close()
	return c.Stream(http.StatusOK, "application/pdf", f)
}
