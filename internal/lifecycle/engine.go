package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pnj-dev/facility-booking/internal/authz"
	"github.com/pnj-dev/facility-booking/internal/model"
	"github.com/pnj-dev/facility-booking/internal/notify"
)

const dateLayout = "2006-01-02"

// Engine drives every borrowing-request transition. It owns no state of
// its own: each operation opens one Store transaction, re-reads the
// affected rows under lock, checks the guards, applies the change and
// writes the notification rows before committing.
type Engine struct {
	store Store
	clock Clock
}

// NewEngine builds an Engine over the given store. A nil clock defaults
// to the system clock.
func NewEngine(store Store, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{store: store, clock: clock}
}

// RequestInput carries the user-editable fields of a borrowing request.
// Dates arrive as "2006-01-02" strings and times as "HH:MM" strings,
// exactly as the HTTP layer receives them; the engine parses and
// validates them itself so every caller gets the same checks.
type RequestInput struct {
	BuildingID           uint64
	Title                string
	Description          string
	Organization         string
	ContactPerson        string
	ContactPhone         string
	RequestDate          string
	StartTime            string
	EndTime              string
	ExpectedParticipants uint32
	EquipmentNeeded      *string

	// PDFAttachment is a blob-store reference. On create it is stored
	// as-is. On update a nil value keeps the existing attachment and a
	// non-nil value replaces it.
	PDFAttachment *string
}

// ScheduleInput carries the fields of a calendar entry.
type ScheduleInput struct {
	Title         string
	ScheduledDate string
	StartTime     string
	EndTime       string
	Notes         *string
}

// Decision outcomes accepted by Decide.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// CreateRequest validates the input, inserts a new pending request owned
// by actorID and broadcasts a notification to every admin1 user. It
// returns the created request.
func (e *Engine) CreateRequest(ctx context.Context, actorID uint64, in RequestInput) (*model.BorrowingRequest, error) {
	v, reqDate := e.validateRequestInput(in)
	if err := v.err(); err != nil {
		return nil, err
	}

	var created *model.BorrowingRequest
	err := e.store.InTx(ctx, func(tx Tx) error {
		actor, err := tx.UserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !authz.Allowed(actor.Role, authz.ActionCreateRequest) {
			return ErrForbidden
		}
		if err := checkBuilding(ctx, tx, in.BuildingID); err != nil {
			return err
		}

		r := &model.BorrowingRequest{
			UserID:               actorID,
			BuildingID:           in.BuildingID,
			Title:                in.Title,
			Description:          in.Description,
			Organization:         in.Organization,
			ContactPerson:        in.ContactPerson,
			ContactPhone:         in.ContactPhone,
			RequestDate:          reqDate,
			StartTime:            in.StartTime,
			EndTime:              in.EndTime,
			ExpectedParticipants: in.ExpectedParticipants,
			EquipmentNeeded:      in.EquipmentNeeded,
			PDFAttachment:        in.PDFAttachment,
			Status:               model.RequestPending,
		}
		if err := tx.InsertRequest(ctx, r); err != nil {
			return err
		}

		_, err = notify.Broadcast(ctx, tx, model.RoleAdmin1, model.NotifyRequestStatus,
			"New Borrowing Request",
			fmt.Sprintf("New request %q from %s needs review.", r.Title, r.Organization),
			map[string]any{"request_id": r.ID})
		if err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateRequest replaces the user-editable fields of a request. Only the
// owner may update, and only while the request is still pending; any
// other combination is ErrForbidden so a non-owner cannot distinguish
// "not yours" from "too late". If the attachment was replaced the
// previous blob reference is returned so the caller can delete the blob
// after commit.
func (e *Engine) UpdateRequest(ctx context.Context, actorID, requestID uint64, in RequestInput) (replaced *string, err error) {
	v, reqDate := e.validateRequestInput(in)
	if err := v.err(); err != nil {
		return nil, err
	}

	err = e.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.UserID != actorID || r.Status != model.RequestPending {
			return ErrForbidden
		}
		if err := checkBuilding(ctx, tx, in.BuildingID); err != nil {
			return err
		}

		r.BuildingID = in.BuildingID
		r.Title = in.Title
		r.Description = in.Description
		r.Organization = in.Organization
		r.ContactPerson = in.ContactPerson
		r.ContactPhone = in.ContactPhone
		r.RequestDate = reqDate
		r.StartTime = in.StartTime
		r.EndTime = in.EndTime
		r.ExpectedParticipants = in.ExpectedParticipants
		r.EquipmentNeeded = in.EquipmentNeeded
		if in.PDFAttachment != nil {
			if r.PDFAttachment != nil && *r.PDFAttachment != *in.PDFAttachment {
				replaced = r.PDFAttachment
			}
			r.PDFAttachment = in.PDFAttachment
		}
		return tx.UpdateRequest(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

// DeleteRequest removes a request. Only the owner may delete, and only
// while the request is still pending. The attachment blob reference (if
// any) is returned so the caller can delete the blob after commit.
func (e *Engine) DeleteRequest(ctx context.Context, actorID, requestID uint64) (attachment *string, err error) {
	err = e.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.UserID != actorID || r.Status != model.RequestPending {
			return ErrForbidden
		}
		attachment = r.PDFAttachment
		return tx.DeleteRequest(ctx, requestID)
	})
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

// Decide records admin1's verdict on a pending request. decision must be
// "approved" or "rejected"; rejecting requires a non-empty reason. The
// requester is always notified of the outcome, and an approval
// additionally broadcasts to admin2 so someone picks the request up for
// scheduling. Deciding a request that is no longer pending is
// ErrConflict, which is also what a losing concurrent decider sees.
func (e *Engine) Decide(ctx context.Context, actorID, requestID uint64, decision string, adminNotes, rejectionReason *string) (*model.BorrowingRequest, error) {
	var v validator
	to := model.RequestStatus(decision)
	switch to {
	case model.RequestApproved, model.RequestRejected:
	default:
		v.add("status", "status must be approved or rejected")
	}
	if to == model.RequestRejected && (rejectionReason == nil || strings.TrimSpace(*rejectionReason) == "") {
		v.add("rejection_reason", "rejection reason is required when rejecting")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var decided *model.BorrowingRequest
	err := e.store.InTx(ctx, func(tx Tx) error {
		actor, err := tx.UserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !authz.Allowed(actor.Role, authz.ActionDecideRequest) {
			return ErrForbidden
		}
		r, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.Status != model.RequestPending {
			return ErrConflict
		}

		now := e.clock.Now()
		d := &Decision{ApprovedBy: actorID, ApprovedAt: now, AdminNotes: adminNotes}
		if to == model.RequestRejected {
			d.RejectionReason = rejectionReason
		}
		changed, err := tx.SetRequestStatus(ctx, requestID, model.RequestPending, to, d)
		if err != nil {
			return err
		}
		if !changed {
			return ErrConflict
		}

		data := map[string]any{"request_id": r.ID, "status": string(to)}
		if to == model.RequestApproved {
			if err := notify.ToUser(ctx, tx, r.UserID, model.NotifyRequestStatus,
				"Request Approved",
				fmt.Sprintf("Your request %q has been approved.", r.Title), data); err != nil {
				return err
			}
			if _, err := notify.Broadcast(ctx, tx, model.RoleAdmin2, model.NotifyScheduleUpdate,
				"Request Needs Scheduling",
				fmt.Sprintf("Approved request %q is waiting to be scheduled.", r.Title),
				map[string]any{"request_id": r.ID}); err != nil {
				return err
			}
		} else {
			if err := notify.ToUser(ctx, tx, r.UserID, model.NotifyRequestStatus,
				"Request Rejected",
				fmt.Sprintf("Your request %q has been rejected. Reason: %s", r.Title, *rejectionReason), data); err != nil {
				return err
			}
		}

		r.Status = to
		r.AdminNotes = adminNotes
		r.ApprovedBy = &actorID
		r.ApprovedAt = &now
		if to == model.RequestRejected {
			r.RejectionReason = rejectionReason
		}
		decided = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// CreateSchedule attaches a calendar entry to an approved request and
// moves the request to scheduled in the same transaction. The building
// is copied from the request, never taken from input. A request that is
// not approved, or that already has a schedule, is ErrConflict.
func (e *Engine) CreateSchedule(ctx context.Context, actorID, requestID uint64, in ScheduleInput) (*model.Schedule, error) {
	v, schedDate := validateScheduleInput(in)
	if err := v.err(); err != nil {
		return nil, err
	}

	var created *model.Schedule
	err := e.store.InTx(ctx, func(tx Tx) error {
		actor, err := tx.UserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !authz.Allowed(actor.Role, authz.ActionCreateSchedule) {
			return ErrForbidden
		}
		r, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.Status != model.RequestApproved {
			return ErrConflict
		}
		if existing, err := tx.ScheduleByRequest(ctx, requestID); err == nil && existing != nil {
			return ErrConflict
		} else if err != nil && err != ErrNotFound {
			return err
		}

		s := &model.Schedule{
			BorrowingRequestID: requestID,
			BuildingID:         r.BuildingID,
			Title:              in.Title,
			ScheduledDate:      schedDate,
			StartTime:          in.StartTime,
			EndTime:            in.EndTime,
			Notes:              in.Notes,
			CreatedBy:          actorID,
		}
		if err := tx.InsertSchedule(ctx, s); err != nil {
			return err
		}
		changed, err := tx.SetRequestStatus(ctx, requestID, model.RequestApproved, model.RequestScheduled, nil)
		if err != nil {
			return err
		}
		if !changed {
			return ErrConflict
		}

		if err := notify.ToUser(ctx, tx, r.UserID, model.NotifyScheduleUpdate,
			"Request Scheduled",
			fmt.Sprintf("Your request %q has been scheduled for %s at %s.",
				r.Title, schedDate.Format("Jan 02, 2006"), in.StartTime),
			map[string]any{"request_id": r.ID, "schedule_id": s.ID}); err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateSchedule changes an existing calendar entry and notifies the
// requester. The owning request and the copied building never change.
func (e *Engine) UpdateSchedule(ctx context.Context, actorID, scheduleID uint64, in ScheduleInput) (*model.Schedule, error) {
	v, schedDate := validateScheduleInput(in)
	if err := v.err(); err != nil {
		return nil, err
	}

	var updated *model.Schedule
	err := e.store.InTx(ctx, func(tx Tx) error {
		actor, err := tx.UserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !authz.Allowed(actor.Role, authz.ActionUpdateSchedule) {
			return ErrForbidden
		}
		s, err := tx.ScheduleForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		r, err := tx.RequestForUpdate(ctx, s.BorrowingRequestID)
		if err != nil {
			return err
		}

		s.Title = in.Title
		s.ScheduledDate = schedDate
		s.StartTime = in.StartTime
		s.EndTime = in.EndTime
		s.Notes = in.Notes
		if err := tx.UpdateSchedule(ctx, s); err != nil {
			return err
		}

		if err := notify.ToUser(ctx, tx, r.UserID, model.NotifyScheduleUpdate,
			"Schedule Updated",
			fmt.Sprintf("The schedule for your request %q has been updated to %s at %s.",
				r.Title, schedDate.Format("Jan 02, 2006"), in.StartTime),
			map[string]any{"request_id": r.ID, "schedule_id": s.ID}); err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSchedule removes a calendar entry and reverts the owning request
// from scheduled back to approved, making it eligible for rescheduling.
// No notification is sent: the requester hears about the replacement
// schedule, not the teardown.
func (e *Engine) DeleteSchedule(ctx context.Context, actorID, scheduleID uint64) error {
	return e.store.InTx(ctx, func(tx Tx) error {
		actor, err := tx.UserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !authz.Allowed(actor.Role, authz.ActionDeleteSchedule) {
			return ErrForbidden
		}
		s, err := tx.ScheduleForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		if err := tx.DeleteSchedule(ctx, scheduleID); err != nil {
			return err
		}
		changed, err := tx.SetRequestStatus(ctx, s.BorrowingRequestID, model.RequestScheduled, model.RequestApproved, nil)
		if err != nil {
			return err
		}
		if !changed {
			return ErrConflict
		}
		return nil
	})
}

// validateRequestInput checks every user-editable field and parses the
// request date. The returned date is only meaningful when the validator
// holds no errors.
func (e *Engine) validateRequestInput(in RequestInput) (validator, time.Time) {
	var v validator
	if in.BuildingID == 0 {
		v.add("building_id", "building is required")
	}
	requireText(&v, "title", in.Title, 255)
	requireText(&v, "description", in.Description, 0)
	requireText(&v, "organization", in.Organization, 255)
	requireText(&v, "contact_person", in.ContactPerson, 255)
	requireText(&v, "contact_phone", in.ContactPhone, 20)
	if in.ExpectedParticipants < 1 {
		v.add("expected_participants", "expected participants must be at least 1")
	}

	var reqDate time.Time
	if in.RequestDate == "" {
		v.add("request_date", "request date is required")
	} else if d, err := time.Parse(dateLayout, in.RequestDate); err != nil {
		v.add("request_date", "request date must be a valid date")
	} else {
		reqDate = d
		today := e.clock.Now().Format(dateLayout)
		if in.RequestDate < today {
			v.add("request_date", "request date must be today or later")
		}
	}
	validateWindow(&v, in.StartTime, in.EndTime)
	return v, reqDate
}

// validateScheduleInput checks a calendar entry's fields and parses the
// scheduled date. Unlike request dates, past dates are accepted: admins
// sometimes record schedules retroactively.
func validateScheduleInput(in ScheduleInput) (validator, time.Time) {
	var v validator
	requireText(&v, "title", in.Title, 255)

	var schedDate time.Time
	if in.ScheduledDate == "" {
		v.add("scheduled_date", "scheduled date is required")
	} else if d, err := time.Parse(dateLayout, in.ScheduledDate); err != nil {
		v.add("scheduled_date", "scheduled date must be a valid date")
	} else {
		schedDate = d
	}
	validateWindow(&v, in.StartTime, in.EndTime)
	return v, schedDate
}

func requireText(v *validator, field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, field+" is required")
		return
	}
	if max > 0 && len(value) > max {
		v.add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

// validateWindow checks both times are well-formed and that the window
// has positive length.
func validateWindow(v *validator, start, end string) {
	sm, sErr := parseHHMM(start)
	if sErr != nil {
		v.add("start_time", "start time must be HH:MM")
	}
	em, eErr := parseHHMM(end)
	if eErr != nil {
		v.add("end_time", "end time must be HH:MM")
	}
	if sErr == nil && eErr == nil && em <= sm {
		v.add("end_time", "end time must be after start time")
	}
}

// parseHHMM converts a "HH:MM" clock string to minutes since midnight.
func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// checkBuilding verifies the referenced building exists and is open for
// booking, reporting problems as field-level validation errors the way
// the rest of the input checks do.
func checkBuilding(ctx context.Context, tx Tx, id uint64) error {
	b, err := tx.BuildingByID(ctx, id)
	if err == ErrNotFound {
		return &ValidationError{Fields: map[string]string{"building_id": "the selected building does not exist"}}
	}
	if err != nil {
		return err
	}
	if b.Status != model.BuildingAvailable {
		return &ValidationError{Fields: map[string]string{"building_id": "the selected building is not available for booking"}}
	}
	return nil
}
