package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnj-dev/facility-booking/internal/model"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(m *memStore) *Engine {
	return NewEngine(m, fixedClock(testNow))
}

func validInput(buildingID uint64) RequestInput {
	return RequestInput{
		BuildingID:           buildingID,
		Title:                "Annual Seminar",
		Description:          "Yearly seminar for members",
		Organization:         "Computer Club",
		ContactPerson:        "Rina",
		ContactPhone:         "081234567890",
		RequestDate:          "2026-09-10",
		StartTime:            "09:00",
		EndTime:              "12:00",
		ExpectedParticipants: 40,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func TestCreateRequestBroadcastsToAdmin1(t *testing.T) {
	m := newMemStore()
	user := m.addUser(model.RoleUser)
	a1a := m.addUser(model.RoleAdmin1)
	a1b := m.addUser(model.RoleAdmin1)
	m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)

	r, err := newTestEngine(m).CreateRequest(context.Background(), user, validInput(b))
	require.NoError(t, err)
	require.NotZero(t, r.ID)
	assert.Equal(t, model.RequestPending, r.Status)
	assert.Equal(t, user, r.UserID)

	// one notification per admin1, none for the requester or admin2
	require.Len(t, m.notifs, 2)
	assert.Len(t, m.notifsFor(a1a), 1)
	assert.Len(t, m.notifsFor(a1b), 1)
	n := m.notifsFor(a1a)[0]
	assert.Equal(t, "New Borrowing Request", n.Title)
	assert.Equal(t, model.NotifyRequestStatus, n.Type)
	assert.Equal(t, r.ID, n.Data["request_id"])
}

func TestCreateRequestWithNoAdminsStillSucceeds(t *testing.T) {
	m := newMemStore()
	user := m.addUser(model.RoleUser)
	b := m.addBuilding(model.BuildingAvailable)

	r, err := newTestEngine(m).CreateRequest(context.Background(), user, validInput(b))
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, m.requests[r.ID].Status)
	assert.Empty(t, m.notifs)
}

func TestCreateRequestValidation(t *testing.T) {
	m := newMemStore()
	user := m.addUser(model.RoleUser)
	b := m.addBuilding(model.BuildingAvailable)
	e := newTestEngine(m)

	tests := []struct {
		name   string
		mutate func(*RequestInput)
		field  string
	}{
		{"missing title", func(in *RequestInput) { in.Title = "  " }, "title"},
		{"missing organization", func(in *RequestInput) { in.Organization = "" }, "organization"},
		{"missing contact person", func(in *RequestInput) { in.ContactPerson = "" }, "contact_person"},
		{"missing date", func(in *RequestInput) { in.RequestDate = "" }, "request_date"},
		{"malformed date", func(in *RequestInput) { in.RequestDate = "10-09-2026" }, "request_date"},
		{"past date", func(in *RequestInput) { in.RequestDate = "2026-08-31" }, "request_date"},
		{"malformed start time", func(in *RequestInput) { in.StartTime = "9am" }, "start_time"},
		{"end before start", func(in *RequestInput) { in.StartTime = "14:00"; in.EndTime = "12:00" }, "end_time"},
		{"zero-length window", func(in *RequestInput) { in.StartTime = "09:00"; in.EndTime = "09:00" }, "end_time"},
		{"zero participants", func(in *RequestInput) { in.ExpectedParticipants = 0 }, "expected_participants"},
		{"missing building", func(in *RequestInput) { in.BuildingID = 0 }, "building_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(b)
			tt.mutate(&in)
			_, err := e.CreateRequest(context.Background(), user, in)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}

	// nothing was persisted by any of the failed attempts
	assert.Empty(t, m.requests)
	assert.Empty(t, m.notifs)
}

func TestCreateRequestTodayIsAccepted(t *testing.T) {
	m := newMemStore()
	user := m.addUser(model.RoleUser)
	b := m.addBuilding(model.BuildingAvailable)

	in := validInput(b)
	in.RequestDate = "2026-09-01"
	_, err := newTestEngine(m).CreateRequest(context.Background(), user, in)
	assert.NoError(t, err)
}

func TestCreateRequestBuildingMustBeAvailable(t *testing.T) {
	m := newMemStore()
	user := m.addUser(model.RoleUser)
	e := newTestEngine(m)

	for _, status := range []model.BuildingStatus{model.BuildingMaintenance, model.BuildingUnavailable} {
		b := m.addBuilding(status)
		_, err := e.CreateRequest(context.Background(), user, validInput(b))
		assert.Contains(t, fieldsOf(t, err), "building_id")
	}

	_, err := e.CreateRequest(context.Background(), user, validInput(9999))
	assert.Contains(t, fieldsOf(t, err), "building_id")
}

func TestUpdateRequestOwnerOnlyWhilePending(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	other := m.addUser(model.RoleUser)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	e := newTestEngine(m)

	in := validInput(b)
	in.Title = "Renamed Seminar"

	_, err := e.UpdateRequest(context.Background(), other, req, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.UpdateRequest(context.Background(), owner, req, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Seminar", m.requests[req].Title)

	// once decided the owner loses edit rights too
	approved := m.addRequest(owner, b, model.RequestApproved)
	_, err = e.UpdateRequest(context.Background(), owner, approved, in)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateRequestReportsReplacedAttachment(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	old := "blobs/old.pdf"
	r := m.requests[req]
	r.PDFAttachment = &old
	m.requests[req] = r
	e := newTestEngine(m)

	// nil attachment keeps the existing blob
	replaced, err := e.UpdateRequest(context.Background(), owner, req, validInput(b))
	require.NoError(t, err)
	assert.Nil(t, replaced)
	require.NotNil(t, m.requests[req].PDFAttachment)
	assert.Equal(t, old, *m.requests[req].PDFAttachment)

	// a new ref replaces it and the old ref is handed back for cleanup
	in := validInput(b)
	fresh := "blobs/new.pdf"
	in.PDFAttachment = &fresh
	replaced, err = e.UpdateRequest(context.Background(), owner, req, in)
	require.NoError(t, err)
	require.NotNil(t, replaced)
	assert.Equal(t, old, *replaced)
	assert.Equal(t, fresh, *m.requests[req].PDFAttachment)
}

func TestDeleteRequestOwnerOnlyWhilePending(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	other := m.addUser(model.RoleUser)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	attachment := "blobs/proposal.pdf"
	r := m.requests[req]
	r.PDFAttachment = &attachment
	m.requests[req] = r
	e := newTestEngine(m)

	_, err := e.DeleteRequest(context.Background(), other, req)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, m.requests, req)

	got, err := e.DeleteRequest(context.Background(), owner, req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attachment, *got)
	assert.NotContains(t, m.requests, req)

	scheduled := m.addRequest(owner, b, model.RequestScheduled)
	_, err = e.DeleteRequest(context.Background(), owner, scheduled)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDecideApprove(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin1 := m.addUser(model.RoleAdmin1)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)

	notes := "looks fine"
	r, err := newTestEngine(m).Decide(context.Background(), admin1, req, DecisionApproved, &notes, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, r.Status)

	stored := m.requests[req]
	assert.Equal(t, model.RequestApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, admin1, *stored.ApprovedBy)
	require.NotNil(t, stored.ApprovedAt)
	assert.Equal(t, testNow, *stored.ApprovedAt)
	require.NotNil(t, stored.AdminNotes)
	assert.Equal(t, notes, *stored.AdminNotes)
	assert.Nil(t, stored.RejectionReason)

	// requester hears the outcome, admin2 hears it needs scheduling
	ownerNotifs := m.notifsFor(owner)
	require.Len(t, ownerNotifs, 1)
	assert.Equal(t, "Request Approved", ownerNotifs[0].Title)
	a2Notifs := m.notifsFor(admin2)
	require.Len(t, a2Notifs, 1)
	assert.Equal(t, model.NotifyScheduleUpdate, a2Notifs[0].Type)
}

func TestDecideReject(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin1 := m.addUser(model.RoleAdmin1)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	e := newTestEngine(m)

	// rejection without a reason is a field error, not a transition
	_, err := e.Decide(context.Background(), admin1, req, DecisionRejected, nil, nil)
	assert.Contains(t, fieldsOf(t, err), "rejection_reason")
	assert.Equal(t, model.RequestPending, m.requests[req].Status)

	reason := "double booking with maintenance work"
	r, err := e.Decide(context.Background(), admin1, req, DecisionRejected, nil, &reason)
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, r.Status)

	stored := m.requests[req]
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, reason, *stored.RejectionReason)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, admin1, *stored.ApprovedBy)

	ownerNotifs := m.notifsFor(owner)
	require.Len(t, ownerNotifs, 1)
	assert.Equal(t, "Request Rejected", ownerNotifs[0].Title)
	assert.Contains(t, ownerNotifs[0].Message, reason)
	// a rejection never reaches admin2
	assert.Empty(t, m.notifsFor(admin2))
}

func TestDecideRoleGuard(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	e := newTestEngine(m)

	for _, actor := range []uint64{owner, admin2} {
		_, err := e.Decide(context.Background(), actor, req, DecisionApproved, nil, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Equal(t, model.RequestPending, m.requests[req].Status)
}

func TestDecideInvalidOutcome(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin1 := m.addUser(model.RoleAdmin1)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)

	_, err := newTestEngine(m).Decide(context.Background(), admin1, req, "maybe", nil, nil)
	assert.Contains(t, fieldsOf(t, err), "status")
}

func TestDecideTwiceConflicts(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin1 := m.addUser(model.RoleAdmin1)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	e := newTestEngine(m)

	_, err := e.Decide(context.Background(), admin1, req, DecisionApproved, nil, nil)
	require.NoError(t, err)

	reason := "changed my mind"
	_, err = e.Decide(context.Background(), admin1, req, DecisionRejected, nil, &reason)
	assert.ErrorIs(t, err, ErrConflict)
	// the first verdict stands
	assert.Equal(t, model.RequestApproved, m.requests[req].Status)
	assert.Nil(t, m.requests[req].RejectionReason)
}

func TestTransitionIsAtomicWithNotifications(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin1 := m.addUser(model.RoleAdmin1)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestPending)
	m.failNotify = true

	_, err := newTestEngine(m).Decide(context.Background(), admin1, req, DecisionApproved, nil, nil)
	require.Error(t, err)
	// the status flip rolled back together with the failed notification
	assert.Equal(t, model.RequestPending, m.requests[req].Status)
	assert.Empty(t, m.notifs)
}

func scheduleInput() ScheduleInput {
	return ScheduleInput{
		Title:         "Annual Seminar",
		ScheduledDate: "2026-09-10",
		StartTime:     "09:00",
		EndTime:       "12:00",
	}
}

func TestCreateSchedule(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestApproved)

	s, err := newTestEngine(m).CreateSchedule(context.Background(), admin2, req, scheduleInput())
	require.NoError(t, err)
	require.NotZero(t, s.ID)
	assert.Equal(t, req, s.BorrowingRequestID)
	// building comes from the request, not from input
	assert.Equal(t, b, s.BuildingID)
	assert.Equal(t, admin2, s.CreatedBy)
	assert.Equal(t, model.RequestScheduled, m.requests[req].Status)

	ownerNotifs := m.notifsFor(owner)
	require.Len(t, ownerNotifs, 1)
	assert.Equal(t, "Request Scheduled", ownerNotifs[0].Title)
	assert.Contains(t, ownerNotifs[0].Message, "Sep 10, 2026")
	assert.Contains(t, ownerNotifs[0].Message, "09:00")
}

func TestCreateScheduleRequiresApprovedRequest(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	e := newTestEngine(m)

	for _, status := range []model.RequestStatus{model.RequestPending, model.RequestRejected, model.RequestScheduled} {
		req := m.addRequest(owner, b, status)
		_, err := e.CreateSchedule(context.Background(), admin2, req, scheduleInput())
		assert.ErrorIs(t, err, ErrConflict, "status %s", status)
	}
}

func TestCreateScheduleRejectsDuplicate(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestApproved)
	e := newTestEngine(m)

	_, err := e.CreateSchedule(context.Background(), admin2, req, scheduleInput())
	require.NoError(t, err)
	_, err = e.CreateSchedule(context.Background(), admin2, req, scheduleInput())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateScheduleRoleGuard(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin1 := m.addUser(model.RoleAdmin1)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestApproved)
	e := newTestEngine(m)

	for _, actor := range []uint64{owner, admin1} {
		_, err := e.CreateSchedule(context.Background(), actor, req, scheduleInput())
		assert.ErrorIs(t, err, ErrForbidden)
	}
}

func TestUpdateScheduleNotifiesRequester(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestScheduled)
	sched := m.addSchedule(req, b, admin2)

	in := scheduleInput()
	in.ScheduledDate = "2026-09-12"
	in.StartTime = "13:00"
	in.EndTime = "15:00"
	s, err := newTestEngine(m).UpdateSchedule(context.Background(), admin2, sched, in)
	require.NoError(t, err)
	assert.Equal(t, "13:00", s.StartTime)
	assert.Equal(t, "2026-09-12", m.schedules[sched].ScheduledDate.Format("2006-01-02"))

	ownerNotifs := m.notifsFor(owner)
	require.Len(t, ownerNotifs, 1)
	assert.Equal(t, "Schedule Updated", ownerNotifs[0].Title)
}

func TestDeleteScheduleRevertsRequestSilently(t *testing.T) {
	m := newMemStore()
	owner := m.addUser(model.RoleUser)
	admin2 := m.addUser(model.RoleAdmin2)
	b := m.addBuilding(model.BuildingAvailable)
	req := m.addRequest(owner, b, model.RequestScheduled)
	sched := m.addSchedule(req, b, admin2)

	err := newTestEngine(m).DeleteSchedule(context.Background(), admin2, sched)
	require.NoError(t, err)
	assert.NotContains(t, m.schedules, sched)
	// request becomes schedulable again and nobody is notified
	assert.Equal(t, model.RequestApproved, m.requests[req].Status)
	assert.Empty(t, m.notifs)
}

func TestDeleteScheduleMissing(t *testing.T) {
	m := newMemStore()
	admin2 := m.addUser(model.RoleAdmin2)

	err := newTestEngine(m).DeleteSchedule(context.Background(), admin2, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
