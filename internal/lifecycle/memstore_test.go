package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// memStore is an in-memory Store with real rollback semantics: every
// InTx works on a copy of the data and the copy is only adopted when fn
// returns nil. That lets tests assert that a failed transition leaves
// neither a status change nor a notification behind.
type memStore struct {
	users     map[uint64]model.User
	buildings map[uint64]model.Building
	requests  map[uint64]model.BorrowingRequest
	schedules map[uint64]model.Schedule
	notifs    []model.Notification
	nextID    uint64

	// failNotify makes InsertNotification fail, simulating a write error
	// mid-transaction.
	failNotify bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint64]model.User{},
		buildings: map[uint64]model.Building{},
		requests:  map[uint64]model.BorrowingRequest{},
		schedules: map[uint64]model.Schedule{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(role model.Role) uint64 {
	id := m.id()
	m.users[id] = model.User{ID: id, Name: "u", Email: "u@example.com", Role: role}
	return id
}

func (m *memStore) addBuilding(status model.BuildingStatus) uint64 {
	id := m.id()
	m.buildings[id] = model.Building{ID: id, Name: "Hall", Capacity: 100, Status: status}
	return id
}

func (m *memStore) addRequest(userID, buildingID uint64, status model.RequestStatus) uint64 {
	id := m.id()
	m.requests[id] = model.BorrowingRequest{
		ID: id, UserID: userID, BuildingID: buildingID,
		Title: "Seminar", Description: "d", Organization: "Org",
		ContactPerson: "CP", ContactPhone: "0800",
		RequestDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00", EndTime: "11:00",
		ExpectedParticipants: 10, Status: status,
	}
	return id
}

func (m *memStore) addSchedule(requestID, buildingID, createdBy uint64) uint64 {
	id := m.id()
	m.schedules[id] = model.Schedule{
		ID: id, BorrowingRequestID: requestID, BuildingID: buildingID,
		Title: "Seminar", ScheduledDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00", EndTime: "11:00", CreatedBy: createdBy,
	}
	return id
}

func (m *memStore) notifsFor(userID uint64) []model.Notification {
	var out []model.Notification
	for _, n := range m.notifs {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memTx{
		store:     m,
		users:     copyMap(m.users),
		buildings: copyMap(m.buildings),
		requests:  copyMap(m.requests),
		schedules: copyMap(m.schedules),
		notifs:    append([]model.Notification(nil), m.notifs...),
		nextID:    m.nextID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.users = tx.users
	m.buildings = tx.buildings
	m.requests = tx.requests
	m.schedules = tx.schedules
	m.notifs = tx.notifs
	m.nextID = tx.nextID
	return nil
}

func copyMap[V any](in map[uint64]V) map[uint64]V {
	out := make(map[uint64]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memTx struct {
	store     *memStore
	users     map[uint64]model.User
	buildings map[uint64]model.Building
	requests  map[uint64]model.BorrowingRequest
	schedules map[uint64]model.Schedule
	notifs    []model.Notification
	nextID    uint64
}

func (t *memTx) id() uint64 {
	t.nextID++
	return t.nextID
}

func (t *memTx) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := t.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (t *memTx) UsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range t.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (t *memTx) BuildingByID(ctx context.Context, id uint64) (*model.Building, error) {
	b, ok := t.buildings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (t *memTx) InsertRequest(ctx context.Context, r *model.BorrowingRequest) error {
	r.ID = t.id()
	t.requests[r.ID] = *r
	return nil
}

func (t *memTx) RequestForUpdate(ctx context.Context, id uint64) (*model.BorrowingRequest, error) {
	r, ok := t.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (t *memTx) UpdateRequest(ctx context.Context, r *model.BorrowingRequest) error {
	if _, ok := t.requests[r.ID]; !ok {
		return ErrNotFound
	}
	t.requests[r.ID] = *r
	return nil
}

func (t *memTx) SetRequestStatus(ctx context.Context, id uint64, from, to model.RequestStatus, d *Decision) (bool, error) {
	r, ok := t.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	if d != nil {
		r.ApprovedBy = &d.ApprovedBy
		at := d.ApprovedAt
		r.ApprovedAt = &at
		r.AdminNotes = d.AdminNotes
		r.RejectionReason = d.RejectionReason
	}
	t.requests[id] = r
	return true, nil
}

func (t *memTx) DeleteRequest(ctx context.Context, id uint64) error {
	delete(t.requests, id)
	return nil
}

func (t *memTx) InsertSchedule(ctx context.Context, s *model.Schedule) error {
	s.ID = t.id()
	t.schedules[s.ID] = *s
	return nil
}

func (t *memTx) ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error) {
	s, ok := t.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (t *memTx) ScheduleByRequest(ctx context.Context, requestID uint64) (*model.Schedule, error) {
	for _, s := range t.schedules {
		if s.BorrowingRequestID == requestID {
			s := s
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) UpdateSchedule(ctx context.Context, s *model.Schedule) error {
	if _, ok := t.schedules[s.ID]; !ok {
		return ErrNotFound
	}
	t.schedules[s.ID] = *s
	return nil
}

func (t *memTx) DeleteSchedule(ctx context.Context, id uint64) error {
	delete(t.schedules, id)
	return nil
}

func (t *memTx) InsertNotification(ctx context.Context, n *model.Notification) error {
	if t.store.failNotify {
		return errors.New("notification write failed")
	}
	n.ID = t.id()
	t.notifs = append(t.notifs, *n)
	return nil
}

// fixedClock pins Now for date-guard and timestamp assertions.
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
