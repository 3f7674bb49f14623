package repository

import (
	"context"
	"time"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// DashboardRepo aggregates the counters shown on the landing page.
// Each role sees a different slice: requesters their own requests,
// admin1 the review queue, admin2 the scheduling queue.
type DashboardRepo struct {
	requests  *RequestRepo
	schedules *ScheduleRepo
	notifs    *NotificationRepo
}

// NewDashboardRepo composes the read repositories it aggregates over.
func NewDashboardRepo(req *RequestRepo, sch *ScheduleRepo, not *NotificationRepo) *DashboardRepo {
	return &DashboardRepo{requests: req, schedules: sch, notifs: not}
}

// Summary is the dashboard payload.
type Summary struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Scheduled int `json:"scheduled"`
	Total     int `json:"total"`

	UnreadNotifications int `json:"unread_notifications"`

	// UpcomingSchedules lists the next few calendar entries, scoped to
	// the user's own requests for the user role.
	UpcomingSchedules []ScheduleDetail `json:"upcoming_schedules"`

	// RecentRequests lists the newest requests in the viewer's scope.
	// For admin1 this is the head of the review queue (pending only).
	RecentRequests []RequestDetail `json:"recent_requests"`
}

// Summarize builds the dashboard for one viewer. today bounds the
// upcoming-schedule window.
func (r *DashboardRepo) Summarize(ctx context.Context, userID uint64, role model.Role, today time.Time) (*Summary, error) {
	ownScope := uint64(0)
	if role == model.RoleUser {
		ownScope = userID
	}

	counts, err := r.requests.CountByStatus(ctx, ownScope)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Pending:   counts[model.RequestPending],
		Approved:  counts[model.RequestApproved],
		Rejected:  counts[model.RequestRejected],
		Scheduled: counts[model.RequestScheduled],
	}
	s.Total = s.Pending + s.Approved + s.Rejected + s.Scheduled

	if s.UnreadNotifications, err = r.notifs.UnreadCount(ctx, userID); err != nil {
		return nil, err
	}

	if s.UpcomingSchedules, err = r.schedules.Upcoming(ctx, today, ownScope, 5); err != nil {
		return nil, err
	}

	recentFilter := RequestFilter{OwnerID: ownScope, Page: 1, PerPage: 5}
	if role == model.RoleAdmin1 {
		recentFilter.Status = model.RequestPending
	}
	if role == model.RoleAdmin2 {
		recentFilter.Status = model.RequestApproved
	}
	if s.RecentRequests, _, err = r.requests.List(ctx, recentFilter); err != nil {
		return nil, err
	}
	return s, nil
}
