package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// ScheduleRepo serves the read side of schedules. Writes go through the
// Store inside lifecycle transactions.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// ScheduleFilter narrows a schedule listing. Zero values mean "no
// filter". OwnerID restricts the list to schedules whose underlying
// request belongs to that user.
type ScheduleFilter struct {
	BuildingID uint64
	OwnerID    uint64
	// From and To bound scheduled_date, inclusive, as "2006-01-02".
	From, To string
	// Search matches the schedule title, case-insensitively.
	Search  string
	Page    int
	PerPage int
}

// ScheduleDetail is a schedule joined with the names a calendar
// listing displays.
type ScheduleDetail struct {
	model.Schedule
	BuildingName  string `json:"building_name"`
	RequestTitle  string `json:"request_title"`
	RequesterName string `json:"requester_name"`
}

const scheduleDetailCols = `s.id, s.borrowing_request_id, s.building_id, s.title, s.scheduled_date,
	       s.start_time, s.end_time, s.notes, s.created_by, s.created_at, s.updated_at,
	       b.name, br.title, u.name`

const scheduleDetailFrom = ` FROM schedules s
	 JOIN buildings b ON b.id = s.building_id
	 JOIN borrowing_requests br ON br.id = s.borrowing_request_id
	 JOIN users u ON u.id = br.user_id`

// List returns one page of schedules matching the filter, ordered by
// date then start time, with the total match count.
func (r *ScheduleRepo) List(ctx context.Context, f ScheduleFilter) ([]ScheduleDetail, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.BuildingID != 0 {
		where = append(where, "s.building_id = ?")
		args = append(args, f.BuildingID)
	}
	if f.OwnerID != 0 {
		where = append(where, "br.user_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.From != "" {
		where = append(where, "s.scheduled_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "s.scheduled_date <= ?")
		args = append(args, f.To)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "s.title LIKE ?")
		args = append(args, "%"+s+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*)"+scheduleDetailFrom+" WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	q := "SELECT " + scheduleDetailCols + scheduleDetailFrom +
		" WHERE " + cond +
		" ORDER BY s.scheduled_date, s.start_time, s.id LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ScheduleDetail, 0)
	for rows.Next() {
		d, err := scanScheduleDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// GetByID returns one schedule with its display names.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*ScheduleDetail, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+scheduleDetailCols+scheduleDetailFrom+" WHERE s.id = ?", id)
	return scanScheduleDetail(row)
}

// Upcoming returns the next schedules from the given day onward,
// optionally scoped to one request owner. Used by the dashboard.
func (r *ScheduleRepo) Upcoming(ctx context.Context, from time.Time, ownerID uint64, limit int) ([]ScheduleDetail, error) {
	where := "s.scheduled_date >= ?"
	args := []any{from.Format("2006-01-02")}
	if ownerID != 0 {
		where += " AND br.user_id = ?"
		args = append(args, ownerID)
	}
	if limit < 1 {
		limit = 5
	}
	q := "SELECT " + scheduleDetailCols + scheduleDetailFrom +
		" WHERE " + where +
		" ORDER BY s.scheduled_date, s.start_time LIMIT ?"
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ScheduleDetail, 0)
	for rows.Next() {
		d, err := scanScheduleDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanScheduleDetail(s scanner) (*ScheduleDetail, error) {
	var (
		d          ScheduleDetail
		start, end string
		notes      sql.NullString
	)
	err := s.Scan(&d.ID, &d.BorrowingRequestID, &d.BuildingID, &d.Title,
		&d.ScheduledDate, &start, &end, &notes, &d.CreatedBy,
		&d.CreatedAt, &d.UpdatedAt,
		&d.BuildingName, &d.RequestTitle, &d.RequesterName)
	if err != nil {
		return nil, mapNoRows(err)
	}
	d.StartTime = hhmm(start)
	d.EndTime = hhmm(end)
	d.Notes = strPtr(notes)
	return &d, nil
}
