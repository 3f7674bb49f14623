package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// RequestRepo serves the read side of borrowing requests: filtered
// lists and detail lookups. All writes go through the Store so they
// stay inside lifecycle transactions.
type RequestRepo struct {
	db *sql.DB
}

// NewRequestRepo returns a RequestRepo bound to the given database.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

// RequestFilter narrows a request listing. Zero values mean "no
// filter". OwnerID scopes the list to one requester; handlers set it
// for callers with the user role so they only ever see their own
// requests.
type RequestFilter struct {
	Status     model.RequestStatus
	BuildingID uint64
	OwnerID    uint64
	// Search matches title and organization, case-insensitively.
	Search  string
	Page    int
	PerPage int
}

// RequestDetail is a request joined with the names a listing displays.
type RequestDetail struct {
	model.BorrowingRequest
	BuildingName  string `json:"building_name"`
	RequesterName string `json:"requester_name"`
}

// List returns one page of requests matching the filter, newest first,
// along with the total match count for pagination.
func (r *RequestRepo) List(ctx context.Context, f RequestFilter) ([]RequestDetail, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "br.status = ?")
		args = append(args, string(f.Status))
	}
	if f.BuildingID != 0 {
		where = append(where, "br.building_id = ?")
		args = append(args, f.BuildingID)
	}
	if f.OwnerID != 0 {
		where = append(where, "br.user_id = ?")
		args = append(args, f.OwnerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(br.title LIKE ? OR br.organization LIKE ?)")
		pat := "%" + s + "%"
		args = append(args, pat, pat)
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM borrowing_requests br WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	q := `SELECT br.id, br.user_id, br.building_id, br.title, br.description, br.organization,
	             br.contact_person, br.contact_phone, br.request_date, br.start_time, br.end_time,
	             br.expected_participants, br.equipment_needed, br.pdf_attachment, br.status,
	             br.admin_notes, br.rejection_reason, br.approved_by, br.approved_at,
	             br.created_at, br.updated_at,
	             b.name, u.name
	      FROM borrowing_requests br
	      JOIN buildings b ON b.id = br.building_id
	      JOIN users u ON u.id = br.user_id
	      WHERE ` + cond + `
	      ORDER BY br.created_at DESC, br.id DESC
	      LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]RequestDetail, 0)
	for rows.Next() {
		d, err := scanRequestDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// GetByID returns one request with its display names. Visibility
// (owners see only their own) is enforced by the handler.
func (r *RequestRepo) GetByID(ctx context.Context, id uint64) (*RequestDetail, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT br.id, br.user_id, br.building_id, br.title, br.description, br.organization,
		        br.contact_person, br.contact_phone, br.request_date, br.start_time, br.end_time,
		        br.expected_participants, br.equipment_needed, br.pdf_attachment, br.status,
		        br.admin_notes, br.rejection_reason, br.approved_by, br.approved_at,
		        br.created_at, br.updated_at,
		        b.name, u.name
		 FROM borrowing_requests br
		 JOIN buildings b ON b.id = br.building_id
		 JOIN users u ON u.id = br.user_id
		 WHERE br.id = ?`, id)
	return scanRequestDetail(row)
}

// CountByStatus returns how many requests sit in each status, scoped to
// one owner when ownerID is non-zero. Statuses with no requests are
// absent from the map.
func (r *RequestRepo) CountByStatus(ctx context.Context, ownerID uint64) (map[model.RequestStatus]int, error) {
	q := "SELECT status, COUNT(*) FROM borrowing_requests"
	args := []any{}
	if ownerID != 0 {
		q += " WHERE user_id = ?"
		args = append(args, ownerID)
	}
	q += " GROUP BY status"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.RequestStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

func scanRequestDetail(s scanner) (*RequestDetail, error) {
	var (
		d                     RequestDetail
		start, end            string
		equipment, attachment sql.NullString
		adminNotes, rejection sql.NullString
		approvedBy            sql.NullInt64
		approvedAt            sql.NullTime
	)
	err := s.Scan(&d.ID, &d.UserID, &d.BuildingID, &d.Title, &d.Description,
		&d.Organization, &d.ContactPerson, &d.ContactPhone, &d.RequestDate,
		&start, &end, &d.ExpectedParticipants, &equipment, &attachment,
		&d.Status, &adminNotes, &rejection, &approvedBy, &approvedAt,
		&d.CreatedAt, &d.UpdatedAt,
		&d.BuildingName, &d.RequesterName)
	if err != nil {
		return nil, mapNoRows(err)
	}
	d.StartTime = hhmm(start)
	d.EndTime = hhmm(end)
	d.EquipmentNeeded = strPtr(equipment)
	d.PDFAttachment = strPtr(attachment)
	d.AdminNotes = strPtr(adminNotes)
	d.RejectionReason = strPtr(rejection)
	if approvedBy.Valid {
		v := uint64(approvedBy.Int64)
		d.ApprovedBy = &v
	}
	if approvedAt.Valid {
		v := approvedAt.Time
		d.ApprovedAt = &v
	}
	return &d, nil
}

// normalizePage clamps pagination to sane bounds.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
