package repository

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// scanner covers *sql.Row and *sql.Rows so the same scan helpers serve
// single-row and list queries.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u          model.User
		org, phone sql.NullString
	)
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&org, &phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	u.Organization = strPtr(org)
	u.Phone = strPtr(phone)
	return &u, nil
}

func scanBuilding(s scanner) (*model.Building, error) {
	var (
		b           model.Building
		desc, specs sql.NullString
		images      []byte
	)
	err := s.Scan(&b.ID, &b.Name, &desc, &b.Capacity, &specs, &images,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	b.Description = strPtr(desc)
	b.Specifications = strPtr(specs)
	if len(images) > 0 {
		if err := json.Unmarshal(images, &b.Images); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func scanRequest(s scanner) (*model.BorrowingRequest, error) {
	var (
		r                     model.BorrowingRequest
		start, end            string
		equipment, attachment sql.NullString
		adminNotes, rejection sql.NullString
		approvedBy            sql.NullInt64
		approvedAt            sql.NullTime
	)
	err := s.Scan(&r.ID, &r.UserID, &r.BuildingID, &r.Title, &r.Description,
		&r.Organization, &r.ContactPerson, &r.ContactPhone, &r.RequestDate,
		&start, &end, &r.ExpectedParticipants, &equipment, &attachment,
		&r.Status, &adminNotes, &rejection, &approvedBy, &approvedAt,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	r.StartTime = hhmm(start)
	r.EndTime = hhmm(end)
	r.EquipmentNeeded = strPtr(equipment)
	r.PDFAttachment = strPtr(attachment)
	r.AdminNotes = strPtr(adminNotes)
	r.RejectionReason = strPtr(rejection)
	if approvedBy.Valid {
		v := uint64(approvedBy.Int64)
		r.ApprovedBy = &v
	}
	if approvedAt.Valid {
		v := approvedAt.Time
		r.ApprovedAt = &v
	}
	return &r, nil
}

func scanSchedule(s scanner) (*model.Schedule, error) {
	var (
		sc         model.Schedule
		start, end string
		notes      sql.NullString
	)
	err := s.Scan(&sc.ID, &sc.BorrowingRequestID, &sc.BuildingID, &sc.Title,
		&sc.ScheduledDate, &start, &end, &notes, &sc.CreatedBy,
		&sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	sc.StartTime = hhmm(start)
	sc.EndTime = hhmm(end)
	sc.Notes = strPtr(notes)
	return &sc, nil
}

func scanNotification(s scanner) (*model.Notification, error) {
	var (
		n    model.Notification
		data []byte
	)
	err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &data,
		&n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// hhmm normalizes a MySQL TIME value ("09:00:00") to the "HH:MM" form
// used everywhere above the repository.
func hhmm(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
