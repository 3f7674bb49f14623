package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pnj-dev/facility-booking/internal/lifecycle"
	"github.com/pnj-dev/facility-booking/internal/model"
)

// Store is the production lifecycle.Store. Each InTx call runs fn
// against one MySQL transaction; the committed flag keeps the deferred
// rollback from firing after a successful commit.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) InTx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeTx implements lifecycle.Tx over one *sql.Tx. ForUpdate reads use
// SELECT ... FOR UPDATE so two admins racing on the same request
// serialize on the row lock and the loser sees the new status.
type storeTx struct {
	tx *sql.Tx
}

const requestCols = `id, user_id, building_id, title, description, organization,
	contact_person, contact_phone, request_date, start_time, end_time,
	expected_participants, equipment_needed, pdf_attachment, status,
	admin_notes, rejection_reason, approved_by, approved_at, created_at, updated_at`

func (t *storeTx) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, organization, phone, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (t *storeTx) UsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, organization, phone, created_at, updated_at
		 FROM users WHERE role = ? ORDER BY id`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (t *storeTx) BuildingByID(ctx context.Context, id uint64) (*model.Building, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, name, description, capacity, specifications, images, status, created_at, updated_at
		 FROM buildings WHERE id = ?`, id)
	return scanBuilding(row)
}

func (t *storeTx) InsertRequest(ctx context.Context, r *model.BorrowingRequest) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO borrowing_requests
		 (user_id, building_id, title, description, organization, contact_person, contact_phone,
		  request_date, start_time, end_time, expected_participants, equipment_needed,
		  pdf_attachment, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.UserID, r.BuildingID, r.Title, r.Description, r.Organization, r.ContactPerson,
		r.ContactPhone, r.RequestDate.Format("2006-01-02"), r.StartTime, r.EndTime,
		r.ExpectedParticipants, r.EquipmentNeeded, r.PDFAttachment, string(r.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

func (t *storeTx) RequestForUpdate(ctx context.Context, id uint64) (*model.BorrowingRequest, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+requestCols+` FROM borrowing_requests WHERE id = ? FOR UPDATE`, id)
	return scanRequest(row)
}

func (t *storeTx) UpdateRequest(ctx context.Context, r *model.BorrowingRequest) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE borrowing_requests SET
		 building_id=?, title=?, description=?, organization=?, contact_person=?, contact_phone=?,
		 request_date=?, start_time=?, end_time=?, expected_participants=?, equipment_needed=?,
		 pdf_attachment=?
		 WHERE id=?`,
		r.BuildingID, r.Title, r.Description, r.Organization, r.ContactPerson, r.ContactPhone,
		r.RequestDate.Format("2006-01-02"), r.StartTime, r.EndTime, r.ExpectedParticipants,
		r.EquipmentNeeded, r.PDFAttachment, r.ID)
	return err
}

func (t *storeTx) SetRequestStatus(ctx context.Context, id uint64, from, to model.RequestStatus, d *lifecycle.Decision) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if d != nil {
		res, err = t.tx.ExecContext(ctx,
			`UPDATE borrowing_requests
			 SET status=?, approved_by=?, approved_at=?, admin_notes=?, rejection_reason=?
			 WHERE id=? AND status=?`,
			string(to), d.ApprovedBy, d.ApprovedAt, d.AdminNotes, d.RejectionReason,
			id, string(from))
	} else {
		res, err = t.tx.ExecContext(ctx,
			`UPDATE borrowing_requests SET status=? WHERE id=? AND status=?`,
			string(to), id, string(from))
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *storeTx) DeleteRequest(ctx context.Context, id uint64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM borrowing_requests WHERE id = ?`, id)
	return err
}

func (t *storeTx) InsertSchedule(ctx context.Context, s *model.Schedule) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO schedules
		 (borrowing_request_id, building_id, title, scheduled_date, start_time, end_time, notes, created_by)
		 VALUES (?,?,?,?,?,?,?,?)`,
		s.BorrowingRequestID, s.BuildingID, s.Title, s.ScheduledDate.Format("2006-01-02"),
		s.StartTime, s.EndTime, s.Notes, s.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

const scheduleCols = `id, borrowing_request_id, building_id, title, scheduled_date,
	start_time, end_time, notes, created_by, created_at, updated_at`

func (t *storeTx) ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+scheduleCols+` FROM schedules WHERE id = ? FOR UPDATE`, id)
	return scanSchedule(row)
}

func (t *storeTx) ScheduleByRequest(ctx context.Context, requestID uint64) (*model.Schedule, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+scheduleCols+` FROM schedules WHERE borrowing_request_id = ? FOR UPDATE`, requestID)
	return scanSchedule(row)
}

func (t *storeTx) UpdateSchedule(ctx context.Context, s *model.Schedule) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE schedules SET title=?, scheduled_date=?, start_time=?, end_time=?, notes=? WHERE id=?`,
		s.Title, s.ScheduledDate.Format("2006-01-02"), s.StartTime, s.EndTime, s.Notes, s.ID)
	return err
}

func (t *storeTx) DeleteSchedule(ctx context.Context, id uint64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	return err
}

func (t *storeTx) InsertNotification(ctx context.Context, n *model.Notification) error {
	var data any
	if n.Data != nil {
		b, err := json.Marshal(n.Data)
		if err != nil {
			return err
		}
		data = b
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, message, type, data) VALUES (?,?,?,?,?)`,
		n.UserID, n.Title, n.Message, string(n.Type), data)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}
