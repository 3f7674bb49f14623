package repository

import (
	"context"
	"database/sql"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// NotificationRepo serves a user's notification feed. Rows are created
// by lifecycle transitions through the Store; the only writes here flip
// the read flag, and those enforce that callers touch only their own
// rows.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to the given
// database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationCols = "id, user_id, title, message, type, data, is_read, created_at"

// ListByUser returns one page of the user's notifications, newest
// first, plus the total count. unreadOnly restricts to unread rows.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, page, perPage int) ([]model.Notification, int, error) {
	cond := "user_id = ?"
	args := []any{userID}
	if unreadOnly {
		cond += " AND is_read = FALSE"
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)
	q := "SELECT " + notificationCols + " FROM notifications WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// UnreadCount returns how many unread notifications the user has.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE",
		userID).Scan(&n)
	return n, err
}

// MarkRead flips one notification to read. A missing row is
// ErrNotFound; a row addressed to someone else is ErrForbidden, so a
// user can never acknowledge another user's notifications.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM notifications WHERE id = ?", id).Scan(&ownerID)
	if err != nil {
		return mapNoRows(err)
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = ?", id)
	return err
}

// MarkAllRead flips every unread notification of the user and returns
// how many rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Recent returns the user's newest notifications for the dashboard
// dropdown.
func (r *NotificationRepo) Recent(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	if limit < 1 {
		limit = 5
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationCols+" FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
