package lifecycle

import (
	"context"
	"time"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// Store opens the transactional boundary around one lifecycle
// transition. The production implementation lives in the repository
// package and wraps *sql.DB; tests use an in-memory fake. If fn returns
// an error the transaction must be rolled back and nothing, neither
// the status change nor any notification row, may persist.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of storage operations a transition may perform inside
// its transaction. Reads named ForUpdate must lock the row (or an
// equivalent) so the status recheck sees the latest committed state and
// a losing concurrent writer observes ErrConflict instead of silently
// overwriting.
type Tx interface {
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	UsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	BuildingByID(ctx context.Context, id uint64) (*model.Building, error)

	InsertRequest(ctx context.Context, r *model.BorrowingRequest) error
	RequestForUpdate(ctx context.Context, id uint64) (*model.BorrowingRequest, error)
	UpdateRequest(ctx context.Context, r *model.BorrowingRequest) error
	// SetRequestStatus performs the guarded status flip: the UPDATE is
	// conditional on the row still being in `from` and reports whether
	// a row was changed. Decision metadata is written only when non-nil.
	SetRequestStatus(ctx context.Context, id uint64, from, to model.RequestStatus, d *Decision) (bool, error)
	DeleteRequest(ctx context.Context, id uint64) error

	InsertSchedule(ctx context.Context, s *model.Schedule) error
	ScheduleForUpdate(ctx context.Context, id uint64) (*model.Schedule, error)
	ScheduleByRequest(ctx context.Context, requestID uint64) (*model.Schedule, error)
	UpdateSchedule(ctx context.Context, s *model.Schedule) error
	DeleteSchedule(ctx context.Context, id uint64) error

	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Decision carries the metadata recorded alongside an approve/reject
// status flip.
type Decision struct {
	ApprovedBy      uint64
	ApprovedAt      time.Time
	AdminNotes      *string
	RejectionReason *string
}
