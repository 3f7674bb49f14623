// Package repository implements MySQL persistence for the booking
// workflow. The transactional Store consumed by the lifecycle engine
// lives here next to the read-side repositories used by list and detail
// endpoints. Sentinel errors are shared with the lifecycle package so
// handlers translate one set of values regardless of which layer
// produced them.
package repository

import (
	"github.com/pnj-dev/facility-booking/internal/lifecycle"
)

// Re-exported sentinels. Handlers should translate ErrForbidden into
// HTTP 403, ErrConflict into 409 and ErrNotFound into 404.
var (
	ErrForbidden = lifecycle.ErrForbidden
	ErrConflict  = lifecycle.ErrConflict
	ErrNotFound  = lifecycle.ErrNotFound
)
