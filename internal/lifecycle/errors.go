// Package lifecycle implements the borrowing-request state machine: the
// guarded transitions between pending, approved, rejected and scheduled,
// and the notification side effects each transition emits. Every
// transition runs inside one storage transaction so the status change
// and its notifications commit together or not at all.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for guard failures. Handlers translate these into
// HTTP 403, 409 and 404 respectively. They are expected, user-facing
// outcomes; nothing in this package retries or recovers from them.
var (
	// ErrForbidden is returned when the actor's role does not permit
	// the attempted transition, or when a non-owner (or an owner of a
	// no-longer-pending request) tries to edit or delete a request.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a status precondition does not hold:
	// deciding an already-decided request, scheduling a request that is
	// not approved, or attaching a second schedule to a request.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed or missing input, one message per
// offending field. It is always produced before any state mutation or
// notification is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// validator accumulates field errors and builds a ValidationError only
// when at least one check failed.
type validator struct {
	fields map[string]string
}

func (v *validator) add(field, msg string) {
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	v.fields[field] = msg
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
