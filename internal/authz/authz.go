// Package authz holds the single allow/deny table for the booking
// workflow. Every role check in the application goes through Allowed so
// the policy lives in one place instead of being re-derived inside each
// handler. Any action without an explicit allow rule is denied.
package authz

import "github.com/pnj-dev/facility-booking/internal/model"

// Action names an operation a user can attempt against the workflow.
type Action string

const (
	ActionCreateRequest  Action = "request.create"
	ActionEditOwnRequest Action = "request.edit_own"
	ActionDecideRequest  Action = "request.decide"
	ActionCreateSchedule Action = "schedule.create"
	ActionUpdateSchedule Action = "schedule.update"
	ActionDeleteSchedule Action = "schedule.delete"
	ActionViewRequests   Action = "request.view"
	ActionViewSchedules  Action = "schedule.view"
	ActionReadOwnNotifs  Action = "notification.read_own"
)

// allow is the fixed policy table. Ownership constraints (only the
// requester may edit their own pending request, only the recipient may
// mark a notification read) are enforced separately by the lifecycle
// engine and repositories; this table only answers the role question.
var allow = map[Action]map[model.Role]bool{
	ActionCreateRequest:  {model.RoleUser: true, model.RoleAdmin1: true, model.RoleAdmin2: true},
	ActionEditOwnRequest: {model.RoleUser: true, model.RoleAdmin1: true, model.RoleAdmin2: true},
	ActionDecideRequest:  {model.RoleAdmin1: true},
	ActionCreateSchedule: {model.RoleAdmin2: true},
	ActionUpdateSchedule: {model.RoleAdmin2: true},
	ActionDeleteSchedule: {model.RoleAdmin2: true},
	ActionViewRequests:   {model.RoleUser: true, model.RoleAdmin1: true, model.RoleAdmin2: true},
	ActionViewSchedules:  {model.RoleUser: true, model.RoleAdmin1: true, model.RoleAdmin2: true},
	ActionReadOwnNotifs:  {model.RoleUser: true, model.RoleAdmin1: true, model.RoleAdmin2: true},
}

// Allowed reports whether the given role may perform the action.
// Unknown roles and unknown actions are denied.
func Allowed(role model.Role, action Action) bool {
	return allow[action][role]
}
