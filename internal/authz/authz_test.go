package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pnj-dev/facility-booking/internal/model"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		name   string
		role   model.Role
		action Action
		want   bool
	}{
		{"user creates request", model.RoleUser, ActionCreateRequest, true},
		{"admin1 creates request", model.RoleAdmin1, ActionCreateRequest, true},
		{"admin2 creates request", model.RoleAdmin2, ActionCreateRequest, true},
		{"only admin1 decides", model.RoleAdmin1, ActionDecideRequest, true},
		{"user cannot decide", model.RoleUser, ActionDecideRequest, false},
		{"admin2 cannot decide", model.RoleAdmin2, ActionDecideRequest, false},
		{"only admin2 schedules", model.RoleAdmin2, ActionCreateSchedule, true},
		{"admin1 cannot schedule", model.RoleAdmin1, ActionCreateSchedule, false},
		{"user cannot schedule", model.RoleUser, ActionCreateSchedule, false},
		{"admin2 updates schedule", model.RoleAdmin2, ActionUpdateSchedule, true},
		{"user cannot update schedule", model.RoleUser, ActionUpdateSchedule, false},
		{"admin2 deletes schedule", model.RoleAdmin2, ActionDeleteSchedule, true},
		{"admin1 cannot delete schedule", model.RoleAdmin1, ActionDeleteSchedule, false},
		{"everyone views requests", model.RoleUser, ActionViewRequests, true},
		{"unknown role denied", model.Role("superadmin"), ActionDecideRequest, false},
		{"unknown action denied", model.RoleAdmin1, Action("request.purge"), false},
		{"empty role denied", model.Role(""), ActionCreateRequest, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.role, tc.action))
		})
	}
}
