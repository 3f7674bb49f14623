package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnj-dev/facility-booking/internal/model"
)

type fakeSink struct {
	users      map[model.Role][]model.User
	rows       []model.Notification
	insertErr  error
	resolveErr error
}

func (s *fakeSink) InsertNotification(_ context.Context, n *model.Notification) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.rows = append(s.rows, *n)
	return nil
}

func (s *fakeSink) UsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.users[role], nil
}

func TestToUser(t *testing.T) {
	sink := &fakeSink{}
	err := ToUser(context.Background(), sink, 7, model.NotifyRequestStatus,
		"Request Approved", "your request was approved", map[string]any{"request_id": uint64(3)})
	require.NoError(t, err)
	require.Len(t, sink.rows, 1)
	assert.Equal(t, uint64(7), sink.rows[0].UserID)
	assert.Equal(t, "Request Approved", sink.rows[0].Title)
	assert.Equal(t, model.NotifyRequestStatus, sink.rows[0].Type)
}

func TestBroadcastReachesEveryHolder(t *testing.T) {
	sink := &fakeSink{users: map[model.Role][]model.User{
		model.RoleAdmin1: {{ID: 1}, {ID: 2}, {ID: 5}},
	}}
	n, err := Broadcast(context.Background(), sink, model.RoleAdmin1,
		model.NotifyRequestStatus, "New Borrowing Request", "msg", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, sink.rows, 3)
	assert.Equal(t, uint64(5), sink.rows[2].UserID)
}

func TestBroadcastWithNoRecipients(t *testing.T) {
	sink := &fakeSink{}
	n, err := Broadcast(context.Background(), sink, model.RoleAdmin2,
		model.NotifyScheduleUpdate, "t", "m", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.rows)
}

func TestBroadcastPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	sink := &fakeSink{resolveErr: boom}
	_, err := Broadcast(context.Background(), sink, model.RoleAdmin1,
		model.NotifyRequestStatus, "t", "m", nil)
	assert.ErrorIs(t, err, boom)

	sink = &fakeSink{
		users:     map[model.Role][]model.User{model.RoleAdmin1: {{ID: 1}}},
		insertErr: boom,
	}
	_, err = Broadcast(context.Background(), sink, model.RoleAdmin1,
		model.NotifyRequestStatus, "t", "m", nil)
	assert.ErrorIs(t, err, boom)
}
