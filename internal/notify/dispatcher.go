// Package notify fans lifecycle events out into notification rows.
// There are two addressing modes: a single fixed recipient, or a
// broadcast to every user currently holding a role. The recipient set
// for a broadcast is recomputed from the users table at dispatch time;
// there is no stored subscription list. A row's existence is both the
// "send" and the "delivery" record; there is no acknowledgement and no
// retry.
package notify

import (
	"context"

	"github.com/pnj-dev/facility-booking/internal/model"
)

// Sink is where notification rows land and where broadcast recipients
// are resolved from. It is satisfied by the lifecycle transaction so
// dispatch happens atomically with the transition that caused it.
type Sink interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
	UsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// ToUser creates one notification row addressed to a fixed recipient.
func ToUser(ctx context.Context, sink Sink, userID uint64, typ model.NotificationType, title, message string, data map[string]any) error {
	return sink.InsertNotification(ctx, &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
		Data:    data,
	})
}

// Broadcast creates one notification row per user currently holding the
// given role and returns how many rows were created. Resolving zero
// recipients is not an error: the transition that triggered the
// broadcast must not be rolled back just because no admin exists yet.
func Broadcast(ctx context.Context, sink Sink, role model.Role, typ model.NotificationType, title, message string, data map[string]any) (int, error) {
	users, err := sink.UsersByRole(ctx, role)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		if err := ToUser(ctx, sink, u.ID, typ, title, message, data); err != nil {
			return 0, err
		}
	}
	return len(users), nil
}
