package model

import "time"

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	NotifyRequestStatus  NotificationType = "request_status"
	NotifyScheduleUpdate NotificationType = "schedule_update"
	NotifySystem         NotificationType = "system"
)

// Notification is an append-only event record addressed to one user.
// Rows are created exclusively by lifecycle transitions; the only
// mutation afterwards is flipping IsRead to true, which only the
// recipient may do. The row's existence is both the "send" and the
// "delivery" record; there is no acknowledgement or retry.
//
// Fields:
//  ID        - primary key identifier.
//  UserID    - recipient of the notification.
//  Title     - short headline.
//  Message   - human-readable body.
//  Type      - see NotificationType.
//  Data      - opaque structured payload (referenced request/schedule
//              ids), stored as JSON.
//  IsRead    - whether the recipient has read it; defaults to false.
//  CreatedAt - creation timestamp.
type Notification struct {
	ID        uint64           `json:"id"`
	UserID    uint64           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Data      map[string]any   `json:"data,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
