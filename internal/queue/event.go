// Package queue defines message payloads exchanged over the message broker.
package queue

// RequestLifecycleEvent is published after a borrowing request changes
// state. It carries enough context for downstream consumers to log or
// trigger analytics without querying the primary database.
type RequestLifecycleEvent struct {
	RequestID    uint64  `json:"request_id"`
	UserID       uint64  `json:"user_id"`
	BuildingID   uint64  `json:"building_id"`
	BuildingName string  `json:"building_name,omitempty"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	ActorID      uint64  `json:"actor_id"`
	ScheduleID   *uint64 `json:"schedule_id,omitempty"`
	OccurredAt   string  `json:"occurred_at"`
}
