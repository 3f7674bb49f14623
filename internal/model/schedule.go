package model

import "time"

// Schedule is the calendar entry an admin2 user attaches to an approved
// borrowing request. At most one schedule exists per request; creating
// it moves the request to scheduled, deleting it moves the request back
// to approved. The building is copied from the request at creation time.
//
// Fields:
//  ID                 - primary key identifier.
//  BorrowingRequestID - owning request (unique).
//  BuildingID         - building, copied from the request.
//  Title              - schedule title as shown on the calendar.
//  ScheduledDate      - the day of the event.
//  StartTime          - start of the slot, "HH:MM".
//  EndTime            - end of the slot, "HH:MM", after StartTime.
//  Notes              - optional free-text notes.
//  CreatedBy          - admin2 user who created the schedule.
//  CreatedAt          - creation timestamp.
//  UpdatedAt          - last update timestamp.
type Schedule struct {
	ID                 uint64    `json:"id"`
	BorrowingRequestID uint64    `json:"borrowing_request_id"`
	BuildingID         uint64    `json:"building_id"`
	Title              string    `json:"title"`
	ScheduledDate      time.Time `json:"scheduled_date"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedBy          uint64    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
