package model

import "time"

// RequestStatus is the workflow state of a borrowing request.
//
// pending is the initial state. admin1 moves a pending request to
// approved or rejected. scheduled is entered only as a side effect of a
// schedule being created against an approved request, and reverts to
// approved when that schedule is deleted. rejected is terminal.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestScheduled RequestStatus = "scheduled"
)

// BorrowingRequest is the central workflow entity: a user's application
// to borrow a building for an event on a given date and time window.
//
// Fields:
//  ID                   - primary key identifier.
//  UserID               - requester (owner) of the request.
//  BuildingID           - building being requested.
//  Title                - event title.
//  Description          - event description.
//  Organization         - organization holding the event.
//  ContactPerson        - name of the contact person.
//  ContactPhone         - phone number of the contact person.
//  RequestDate          - the day the building is requested for.
//  StartTime            - start of the time window, "HH:MM".
//  EndTime              - end of the time window, "HH:MM", after StartTime.
//  ExpectedParticipants - expected head count, at least 1.
//  EquipmentNeeded      - optional equipment note.
//  PDFAttachment        - optional blob-store reference to a PDF.
//  Status               - workflow state, see RequestStatus.
//  AdminNotes           - optional notes left by the deciding admin.
//  RejectionReason      - reason text, required when Status is rejected.
//  ApprovedBy           - admin1 user who decided the request.
//  ApprovedAt           - when the decision was made; set together with
//                         ApprovedBy on both approval and rejection.
//  CreatedAt            - creation timestamp.
//  UpdatedAt            - last update timestamp.
type BorrowingRequest struct {
	ID                   uint64        `json:"id"`
	UserID               uint64        `json:"user_id"`
	BuildingID           uint64        `json:"building_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Organization         string        `json:"organization"`
	ContactPerson        string        `json:"contact_person"`
	ContactPhone         string        `json:"contact_phone"`
	RequestDate          time.Time     `json:"request_date"`
	StartTime            string        `json:"start_time"`
	EndTime              string        `json:"end_time"`
	ExpectedParticipants uint32        `json:"expected_participants"`
	EquipmentNeeded      *string       `json:"equipment_needed,omitempty"`
	PDFAttachment        *string       `json:"pdf_attachment,omitempty"`
	Status               RequestStatus `json:"status"`
	AdminNotes           *string       `json:"admin_notes,omitempty"`
	RejectionReason      *string       `json:"rejection_reason,omitempty"`
	ApprovedBy           *uint64       `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time    `json:"approved_at,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}
