package model

import "time"

// BuildingStatus describes whether a building can currently be offered
// to requesters. Only `available` buildings appear in the pick list at
// request-creation time; the status does not affect requests or
// schedules that already exist.
type BuildingStatus string

const (
	BuildingAvailable   BuildingStatus = "available"
	BuildingMaintenance BuildingStatus = "maintenance"
	BuildingUnavailable BuildingStatus = "unavailable"
)

// Building is a bookable facility.
//
// Fields:
//  ID             - primary key identifier.
//  Name           - building name.
//  Description    - optional free-text description.
//  Capacity       - maximum number of occupants, always positive.
//  Specifications - optional free-text list of amenities.
//  Images         - list of image URLs, stored as a JSON array.
//  Status         - availability status, see BuildingStatus.
//  CreatedAt      - creation timestamp.
//  UpdatedAt      - last update timestamp.
type Building struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	Description    *string        `json:"description,omitempty"`
	Capacity       uint32         `json:"capacity"`
	Specifications *string        `json:"specifications,omitempty"`
	Images         []string       `json:"images,omitempty"`
	Status         BuildingStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
