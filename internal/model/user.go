package model

import "time"

// Role identifies what a user is allowed to do in the booking workflow.
// There are exactly three roles and no hierarchy between them: regular
// users submit borrowing requests, admin1 decides on them and admin2
// places approved requests onto the calendar.
type Role string

const (
	RoleUser   Role = "user"   // submits and manages own requests
	RoleAdmin1 Role = "admin1" // approves or rejects pending requests
	RoleAdmin2 Role = "admin2" // creates, edits and deletes schedules
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin1, RoleAdmin2:
		return true
	}
	return false
}

// User represents a row in the `users` table. The role is assigned at
// registration or seeding time and never changes afterwards; there is no
// role-change operation anywhere in the system.
//
// Fields:
//  ID           - primary key identifier.
//  Name         - display name of the user.
//  Email        - unique email address (stored lower-cased).
//  PasswordHash - bcrypt hashed password.
//  Role         - one of user, admin1, admin2.
//  Organization - organization the user belongs to (optional).
//  Phone        - contact phone number (optional).
//  CreatedAt    - timestamp of creation.
//  UpdatedAt    - timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Organization *string   `json:"organization,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
