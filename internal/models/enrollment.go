package models

import "time"

// EnrollmentStatus is the approval sub-workflow of an enrollment. APPROVED and
// REJECTED are terminal regardless of what happens to the owning event.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusApproved EnrollmentStatus = "APPROVED"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// Enrollment is a participant's request to attend an event. Its ID doubles as
// the check-in code encoded in the participant's QR ticket. Exactly one
// enrollment may exist per (event, user) pair.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	EventID     string           `db:"event_id" json:"event_id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	CheckedIn   bool             `db:"checked_in" json:"checked_in"`
	CheckinTime *time.Time       `db:"checkin_time" json:"checkin_time,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// EnrollmentDetail enriches Enrollment with event and participant info.
type EnrollmentDetail struct {
	Enrollment
	EventTitle      string      `db:"event_title" json:"event_title"`
	EventStatus     EventStatus `db:"event_status" json:"event_status"`
	ParticipantName string      `db:"participant_name" json:"participant_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	EventID  string
	UserID   string
	Status   EnrollmentStatus
	Page     int
	PageSize int
}
