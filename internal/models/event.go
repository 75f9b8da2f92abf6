package models

import "time"

// EventStatus is the lifecycle state of an event. Transitions are strictly
// forward except cancellation; CANCELED and FINISHED are terminal.
type EventStatus string

const (
	EventStatusDraft      EventStatus = "DRAFT"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusCanceled   EventStatus = "CANCELED"
	EventStatusFinished   EventStatus = "FINISHED"
)

// Terminal reports whether no further transition is possible.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCanceled || s == EventStatusFinished
}

// Event is a community event owned by its organizer. The organizer reference
// is immutable after creation and events are never physically deleted.
type Event struct {
	ID               string      `db:"id" json:"id"`
	OrganizerID      string      `db:"organizer_id" json:"organizer_id"`
	Title            string      `db:"title" json:"title"`
	Description      string      `db:"description" json:"description"`
	Location         string      `db:"location" json:"location"`
	StartsAt         time.Time   `db:"starts_at" json:"starts_at"`
	BannerRef        *string     `db:"banner_ref" json:"banner_ref,omitempty"`
	MaxEnrollments   *int        `db:"max_enrollments" json:"max_enrollments,omitempty"`
	RequiresApproval bool        `db:"requires_approval" json:"requires_approval"`
	Status           EventStatus `db:"status" json:"status"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
}

// Bounded reports whether the event enforces a capacity limit. A nil or zero
// max means unlimited.
func (e *Event) Bounded() bool {
	return e.MaxEnrollments != nil && *e.MaxEnrollments > 0
}

// EventDetail enriches an event with organizer info and the derived flags the
// presentation layer consumes. Flags are computed on read, never stored.
type EventDetail struct {
	Event
	OrganizerName     string            `db:"organizer_name" json:"organizer_name"`
	IsEnrolled        bool              `json:"is_enrolled"`
	EnrollmentStatus  *EnrollmentStatus `json:"enrollment_status,omitempty"`
	ConsumedCapacity  int               `json:"consumed_capacity"`
	VacanciesLeft     *int              `json:"vacancies_remaining,omitempty"`
	IsSoldOut         bool              `json:"is_sold_out"`
	CanCheckIn        bool              `json:"can_check_in"`
	CanReview         bool              `json:"can_review"`
	CanGetCertificate bool              `json:"can_get_certificate"`
}

// EventFilter captures filtering criteria for listing events.
type EventFilter struct {
	OrganizerID string
	Status      EventStatus
	Search      string
	Page        int
	PageSize    int
}

// CreateEventRequest is the payload for creating a draft event.
type CreateEventRequest struct {
	Title            string    `json:"title" validate:"required,max=200"`
	Description      string    `json:"description" validate:"required"`
	Location         string    `json:"location" validate:"required,max=255"`
	StartsAt         time.Time `json:"starts_at" validate:"required"`
	BannerRef        *string   `json:"banner_ref,omitempty"`
	MaxEnrollments   *int      `json:"max_enrollments,omitempty" validate:"omitempty,min=0"`
	RequiresApproval bool      `json:"requires_approval"`
}
