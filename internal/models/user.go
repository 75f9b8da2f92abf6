package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleParticipant UserRole = "PARTICIPANT"
	RoleOrganizer   UserRole = "ORGANIZER"
)

// User represents an application user stored in the users table. XP,
// ReviewCount and OrganizerRating only accumulate for organizers; the league
// is derived from XP on read and never persisted.
type User struct {
	ID                     string    `db:"id" json:"id"`
	Email                  string    `db:"email" json:"email"`
	PasswordHash           string    `db:"password_hash" json:"-"`
	FullName               string    `db:"full_name" json:"full_name"`
	City                   *string   `db:"city" json:"city,omitempty"`
	PhotoURL               *string   `db:"photo_url" json:"photo_url,omitempty"`
	ParticipationVisible   bool      `db:"is_participation_visible" json:"is_participation_visible"`
	Role                   UserRole  `db:"role" json:"role"`
	XP                     int       `db:"xp" json:"xp"`
	ReviewCount            int       `db:"review_count" json:"-"`
	OrganizerRating        float64   `db:"organizer_rating" json:"organizer_rating"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

// UpdateProfileRequest changes the mutable account fields. Email, role and
// every reputation figure stay read-only; nil fields are left untouched.
type UpdateProfileRequest struct {
	FullName             *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=150"`
	City                 *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PhotoURL             *string `json:"photo_url,omitempty" validate:"omitempty,max=500"`
	ParticipationVisible *bool   `json:"is_participation_visible,omitempty"`
}

// Profile is the user enriched with the derived league standing.
type Profile struct {
	User
	League LeagueStanding `json:"league"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
