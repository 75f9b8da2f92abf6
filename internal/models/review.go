package models

import "time"

// Review is a participant's one-time rating of a finished event they attended.
// Immutable after creation; at most one per (event, user) pair.
type Review struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReviewDetail enriches a review with the author's public info.
type ReviewDetail struct {
	Review
	AuthorName string `db:"author_name" json:"author_name"`
}

// SubmitReviewRequest is the payload for submitting a review.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
