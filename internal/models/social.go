package models

import "time"

// FriendshipStatus is the approval state of a friendship request. ACCEPTED
// and REJECTED are terminal.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "PENDING"
	FriendshipStatusAccepted FriendshipStatus = "ACCEPTED"
	FriendshipStatusRejected FriendshipStatus = "REJECTED"
)

// Friendship is a connection request between two attendees of the same
// event. Exactly one request may exist per (from, to, event) triple.
type Friendship struct {
	ID         string           `db:"id" json:"id"`
	FromUserID string           `db:"from_user_id" json:"from_user_id"`
	ToUserID   string           `db:"to_user_id" json:"to_user_id"`
	EventID    string           `db:"event_id" json:"event_id"`
	Status     FriendshipStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// FriendshipDetail enriches a friendship with user names and the event title.
type FriendshipDetail struct {
	Friendship
	FromUserName string `db:"from_user_name" json:"from_user_name"`
	ToUserName   string `db:"to_user_name" json:"to_user_name"`
	EventTitle   string `db:"event_title" json:"event_title"`
}

// Message is a direct message between two accepted friends.
type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Body        string    `db:"body" json:"body"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MessageDetail enriches a message with the sender's name.
type MessageDetail struct {
	Message
	SenderName string `db:"sender_name" json:"sender_name"`
}

// RequestFriendshipRequest asks another confirmed attendee of an event to
// connect.
type RequestFriendshipRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	EventID  string `json:"event_id" validate:"required"`
}

// SendMessageRequest is the payload for a direct message.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Body        string `json:"body" validate:"required"`
}
