package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eventsync/eventsync-api/internal/models"
)

// MessageRepository handles persistence of direct messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs the repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, sender_id, recipient_id, subject, body, read, created_at)
        VALUES (:id, :sender_id, :recipient_id, :subject, :body, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListByUser returns the messages the user sent or received, newest first.
func (r *MessageRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.MessageDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT m.id, m.sender_id, m.recipient_id, m.subject, m.body, m.read, m.created_at,
        u.full_name AS sender_name
        FROM messages m
        LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.sender_id = $1 OR m.recipient_id = $1
        ORDER BY m.created_at DESC LIMIT $2`
	var messages []models.MessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// MarkRead flags a received message as read. Scoped to the recipient so a
// sender cannot mark the other side's inbox.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `UPDATE messages SET read = TRUE WHERE id = $1 AND recipient_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, recipientID); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}
