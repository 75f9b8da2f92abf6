package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/eventsync/eventsync-api/internal/models"
)

const friendshipColumns = `id, from_user_id, to_user_id, event_id, status, created_at`

// FriendshipRepository handles persistence of friendship requests.
type FriendshipRepository struct {
	db *sqlx.DB
}

// NewFriendshipRepository constructs the repository.
func NewFriendshipRepository(db *sqlx.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// FindByID returns a friendship request by its ID.
func (r *FriendshipRepository) FindByID(ctx context.Context, id string) (*models.Friendship, error) {
	query := fmt.Sprintf(`SELECT %s FROM friendships WHERE id = $1`, friendshipColumns)
	var friendship models.Friendship
	if err := r.db.GetContext(ctx, &friendship, query, id); err != nil {
		return nil, err
	}
	return &friendship, nil
}

// Create persists a new friendship request. A unique-constraint hit on
// (from_user_id, to_user_id, event_id) surfaces as ErrDuplicate.
func (r *FriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if friendship.ID == "" {
		friendship.ID = uuid.NewString()
	}
	if friendship.CreatedAt.IsZero() {
		friendship.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO friendships (id, from_user_id, to_user_id, event_id, status, created_at)
        VALUES (:id, :from_user_id, :to_user_id, :event_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, friendship); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("create friendship: %w", err)
	}
	return nil
}

// ListByUser returns every request the user sent or received, newest first.
func (r *FriendshipRepository) ListByUser(ctx context.Context, userID string) ([]models.FriendshipDetail, error) {
	const query = `SELECT f.id, f.from_user_id, f.to_user_id, f.event_id, f.status, f.created_at,
        fu.full_name AS from_user_name, tu.full_name AS to_user_name, ev.title AS event_title
        FROM friendships f
        LEFT JOIN users fu ON fu.id = f.from_user_id
        LEFT JOIN users tu ON tu.id = f.to_user_id
        LEFT JOIN events ev ON ev.id = f.event_id
        WHERE f.from_user_id = $1 OR f.to_user_id = $1
        ORDER BY f.created_at DESC`
	var friendships []models.FriendshipDetail
	if err := r.db.SelectContext(ctx, &friendships, query, userID); err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}
	return friendships, nil
}

// UpdateStatusFromPending moves a PENDING request to ACCEPTED or REJECTED
// with compare-and-set semantics. It reports false when the request was no
// longer pending.
func (r *FriendshipRepository) UpdateStatusFromPending(ctx context.Context, id string, to models.FriendshipStatus) (bool, error) {
	const query = `UPDATE friendships SET status = $2 WHERE id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, to, models.FriendshipStatusPending)
	if err != nil {
		return false, fmt.Errorf("update friendship status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update friendship status: %w", err)
	}
	return n == 1, nil
}

// AreFriends reports whether an ACCEPTED friendship exists between the two
// users in either direction, regardless of which event connected them.
func (r *FriendshipRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	const query = `SELECT 1 FROM friendships WHERE status = $1
        AND ((from_user_id = $2 AND to_user_id = $3) OR (from_user_id = $3 AND to_user_id = $2))
        LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, models.FriendshipStatusAccepted, userA, userB); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return true, nil
}
