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

// ReviewRepository handles persistence of event reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Exists reports whether the participant already reviewed the event.
func (r *ReviewRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	const query = `SELECT 1 FROM reviews WHERE event_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, eventID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return true, nil
}

// Create persists a new review. A unique-constraint hit on (event_id, user_id)
// surfaces as ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO reviews (id, event_id, user_id, rating, comment, created_at)
        VALUES (:id, :event_id, :user_id, :rating, :comment, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ListByEvent returns the reviews of an event with author names, newest first.
func (r *ReviewRepository) ListByEvent(ctx context.Context, eventID string) ([]models.ReviewDetail, error) {
	const query = `SELECT rv.id, rv.event_id, rv.user_id, rv.rating, rv.comment, rv.created_at,
        u.full_name AS author_name
        FROM reviews rv
        LEFT JOIN users u ON u.id = rv.user_id
        WHERE rv.event_id = $1 ORDER BY rv.created_at DESC`
	var reviews []models.ReviewDetail
	if err := r.db.SelectContext(ctx, &reviews, query, eventID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
