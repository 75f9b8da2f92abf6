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

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = fmt.Errorf("duplicate record")

const userColumns = `id, email, password_hash, full_name, city, photo_url, is_participation_visible, role, xp, review_count, organizer_rating, created_at`

// UserRepository provides database access for users and organizer progress.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, email, password_hash, full_name, city, photo_url, is_participation_visible, role, xp, review_count, organizer_rating, created_at)
        VALUES (:id, :email, :password_hash, :full_name, :city, :photo_url, :is_participation_visible, :role, :xp, :review_count, :organizer_rating, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile persists the mutable account fields. Email, role and the
// reputation columns are never touched here.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET full_name = $2, city = $3, photo_url = $4, is_participation_visible = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, user.ID, user.FullName, user.City, user.PhotoURL, user.ParticipationVisible)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AwardReviewXP credits the organizer for a received review in a single
// statement: XP is an atomic increment and the rating mean is folded in
// incrementally, so concurrent submissions cannot lose updates.
func (r *UserRepository) AwardReviewXP(ctx context.Context, organizerID string, xpAward, rating int) error {
	const query = `UPDATE users SET
        xp = xp + $2,
        organizer_rating = ((organizer_rating * review_count) + $3) / (review_count + 1),
        review_count = review_count + 1
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, organizerID, xpAward, rating)
	if err != nil {
		return fmt.Errorf("award review xp: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListOrganizersByXP returns the organizer leaderboard, highest XP first.
func (r *UserRepository) ListOrganizersByXP(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT id, full_name, photo_url, xp, organizer_rating FROM users
        WHERE role = $1 ORDER BY xp DESC, full_name ASC LIMIT $2`
	var entries []models.RankingEntry
	if err := r.db.SelectContext(ctx, &entries, query, models.RoleOrganizer, limit); err != nil {
		return nil, fmt.Errorf("list organizers by xp: %w", err)
	}
	return entries, nil
}
