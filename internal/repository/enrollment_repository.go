package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/eventsync/eventsync-api/internal/models"
)

const enrollmentColumns = `id, event_id, user_id, status, checked_in, checkin_time, created_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID (which is also the check-in code).
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByEventAndUser returns the participant's enrollment for an event.
func (r *EnrollmentRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE event_id = $1 AND user_id = $2`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, eventID, userID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with event and participant info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.event_id, e.user_id, e.status, e.checked_in, e.checkin_time, e.created_at,
        ev.title AS event_title, ev.status AS event_status, u.full_name AS participant_name
        FROM enrollments e
        LEFT JOIN events ev ON ev.id = e.event_id
        LEFT JOIN users u ON u.id = e.user_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
LEFT JOIN events ev ON ev.id = e.event_id
LEFT JOIN users u ON u.id = e.user_id`
	var conditions []string
	var args []interface{}

	if filter.EventID != "" {
		conditions = append(conditions, fmt.Sprintf("e.event_id = $%d", len(args)+1))
		args = append(args, filter.EventID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.event_id, e.user_id, e.status, e.checked_in, e.checkin_time, e.created_at,
        ev.title AS event_title, ev.status AS event_status, u.full_name AS participant_name
        %s ORDER BY e.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListAllByEvent returns every enrollment of an event without pagination,
// oldest first. Used for the organizer's attendance sheet export.
func (r *EnrollmentRepository) ListAllByEvent(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.event_id, e.user_id, e.status, e.checked_in, e.checkin_time, e.created_at,
        ev.title AS event_title, ev.status AS event_status, u.full_name AS participant_name
        FROM enrollments e
        LEFT JOIN events ev ON ev.id = e.event_id
        LEFT JOIN users u ON u.id = e.user_id
        WHERE e.event_id = $1
        ORDER BY e.created_at ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, eventID); err != nil {
		return nil, fmt.Errorf("list enrollments for export: %w", err)
	}
	return enrollments, nil
}

// Exists checks whether any enrollment exists for the (event, user) pair,
// regardless of status.
func (r *EnrollmentRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE event_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, eventID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return true, nil
}

// CreateReserving inserts the enrollment while holding a row lock on the
// owning event, so the capacity read and the insert are atomic with respect
// to concurrent requests. It reports created=false when the PENDING+APPROVED
// count has already reached maxEnrollments (maxEnrollments <= 0 means
// unlimited). A unique-constraint hit on (event_id, user_id) surfaces as
// ErrDuplicate.
func (r *EnrollmentRepository) CreateReserving(ctx context.Context, enrollment *models.Enrollment, maxEnrollments int) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, enrollment.EventID); err != nil {
		return false, fmt.Errorf("lock event row: %w", err)
	}

	if maxEnrollments > 0 {
		var consumed int
		const countQuery = `SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status IN ($2, $3)`
		if err := tx.GetContext(ctx, &consumed, countQuery, enrollment.EventID, models.EnrollmentStatusPending, models.EnrollmentStatusApproved); err != nil {
			return false, fmt.Errorf("count consumed capacity: %w", err)
		}
		if consumed >= maxEnrollments {
			return false, nil
		}
	}

	const insertQuery = `INSERT INTO enrollments (id, event_id, user_id, status, checked_in, checkin_time, created_at)
        VALUES (:id, :event_id, :user_id, :status, :checked_in, :checkin_time, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return false, ErrDuplicate
		}
		return false, fmt.Errorf("create enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit enrollment tx: %w", err)
	}
	return true, nil
}

// UpdateStatusFromPending moves a PENDING enrollment to APPROVED or REJECTED
// with compare-and-set semantics. It reports false when the enrollment was no
// longer pending.
func (r *EnrollmentRepository) UpdateStatusFromPending(ctx context.Context, id string, to models.EnrollmentStatus) (bool, error) {
	const query = `UPDATE enrollments SET status = $2 WHERE id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, to, models.EnrollmentStatusPending)
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}
	return n == 1, nil
}

// CheckIn records attendance exactly once. The conditional write guarantees
// that concurrent attempts with the same code yield one success; subsequent
// calls report recorded=false without touching checkin_time.
func (r *EnrollmentRepository) CheckIn(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE enrollments SET checked_in = TRUE, checkin_time = $2 WHERE id = $1 AND checked_in = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("record check-in: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record check-in: %w", err)
	}
	return n == 1, nil
}
