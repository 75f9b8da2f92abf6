package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eventsync/eventsync-api/internal/models"
)

const eventColumns = `id, organizer_id, title, description, location, starts_at, banner_ref, max_enrollments, requires_approval, status, created_at`

// EventRepository handles persistence of events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create persists a new draft event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Status == "" {
		event.Status = models.EventStatusDraft
	}
	const query = `INSERT INTO events (id, organizer_id, title, description, location, starts_at, banner_ref, max_enrollments, requires_approval, status, created_at)
        VALUES (:id, :organizer_id, :title, :description, :location, :starts_at, :banner_ref, :max_enrollments, :requires_approval, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// FindByID returns an event by its ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// FindDetailByID returns an event joined with its organizer's name.
func (r *EventRepository) FindDetailByID(ctx context.Context, id string) (*models.EventDetail, error) {
	const query = `SELECT e.id, e.organizer_id, e.title, e.description, e.location, e.starts_at, e.banner_ref,
        e.max_enrollments, e.requires_approval, e.status, e.created_at, u.full_name AS organizer_name
        FROM events e
        LEFT JOIN users u ON u.id = e.organizer_id
        WHERE e.id = $1`
	var detail models.EventDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns events filtered by the provided criteria, newest first.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error) {
	base := `FROM events e LEFT JOIN users u ON u.id = e.organizer_id`
	var conditions []string
	var args []interface{}

	if filter.OrganizerID != "" {
		conditions = append(conditions, fmt.Sprintf("e.organizer_id = $%d", len(args)+1))
		args = append(args, filter.OrganizerID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("e.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf(`SELECT e.id, e.organizer_id, e.title, e.description, e.location, e.starts_at, e.banner_ref,
        e.max_enrollments, e.requires_approval, e.status, e.created_at, u.full_name AS organizer_name
        %s ORDER BY e.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var events []models.EventDetail
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// TransitionStatus moves an event from one status to another with
// compare-and-set semantics. It reports false when the event was not in the
// expected source status, leaving the row untouched.
func (r *EventRepository) TransitionStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	const query = `UPDATE events SET status = $3 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("transition event status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition event status: %w", err)
	}
	return n == 1, nil
}

// CountConsumed returns the number of enrollments reserving capacity for the
// event. Both PENDING and APPROVED reserve a slot.
func (r *EventRepository) CountConsumed(ctx context.Context, eventID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status IN ($2, $3)`
	var consumed int
	if err := r.db.GetContext(ctx, &consumed, query, eventID, models.EnrollmentStatusPending, models.EnrollmentStatusApproved); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("count consumed capacity: %w", err)
	}
	return consumed, nil
}
