package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync-api/internal/models"
)

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEventCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.Event{OrganizerID: "org-1", Title: "Go Conf", Location: "Recife"}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.False(t, event.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventTransitionStatusMatchesSource(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $3 WHERE id = $1 AND status = $2")).
		WithArgs("evt-1", models.EventStatusPublished, models.EventStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))

	moved, err := repo.TransitionStatus(context.Background(), "evt-1", models.EventStatusPublished, models.EventStatusInProgress)
	require.NoError(t, err)
	assert.True(t, moved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventTransitionStatusStaleSource(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $3 WHERE id = $1 AND status = $2")).
		WithArgs("evt-1", models.EventStatusDraft, models.EventStatusPublished).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.TransitionStatus(context.Background(), "evt-1", models.EventStatusDraft, models.EventStatusPublished)
	require.NoError(t, err)
	assert.False(t, moved, "a concurrent transition must leave this one without effect")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCountConsumed(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status IN ($2, $3)")).
		WithArgs("evt-1", models.EnrollmentStatusPending, models.EnrollmentStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	consumed, err := repo.CountConsumed(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 3, consumed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "organizer_id", "title", "description", "location", "starts_at",
		"banner_ref", "max_enrollments", "requires_approval", "status", "created_at", "organizer_name",
	}).AddRow("evt-1", "org-1", "Go Conf", "", "Recife", now, "", 100, false, string(models.EventStatusPublished), now, "Ana")

	mock.ExpectQuery(regexp.QuoteMeta("FROM events e LEFT JOIN users u ON u.id = e.organizer_id WHERE e.status = $1 ORDER BY e.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.EventStatusPublished).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM events e").
		WithArgs(models.EventStatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.EventFilter{Status: models.EventStatusPublished})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, "Ana", events[0].OrganizerName)
	require.NoError(t, mock.ExpectationsWereMet())
}
