package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync-api/internal/models"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	byID       map[string]*models.Enrollment
	byEventKey map[string]*models.Enrollment
	capacity   int
	consumed   int
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

func (m *mockEnrollmentRepo) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error) {
	enrollment, ok := m.byEventKey[eventID+"/"+userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	enrollment, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.EnrollmentDetail{Enrollment: *enrollment}, nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var details []models.EnrollmentDetail
	for _, enrollment := range m.byID {
		if filter.UserID != "" && enrollment.UserID != filter.UserID {
			continue
		}
		if filter.EventID != "" && enrollment.EventID != filter.EventID {
			continue
		}
		details = append(details, models.EnrollmentDetail{Enrollment: *enrollment})
	}
	return details, len(details), nil
}

func (m *mockEnrollmentRepo) ListAllByEvent(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	for _, enrollment := range m.byID {
		if enrollment.EventID != eventID {
			continue
		}
		details = append(details, models.EnrollmentDetail{Enrollment: *enrollment, ParticipantName: "User " + enrollment.UserID})
	}
	return details, nil
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	_, ok := m.byEventKey[eventID+"/"+userID]
	return ok, nil
}

func (m *mockEnrollmentRepo) CreateReserving(ctx context.Context, enrollment *models.Enrollment, maxEnrollments int) (bool, error) {
	if maxEnrollments > 0 && m.consumed >= maxEnrollments {
		return false, nil
	}
	if enrollment.ID == "" {
		enrollment.ID = "enr-" + enrollment.UserID
	}
	m.store(enrollment)
	m.consumed++
	return true, nil
}

func (m *mockEnrollmentRepo) UpdateStatusFromPending(ctx context.Context, id string, to models.EnrollmentStatus) (bool, error) {
	enrollment, ok := m.byID[id]
	if !ok || enrollment.Status != models.EnrollmentStatusPending {
		return false, nil
	}
	enrollment.Status = to
	return true, nil
}

func (m *mockEnrollmentRepo) store(enrollment *models.Enrollment) {
	if m.byID == nil {
		m.byID = make(map[string]*models.Enrollment)
	}
	if m.byEventKey == nil {
		m.byEventKey = make(map[string]*models.Enrollment)
	}
	m.byID[enrollment.ID] = enrollment
	m.byEventKey[enrollment.EventID+"/"+enrollment.UserID] = enrollment
}

type mockEventReader struct {
	events map[string]*models.Event
}

func (m *mockEventReader) FindByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

type recordingNotifier struct {
	changes []models.EnrollmentStatus
}

func (r *recordingNotifier) EnrollmentChanged(enrollment *models.Enrollment, event *models.Event) {
	r.changes = append(r.changes, enrollment.Status)
}

func publishedEvent(id, organizerID string, max int, requiresApproval bool) *models.Event {
	event := &models.Event{ID: id, OrganizerID: organizerID, Title: "Meetup", Status: models.EventStatusPublished, RequiresApproval: requiresApproval}
	if max > 0 {
		event.MaxEnrollments = &max
	}
	return event
}

func participant(id string) models.Actor {
	return models.Actor{UserID: id, Role: models.RoleParticipant}
}

func TestEnrollmentRequestOnlyWhilePublished(t *testing.T) {
	for _, status := range []models.EventStatus{models.EventStatusDraft, models.EventStatusInProgress, models.EventStatusFinished, models.EventStatusCanceled} {
		repo := &mockEnrollmentRepo{}
		events := &mockEventReader{events: map[string]*models.Event{
			"evt-1": {ID: "evt-1", OrganizerID: "org-1", Status: status},
		}}
		svc := NewEnrollmentService(repo, events, nil, nil, nil)

		_, err := svc.Request(context.Background(), participant("u1"), "evt-1")
		require.Error(t, err, "status=%s", status)
		assert.True(t, errors.Is(err, appErrors.ErrEventNotOpen), "status=%s", status)
	}
}

func TestEnrollmentRequestAutoApproves(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, false)}}
	notifier := &recordingNotifier{}
	svc := NewEnrollmentService(repo, events, notifier, nil, nil)

	enrollment, err := svc.Request(context.Background(), participant("u1"), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, enrollment.Status)
	assert.Equal(t, []models.EnrollmentStatus{models.EnrollmentStatusApproved}, notifier.changes)
}

func TestEnrollmentRequestPendingWhenApprovalRequired(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, true)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	enrollment, err := svc.Request(context.Background(), participant("u1"), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
}

func TestEnrollmentRequestDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	repo.store(&models.Enrollment{ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusRejected})
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, false)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	// A rejected enrollment still blocks re-enrollment; one per pair, ever.
	_, err := svc.Request(context.Background(), participant("u1"), "evt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyEnrolled))
}

func TestEnrollmentRequestCapacityExceeded(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 1, true)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	_, err := svc.Request(context.Background(), participant("u1"), "evt-1")
	require.NoError(t, err)

	// The pending enrollment reserves the only slot.
	_, err = svc.Request(context.Background(), participant("u2"), "evt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestEnrollmentApproveFlow(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	repo.store(&models.Enrollment{ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusPending})
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, true)}}
	notifier := &recordingNotifier{}
	svc := NewEnrollmentService(repo, events, notifier, nil, nil)

	enrollment, err := svc.Approve(context.Background(), organizerActor("org-1"), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, enrollment.Status)
	assert.Equal(t, []models.EnrollmentStatus{models.EnrollmentStatusApproved}, notifier.changes)

	// Decisions are terminal.
	_, err = svc.Reject(context.Background(), organizerActor("org-1"), "enr-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidEnrollmentState))
}

func TestEnrollmentDecideOnlyOrganizer(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	repo.store(&models.Enrollment{ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusPending})
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, true)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	_, err := svc.Approve(context.Background(), organizerActor("org-2"), "enr-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthorized))
	assert.Equal(t, models.EnrollmentStatusPending, repo.byID["enr-1"].Status)
}

func TestEnrollmentListMineScopesToActor(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	repo.store(&models.Enrollment{ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusApproved})
	repo.store(&models.Enrollment{ID: "enr-2", EventID: "evt-1", UserID: "u2", Status: models.EnrollmentStatusApproved})
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, false)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	mine, pagination, err := svc.ListMine(context.Background(), participant("u1"), models.EnrollmentFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "u1", mine[0].UserID)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
}

func TestExportEnrollmentsOnlyOrganizer(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, false)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	_, _, err := svc.Export(context.Background(), organizerActor("org-2"), "evt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthorized))
}

func TestExportEnrollmentsSheet(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	checkin := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	repo.store(&models.Enrollment{ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusApproved, CheckedIn: true, CheckinTime: &checkin})
	repo.store(&models.Enrollment{ID: "enr-2", EventID: "evt-1", UserID: "u2", Status: models.EnrollmentStatusPending})
	repo.store(&models.Enrollment{ID: "enr-3", EventID: "evt-2", UserID: "u3", Status: models.EnrollmentStatusApproved})
	events := &mockEventReader{events: map[string]*models.Event{"evt-1": publishedEvent("evt-1", "org-1", 0, false)}}
	svc := NewEnrollmentService(repo, events, nil, nil, nil)

	content, filename, err := svc.Export(context.Background(), organizerActor("org-1"), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "enrollments_evt-1.csv", filename)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per enrollment of the event")
	assert.Equal(t, []string{"participant", "status", "checked_in", "checkin_time", "enrolled_at"}, records[0])

	byParticipant := make(map[string][]string)
	for _, record := range records[1:] {
		byParticipant[record[0]] = record
	}
	require.Contains(t, byParticipant, "User u1")
	assert.Equal(t, "APPROVED", byParticipant["User u1"][1])
	assert.Equal(t, "true", byParticipant["User u1"][2])
	assert.Equal(t, "2026-03-14T19:30:00Z", byParticipant["User u1"][3])
	require.Contains(t, byParticipant, "User u2")
	assert.Equal(t, "false", byParticipant["User u2"][2])
	assert.Empty(t, byParticipant["User u2"][3])
}
