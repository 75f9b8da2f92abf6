package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync-api/internal/models"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type mockEventRepo struct {
	events       map[string]*models.Event
	consumed     map[string]int
	casConflict  bool
	createCalled bool
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if m.events == nil {
		m.events = make(map[string]*models.Event)
	}
	if event.ID == "" {
		event.ID = "evt-" + event.Title
	}
	m.events[event.ID] = event
	m.createCalled = true
	return nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (m *mockEventRepo) FindDetailByID(ctx context.Context, id string) (*models.EventDetail, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.EventDetail{Event: *event, OrganizerName: "Org"}, nil
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error) {
	var details []models.EventDetail
	for _, event := range m.events {
		details = append(details, models.EventDetail{Event: *event})
	}
	return details, len(details), nil
}

func (m *mockEventRepo) TransitionStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	if m.casConflict {
		return false, nil
	}
	event, ok := m.events[id]
	if !ok || event.Status != from {
		return false, nil
	}
	event.Status = to
	return true, nil
}

func (m *mockEventRepo) CountConsumed(ctx context.Context, eventID string) (int, error) {
	return m.consumed[eventID], nil
}

type mockEnrollmentReader struct {
	enrollments map[string]*models.Enrollment
}

func (m *mockEnrollmentReader) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error) {
	enrollment, ok := m.enrollments[eventID+"/"+userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

type mockReviewReader struct {
	reviewed map[string]bool
}

func (m *mockReviewReader) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	return m.reviewed[eventID+"/"+userID], nil
}

func newEventService(repo *mockEventRepo) *EventService {
	return NewEventService(repo, &mockEnrollmentReader{}, &mockReviewReader{}, nil, nil)
}

func organizerActor(id string) models.Actor {
	return models.Actor{UserID: id, Role: models.RoleOrganizer}
}

func seedEvent(repo *mockEventRepo, id, organizerID string, status models.EventStatus) *models.Event {
	if repo.events == nil {
		repo.events = make(map[string]*models.Event)
	}
	event := &models.Event{ID: id, OrganizerID: organizerID, Title: "Meetup", Status: status}
	repo.events[id] = event
	return event
}

func TestEventCreateRequiresOrganizer(t *testing.T) {
	repo := &mockEventRepo{}
	svc := newEventService(repo)

	_, err := svc.Create(context.Background(), models.Actor{UserID: "u1", Role: models.RoleParticipant}, models.CreateEventRequest{
		Title: "Meetup", Description: "d", Location: "l", StartsAt: time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthorized))
	assert.False(t, repo.createCalled)
}

func TestEventCreateStartsAsDraft(t *testing.T) {
	repo := &mockEventRepo{}
	svc := newEventService(repo)

	event, err := svc.Create(context.Background(), organizerActor("org-1"), models.CreateEventRequest{
		Title: "Meetup", Description: "d", Location: "l", StartsAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.Equal(t, "org-1", event.OrganizerID)
}

func TestEventLifecycleTransitions(t *testing.T) {
	type step func(*EventService, context.Context, models.Actor, string) (*models.Event, error)
	publish := (*EventService).Publish
	start := (*EventService).Start
	finish := (*EventService).Finish
	cancel := (*EventService).Cancel

	cases := []struct {
		name    string
		from    models.EventStatus
		op      step
		ok      bool
		expects models.EventStatus
	}{
		{"publish draft", models.EventStatusDraft, publish, true, models.EventStatusPublished},
		{"publish published", models.EventStatusPublished, publish, false, ""},
		{"publish finished", models.EventStatusFinished, publish, false, ""},
		{"start published", models.EventStatusPublished, start, true, models.EventStatusInProgress},
		{"start draft", models.EventStatusDraft, start, false, ""},
		{"finish in progress", models.EventStatusInProgress, finish, true, models.EventStatusFinished},
		{"finish published", models.EventStatusPublished, finish, false, ""},
		{"cancel draft", models.EventStatusDraft, cancel, true, models.EventStatusCanceled},
		{"cancel published", models.EventStatusPublished, cancel, true, models.EventStatusCanceled},
		{"cancel in progress", models.EventStatusInProgress, cancel, false, ""},
		{"cancel finished", models.EventStatusFinished, cancel, false, ""},
		{"cancel canceled", models.EventStatusCanceled, cancel, false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockEventRepo{}
			seedEvent(repo, "evt-1", "org-1", tc.from)
			svc := newEventService(repo)

			event, err := tc.op(svc, context.Background(), organizerActor("org-1"), "evt-1")
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.expects, event.Status)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, appErrors.ErrInvalidStateTransition))
				assert.Equal(t, tc.from, repo.events["evt-1"].Status, "failed transition must not move the event")
			}
		})
	}
}

func TestEventTransitionOnlyOwner(t *testing.T) {
	repo := &mockEventRepo{}
	seedEvent(repo, "evt-1", "org-1", models.EventStatusDraft)
	svc := newEventService(repo)

	_, err := svc.Publish(context.Background(), organizerActor("org-2"), "evt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthorized))
}

func TestEventTransitionConcurrentLoss(t *testing.T) {
	repo := &mockEventRepo{casConflict: true}
	seedEvent(repo, "evt-1", "org-1", models.EventStatusDraft)
	svc := newEventService(repo)

	_, err := svc.Publish(context.Background(), organizerActor("org-1"), "evt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidStateTransition))
}

func TestEventTransitionUnknownEvent(t *testing.T) {
	svc := newEventService(&mockEventRepo{})

	_, err := svc.Publish(context.Background(), organizerActor("org-1"), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEventGetDerivedFlagsForEnrolledCaller(t *testing.T) {
	repo := &mockEventRepo{consumed: map[string]int{"evt-1": 2}}
	event := seedEvent(repo, "evt-1", "org-1", models.EventStatusInProgress)
	max := 2
	event.MaxEnrollments = &max

	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{
		"evt-1/u1": {ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusApproved},
	}}
	svc := NewEventService(repo, enrollments, &mockReviewReader{}, nil, nil)

	detail, err := svc.Get(context.Background(), models.Actor{UserID: "u1", Role: models.RoleParticipant}, "evt-1")
	require.NoError(t, err)
	assert.True(t, detail.IsEnrolled)
	assert.True(t, detail.IsSoldOut)
	require.NotNil(t, detail.VacanciesLeft)
	assert.Equal(t, 0, *detail.VacanciesLeft)
	assert.True(t, detail.CanCheckIn)
	assert.False(t, detail.CanReview)
	assert.False(t, detail.CanGetCertificate)
}

func TestEventGetFlagsAfterFinish(t *testing.T) {
	repo := &mockEventRepo{}
	seedEvent(repo, "evt-1", "org-1", models.EventStatusFinished)

	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{
		"evt-1/u1": {ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusApproved, CheckedIn: true},
	}}
	reviews := &mockReviewReader{reviewed: map[string]bool{}}
	svc := NewEventService(repo, enrollments, reviews, nil, nil)

	detail, err := svc.Get(context.Background(), models.Actor{UserID: "u1", Role: models.RoleParticipant}, "evt-1")
	require.NoError(t, err)
	assert.False(t, detail.CanCheckIn)
	assert.True(t, detail.CanGetCertificate)
	assert.True(t, detail.CanReview)

	reviews.reviewed["evt-1/u1"] = true
	detail, err = svc.Get(context.Background(), models.Actor{UserID: "u1", Role: models.RoleParticipant}, "evt-1")
	require.NoError(t, err)
	assert.False(t, detail.CanReview, "a submitted review disables further reviews")
}

func TestEventGetHidesDraftsFromOthers(t *testing.T) {
	repo := &mockEventRepo{}
	seedEvent(repo, "evt-1", "org-1", models.EventStatusDraft)
	svc := newEventService(repo)

	_, err := svc.Get(context.Background(), models.Actor{UserID: "u1", Role: models.RoleParticipant}, "evt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	detail, err := svc.Get(context.Background(), organizerActor("org-1"), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusDraft, detail.Status)
}
