package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/pkg/jobs"
)

type mockNotificationRepo struct {
	mu      sync.Mutex
	created []models.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockNotificationRepo) snapshot() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.created...)
}

func TestEnrollmentChangedDeliversThroughQueue(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, nil)
	queue := jobs.NewQueue("notifications", svc.HandleJob, jobs.QueueConfig{Workers: 1})
	svc.Attach(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	event := &models.Event{ID: "evt-1", Title: "Go Conf"}
	svc.EnrollmentChanged(&models.Enrollment{ID: "enr-1", UserID: "u1", Status: models.EnrollmentStatusApproved}, event)

	require.Eventually(t, func() bool {
		return len(repo.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	created := repo.snapshot()[0]
	assert.Equal(t, "u1", created.UserID)
	assert.Contains(t, created.Title, "Go Conf")
	assert.Contains(t, created.Title, "confirmada")
}

func TestEnrollmentChangedMessagePerStatus(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, nil)
	queue := jobs.NewQueue("notifications", svc.HandleJob, jobs.QueueConfig{Workers: 1})
	svc.Attach(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	event := &models.Event{ID: "evt-1", Title: "Go Conf"}
	for _, status := range []models.EnrollmentStatus{models.EnrollmentStatusPending, models.EnrollmentStatusRejected} {
		svc.EnrollmentChanged(&models.Enrollment{ID: "enr-" + string(status), UserID: "u1", Status: status}, event)
	}

	require.Eventually(t, func() bool {
		return len(repo.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	titles := make([]string, 0, 2)
	for _, n := range repo.snapshot() {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles[0]+titles[1], "recebida")
	assert.Contains(t, titles[0]+titles[1], "recusada")
}

func TestEnrollmentChangedWithoutQueueDoesNotPanic(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, nil)

	svc.EnrollmentChanged(&models.Enrollment{ID: "enr-1", UserID: "u1", Status: models.EnrollmentStatusApproved}, &models.Event{Title: "Go Conf"})
	assert.Empty(t, repo.snapshot())
}
