package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
	"github.com/eventsync/eventsync-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationService persists in-app notifications. Enrollment status
// changes enqueue delivery through the background queue so the request path
// never waits on it.
type NotificationService struct {
	repo   notificationRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs NotificationService. Call Attach with the
// queue after construction; the queue handler needs the service and the
// service needs the queue.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// Attach wires the background queue used for async delivery.
func (s *NotificationService) Attach(queue *jobs.Queue) {
	s.queue = queue
}

// HandleJob is the queue handler persisting a queued notification.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(*models.Notification)
	if !ok {
		return fmt.Errorf("unexpected notification payload type %T", job.Payload)
	}
	return s.repo.Create(ctx, n)
}

// EnrollmentChanged emits the notification matching an enrollment's new
// status. Failures are logged, never surfaced: notifications are best-effort
// and must not fail the triggering operation.
func (s *NotificationService) EnrollmentChanged(enrollment *models.Enrollment, event *models.Event) {
	var title, message string
	switch enrollment.Status {
	case models.EnrollmentStatusPending:
		title = fmt.Sprintf("Inscrição recebida: %s", event.Title)
		message = "Sua inscrição foi recebida. Aguarde a aprovação do organizador."
	case models.EnrollmentStatusApproved:
		title = fmt.Sprintf("Inscrição confirmada! %s", event.Title)
		message = "Tudo certo! Seu QR Code de acesso está disponível."
	case models.EnrollmentStatusRejected:
		title = fmt.Sprintf("Inscrição recusada: %s", event.Title)
		message = "Infelizmente sua inscrição não foi aceita."
	default:
		return
	}

	n := &models.Notification{
		UserID:  enrollment.UserID,
		Title:   title,
		Message: message,
	}
	if s.queue == nil {
		s.logger.Warn("notification queue not attached, dropping notification",
			zap.String("user_id", n.UserID))
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: enrollment.ID, Type: "enrollment_status", Payload: n}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.Error(err))
	}
}

// ListMine returns the acting user's notifications.
func (s *NotificationService) ListMine(ctx context.Context, actor models.Actor, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, actor.UserID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags one of the acting user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id string) error {
	if err := s.repo.MarkRead(ctx, id, actor.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
