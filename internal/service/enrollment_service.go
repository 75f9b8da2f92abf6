package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
	"github.com/eventsync/eventsync-api/pkg/export"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ListAllByEvent(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	CreateReserving(ctx context.Context, enrollment *models.Enrollment, maxEnrollments int) (bool, error)
	UpdateStatusFromPending(ctx context.Context, id string, to models.EnrollmentStatus) (bool, error)
}

type enrollmentEventReader interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type enrollmentNotifier interface {
	EnrollmentChanged(enrollment *models.Enrollment, event *models.Event)
}

type enrollmentExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

// EnrollmentService manages participant requests against an event's capacity
// and approval policy. The event lifecycle gates everything here: requests
// are only accepted while the event is PUBLISHED.
type EnrollmentService struct {
	repo     enrollmentRepository
	events   enrollmentEventReader
	notifier enrollmentNotifier
	exporter enrollmentExporter
	logger   *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. notifier may be nil;
// a nil exporter falls back to the CSV exporter.
func NewEnrollmentService(repo enrollmentRepository, events enrollmentEventReader, notifier enrollmentNotifier, exporter enrollmentExporter, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = export.NewCSVExporter()
	}
	return &EnrollmentService{repo: repo, events: events, notifier: notifier, exporter: exporter, logger: logger}
}

// Request creates an enrollment for the acting participant. The capacity
// check counts PENDING and APPROVED enrollments, both reserve a slot so that
// approving every pending request can never overbook the event. The count and
// the insert happen atomically under a per-event row lock.
func (s *EnrollmentService) Request(ctx context.Context, actor models.Actor, eventID string) (*models.Enrollment, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.Status != models.EventStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrEventNotOpen, "enrollments are only accepted while the event is published")
	}

	exists, err := s.repo.Exists(ctx, eventID, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}

	status := models.EnrollmentStatusApproved
	if event.RequiresApproval {
		status = models.EnrollmentStatusPending
	}
	enrollment := &models.Enrollment{
		EventID: eventID,
		UserID:  actor.UserID,
		Status:  status,
	}

	max := 0
	if event.Bounded() {
		max = *event.MaxEnrollments
	}
	created, err := s.repo.CreateReserving(ctx, enrollment, max)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	if !created {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	}

	s.logger.Info("enrollment requested",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("event_id", eventID),
		zap.String("user_id", actor.UserID),
		zap.String("status", string(status)))
	if s.notifier != nil {
		s.notifier.EnrollmentChanged(enrollment, event)
	}
	return enrollment, nil
}

// Approve moves a pending enrollment to APPROVED. Organizer-only, terminal.
func (s *EnrollmentService) Approve(ctx context.Context, actor models.Actor, enrollmentID string) (*models.Enrollment, error) {
	return s.decide(ctx, actor, enrollmentID, models.EnrollmentStatusApproved)
}

// Reject moves a pending enrollment to REJECTED. Organizer-only, terminal.
func (s *EnrollmentService) Reject(ctx context.Context, actor models.Actor, enrollmentID string) (*models.Enrollment, error) {
	return s.decide(ctx, actor, enrollmentID, models.EnrollmentStatusRejected)
}

func (s *EnrollmentService) decide(ctx context.Context, actor models.Actor, enrollmentID string, to models.EnrollmentStatus) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	event, err := s.events.FindByID(ctx, enrollment.EventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "only the event organizer can decide enrollments")
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidEnrollmentState, "enrollment was already decided")
	}

	moved, err := s.repo.UpdateStatusFromPending(ctx, enrollmentID, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	if !moved {
		return nil, appErrors.Clone(appErrors.ErrInvalidEnrollmentState, "enrollment was decided concurrently")
	}

	enrollment.Status = to
	s.logger.Info("enrollment decided",
		zap.String("enrollment_id", enrollmentID),
		zap.String("status", string(to)))
	if s.notifier != nil {
		s.notifier.EnrollmentChanged(enrollment, event)
	}
	return enrollment, nil
}

// ListMine returns the acting participant's enrollments ("my tickets").
func (s *EnrollmentService) ListMine(ctx context.Context, actor models.Actor, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	filter.UserID = actor.UserID
	return s.list(ctx, filter)
}

// ListForEvent returns an event's enrollments for its organizer.
func (s *EnrollmentService) ListForEvent(ctx context.Context, actor models.Actor, eventID string, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizerID != actor.UserID {
		return nil, nil, appErrors.Clone(appErrors.ErrNotAuthorized, "only the event organizer can list enrollments")
	}
	filter.EventID = eventID
	return s.list(ctx, filter)
}

// Export renders an event's full enrollment and attendance sheet as CSV for
// its organizer. Returns the document bytes and a download filename.
func (s *EnrollmentService) Export(ctx context.Context, actor models.Actor, eventID string) ([]byte, string, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizerID != actor.UserID {
		return nil, "", appErrors.Clone(appErrors.ErrNotAuthorized, "only the event organizer can export enrollments")
	}

	enrollments, err := s.repo.ListAllByEvent(ctx, eventID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	data := export.Dataset{Headers: []string{"participant", "status", "checked_in", "checkin_time", "enrolled_at"}}
	for _, enrollment := range enrollments {
		checkinTime := ""
		if enrollment.CheckinTime != nil {
			checkinTime = enrollment.CheckinTime.UTC().Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, map[string]string{
			"participant":  enrollment.ParticipantName,
			"status":       string(enrollment.Status),
			"checked_in":   fmt.Sprintf("%t", enrollment.CheckedIn),
			"checkin_time": checkinTime,
			"enrolled_at":  enrollment.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	content, err := s.exporter.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("enrollments exported",
		zap.String("event_id", eventID),
		zap.Int("rows", len(enrollments)))
	return content, fmt.Sprintf("enrollments_%s.csv", eventID), nil
}

func (s *EnrollmentService) list(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
