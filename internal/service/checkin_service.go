package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type checkinEnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	CheckIn(ctx context.Context, id string, at time.Time) (bool, error)
}

type checkinEventReader interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// CheckinService records attendance against approved enrollments. The
// enrollment ID is the code carried in the participant's QR ticket.
type CheckinService struct {
	enrollments checkinEnrollmentRepository
	events      checkinEventReader
	logger      *zap.Logger
	now         func() time.Time
}

// NewCheckinService constructs CheckinService.
func NewCheckinService(enrollments checkinEnrollmentRepository, events checkinEventReader, logger *zap.Logger) *CheckinService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckinService{enrollments: enrollments, events: events, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// CheckIn resolves the code and records attendance exactly once. The write is
// a compare-and-set on checked_in, so of two concurrent scans one succeeds
// and the other is told the attendance was already recorded.
func (s *CheckinService) CheckIn(ctx context.Context, actor models.Actor, code string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown check-in code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve check-in code")
	}

	event, err := s.events.FindByID(ctx, enrollment.EventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "only the event organizer can record check-ins")
	}
	if event.Status != models.EventStatusInProgress {
		return nil, appErrors.Clone(appErrors.ErrEventNotRunning, "check-in is only open while the event is in progress")
	}
	if enrollment.Status != models.EnrollmentStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentNotApproved, "")
	}
	if enrollment.CheckedIn {
		return nil, appErrors.Clone(appErrors.ErrAlreadyCheckedIn, "")
	}

	at := s.now()
	recorded, err := s.enrollments.CheckIn(ctx, enrollment.ID, at)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}
	if !recorded {
		return nil, appErrors.Clone(appErrors.ErrAlreadyCheckedIn, "")
	}

	enrollment.CheckedIn = true
	enrollment.CheckinTime = &at
	s.logger.Info("check-in recorded",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("event_id", enrollment.EventID))
	return enrollment, nil
}
