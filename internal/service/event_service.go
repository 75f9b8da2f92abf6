package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	FindDetailByID(ctx context.Context, id string) (*models.EventDetail, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error)
	TransitionStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error)
	CountConsumed(ctx context.Context, eventID string) (int, error)
}

type eventEnrollmentReader interface {
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error)
}

type eventReviewReader interface {
	Exists(ctx context.Context, eventID, userID string) (bool, error)
}

// transitions is the full lifecycle table. Anything absent is an invalid
// transition; CANCELED and FINISHED have no outgoing edges.
var transitions = map[models.EventStatus]map[models.EventStatus]struct{}{
	models.EventStatusDraft: {
		models.EventStatusPublished: {},
		models.EventStatusCanceled:  {},
	},
	models.EventStatusPublished: {
		models.EventStatusInProgress: {},
		models.EventStatusCanceled:   {},
	},
	models.EventStatusInProgress: {
		models.EventStatusFinished: {},
	},
}

func transitionAllowed(from, to models.EventStatus) bool {
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// EventService owns the event lifecycle state machine.
type EventService struct {
	repo        eventRepository
	enrollments eventEnrollmentReader
	reviews     eventReviewReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEventService constructs EventService.
func NewEventService(repo eventRepository, enrollments eventEnrollmentReader, reviews eventReviewReader, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, enrollments: enrollments, reviews: reviews, validator: validate, logger: logger}
}

// Create registers a new draft event owned by the acting organizer.
func (s *EventService) Create(ctx context.Context, actor models.Actor, req models.CreateEventRequest) (*models.Event, error) {
	if actor.Role != models.RoleOrganizer {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "only organizers can create events")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event := &models.Event{
		OrganizerID:      actor.UserID,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		StartsAt:         req.StartsAt,
		BannerRef:        req.BannerRef,
		MaxEnrollments:   req.MaxEnrollments,
		RequiresApproval: req.RequiresApproval,
		Status:           models.EventStatusDraft,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("organizer_id", actor.UserID))
	return event, nil
}

// Publish opens the event for enrollment.
func (s *EventService) Publish(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	return s.transition(ctx, actor, eventID, models.EventStatusDraft, models.EventStatusPublished)
}

// Start moves a published event into its check-in window.
func (s *EventService) Start(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	return s.transition(ctx, actor, eventID, models.EventStatusPublished, models.EventStatusInProgress)
}

// Finish closes a running event, unlocking reviews and certificates.
func (s *EventService) Finish(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	return s.transition(ctx, actor, eventID, models.EventStatusInProgress, models.EventStatusFinished)
}

// Cancel terminates an event that has not yet started. Running or finished
// events cannot be retroactively canceled.
func (s *EventService) Cancel(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	event, err := s.loadOwned(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(event.Status, models.EventStatusCanceled) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "cannot cancel an event that is "+string(event.Status))
	}
	return s.apply(ctx, event, models.EventStatusCanceled)
}

func (s *EventService) transition(ctx context.Context, actor models.Actor, eventID string, from, to models.EventStatus) (*models.Event, error) {
	event, err := s.loadOwned(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != from || !transitionAllowed(from, to) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "cannot move event from "+string(event.Status)+" to "+string(to))
	}
	return s.apply(ctx, event, to)
}

// apply performs the conditional write. The CAS re-checks the source status
// so a concurrent transition loses cleanly instead of double-applying.
func (s *EventService) apply(ctx context.Context, event *models.Event, to models.EventStatus) (*models.Event, error) {
	moved, err := s.repo.TransitionStatus(ctx, event.ID, event.Status, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event status")
	}
	if !moved {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "event status changed concurrently")
	}
	s.logger.Info("event transitioned",
		zap.String("event_id", event.ID),
		zap.String("from", string(event.Status)),
		zap.String("to", string(to)))
	event.Status = to
	return event, nil
}

func (s *EventService) loadOwned(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "only the event organizer can perform this action")
	}
	return event, nil
}

// List returns events with pagination metadata. Drafts are only visible to
// their organizer.
func (s *EventService) List(ctx context.Context, actor models.Actor, filter models.EventFilter) ([]models.EventDetail, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	visible := make([]models.EventDetail, 0, len(events))
	for _, ev := range events {
		if ev.Status == models.EventStatusDraft && ev.OrganizerID != actor.UserID {
			continue
		}
		visible = append(visible, ev)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return visible, pagination, nil
}

// Get returns an event with the derived flags for the acting caller. Flags
// are computed from the authoritative state on every read.
func (s *EventService) Get(ctx context.Context, actor models.Actor, eventID string) (*models.EventDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if detail.Status == models.EventStatusDraft && detail.OrganizerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}

	consumed, err := s.repo.CountConsumed(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	detail.ConsumedCapacity = consumed
	if detail.Bounded() {
		left := *detail.MaxEnrollments - consumed
		if left < 0 {
			left = 0
		}
		detail.VacanciesLeft = &left
		detail.IsSoldOut = left <= 0
	}

	if actor.UserID == "" {
		return detail, nil
	}

	enrollment, err := s.enrollments.FindByEventAndUser(ctx, eventID, actor.UserID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		return detail, nil
	}

	detail.IsEnrolled = true
	detail.EnrollmentStatus = &enrollment.Status
	detail.CanCheckIn = detail.Status == models.EventStatusInProgress &&
		enrollment.Status == models.EnrollmentStatusApproved && !enrollment.CheckedIn

	eligible := detail.Status == models.EventStatusFinished && enrollment.CheckedIn
	detail.CanGetCertificate = eligible
	if eligible {
		reviewed, err := s.reviews.Exists(ctx, eventID, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check review")
		}
		detail.CanReview = !reviewed
	}
	return detail, nil
}
