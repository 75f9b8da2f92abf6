package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	"github.com/eventsync/eventsync-api/pkg/config"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type reviewRepository interface {
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	ListByEvent(ctx context.Context, eventID string) ([]models.ReviewDetail, error)
}

type reviewEnrollmentReader interface {
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error)
}

type reviewEventReader interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type reputationWriter interface {
	AwardReviewXP(ctx context.Context, organizerID string, xpAward, rating int) error
}

type leaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// ReviewService accepts peer reviews of finished events and feeds the
// organizer reputation engine. Each accepted review atomically credits the
// organizer with XP and folds the rating into the running mean.
type ReviewService struct {
	repo        reviewRepository
	enrollments reviewEnrollmentReader
	events      reviewEventReader
	reputation  reputationWriter
	boards      leaderboardInvalidator
	policy      config.ReputationConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReviewService constructs ReviewService. boards may be nil.
func NewReviewService(repo reviewRepository, enrollments reviewEnrollmentReader, events reviewEventReader, reputation reputationWriter, boards leaderboardInvalidator, policy config.ReputationConfig, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		repo:        repo,
		enrollments: enrollments,
		events:      events,
		reputation:  reputation,
		boards:      boards,
		policy:      policy,
		validator:   validate,
		logger:      logger,
	}
}

// Submit persists a one-time review for an attended, finished event. The XP
// award is policy-driven configuration: base plus a per-rating-point weight,
// and is always a positive credit.
func (s *ReviewService) Submit(ctx context.Context, actor models.Actor, eventID string, req models.SubmitReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, appErrors.Clone(appErrors.ErrInvalidRating, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	enrollment, err := s.enrollments.FindByEventAndUser(ctx, eventID, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEligible, "only attendees can review an event")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if event.Status != models.EventStatusFinished || !enrollment.CheckedIn {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "reviews require a finished event and a recorded check-in")
	}

	exists, err := s.repo.Exists(ctx, eventID, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateReview, "")
	}

	review := &models.Review{
		EventID: eventID,
		UserID:  actor.UserID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateReview, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist review")
	}

	award := s.xpAward(req.Rating)
	if err := s.reputation.AwardReviewXP(ctx, event.OrganizerID, award, req.Rating); err != nil {
		// The review is already durable; losing the XP credit would silently
		// starve the organizer, so surface the failure.
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit organizer reputation")
	}
	if s.boards != nil {
		s.boards.Invalidate(ctx)
	}

	s.logger.Info("review submitted",
		zap.String("event_id", eventID),
		zap.String("user_id", actor.UserID),
		zap.Int("rating", req.Rating),
		zap.Int("xp_award", award))
	return review, nil
}

// ListByEvent returns the reviews of a finished event.
func (s *ReviewService) ListByEvent(ctx context.Context, eventID string) ([]models.ReviewDetail, error) {
	reviews, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

func (s *ReviewService) xpAward(rating int) int {
	award := s.policy.XPAwardBase + s.policy.XPAwardPerRating*rating
	if award <= 0 {
		award = 1
	}
	return award
}
