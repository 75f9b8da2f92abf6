package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type friendshipRepository interface {
	FindByID(ctx context.Context, id string) (*models.Friendship, error)
	Create(ctx context.Context, friendship *models.Friendship) error
	ListByUser(ctx context.Context, userID string) ([]models.FriendshipDetail, error)
	UpdateStatusFromPending(ctx context.Context, id string, to models.FriendshipStatus) (bool, error)
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
}

type messageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.MessageDetail, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type socialEnrollmentReader interface {
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error)
}

// SocialService connects attendees of the same event. Friendship requests
// require both sides to hold an APPROVED enrollment; direct messages require
// an accepted friendship in either direction.
type SocialService struct {
	friendships friendshipRepository
	messages    messageRepository
	enrollments socialEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSocialService constructs SocialService.
func NewSocialService(friendships friendshipRepository, messages messageRepository, enrollments socialEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *SocialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SocialService{friendships: friendships, messages: messages, enrollments: enrollments, validator: validate, logger: logger}
}

// RequestFriendship creates a PENDING request toward another confirmed
// attendee of the event.
func (s *SocialService) RequestFriendship(ctx context.Context, actor models.Actor, req models.RequestFriendshipRequest) (*models.Friendship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid friendship payload")
	}
	if req.ToUserID == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot send a friendship request to yourself")
	}

	if err := s.requireConfirmed(ctx, req.EventID, actor.UserID, "you are not confirmed in this event"); err != nil {
		return nil, err
	}
	if err := s.requireConfirmed(ctx, req.EventID, req.ToUserID, "the recipient is not confirmed in this event"); err != nil {
		return nil, err
	}

	friendship := &models.Friendship{
		FromUserID: actor.UserID,
		ToUserID:   req.ToUserID,
		EventID:    req.EventID,
		Status:     models.FriendshipStatusPending,
	}
	if err := s.friendships.Create(ctx, friendship); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrFriendshipExists, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create friendship request")
	}

	s.logger.Info("friendship requested",
		zap.String("friendship_id", friendship.ID),
		zap.String("from_user_id", actor.UserID),
		zap.String("to_user_id", req.ToUserID),
		zap.String("event_id", req.EventID))
	return friendship, nil
}

func (s *SocialService) requireConfirmed(ctx context.Context, eventID, userID, message string) error {
	enrollment, err := s.enrollments.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotEligible, message)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusApproved {
		return appErrors.Clone(appErrors.ErrNotEligible, message)
	}
	return nil
}

// Accept moves a pending request to ACCEPTED. Recipient-only, terminal.
func (s *SocialService) Accept(ctx context.Context, actor models.Actor, friendshipID string) (*models.Friendship, error) {
	return s.decide(ctx, actor, friendshipID, models.FriendshipStatusAccepted)
}

// Reject moves a pending request to REJECTED. Recipient-only, terminal.
func (s *SocialService) Reject(ctx context.Context, actor models.Actor, friendshipID string) (*models.Friendship, error) {
	return s.decide(ctx, actor, friendshipID, models.FriendshipStatusRejected)
}

func (s *SocialService) decide(ctx context.Context, actor models.Actor, friendshipID string, to models.FriendshipStatus) (*models.Friendship, error) {
	friendship, err := s.friendships.FindByID(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "friendship request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load friendship request")
	}
	if friendship.ToUserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorized, "only the recipient can decide a friendship request")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidFriendshipState, "friendship request was already decided")
	}

	moved, err := s.friendships.UpdateStatusFromPending(ctx, friendshipID, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update friendship request")
	}
	if !moved {
		return nil, appErrors.Clone(appErrors.ErrInvalidFriendshipState, "friendship request was decided concurrently")
	}

	friendship.Status = to
	s.logger.Info("friendship decided",
		zap.String("friendship_id", friendshipID),
		zap.String("status", string(to)))
	return friendship, nil
}

// ListFriendships returns every request the acting user sent or received.
func (s *SocialService) ListFriendships(ctx context.Context, actor models.Actor) ([]models.FriendshipDetail, error) {
	friendships, err := s.friendships.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list friendships")
	}
	return friendships, nil
}

// SendMessage delivers a direct message to an accepted friend.
func (s *SocialService) SendMessage(ctx context.Context, actor models.Actor, req models.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if req.RecipientID == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot send a message to yourself")
	}

	friends, err := s.friendships.AreFriends(ctx, actor.UserID, req.RecipientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check friendship")
	}
	if !friends {
		return nil, appErrors.Clone(appErrors.ErrNotFriends, "")
	}

	message := &models.Message{
		SenderID:    actor.UserID,
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Body:        req.Body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}

	s.logger.Info("message sent",
		zap.String("message_id", message.ID),
		zap.String("sender_id", actor.UserID),
		zap.String("recipient_id", req.RecipientID))
	return message, nil
}

// ListMessages returns the acting user's conversation feed.
func (s *SocialService) ListMessages(ctx context.Context, actor models.Actor, limit int) ([]models.MessageDetail, error) {
	messages, err := s.messages.ListByUser(ctx, actor.UserID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// MarkMessageRead flags one of the acting user's received messages as read.
func (s *SocialService) MarkMessageRead(ctx context.Context, actor models.Actor, id string) error {
	if err := s.messages.MarkRead(ctx, id, actor.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	return nil
}
