package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type mockFriendshipRepo struct {
	byID map[string]*models.Friendship
	seq  int
}

func (m *mockFriendshipRepo) FindByID(ctx context.Context, id string) (*models.Friendship, error) {
	friendship, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *friendship
	return &copied, nil
}

func (m *mockFriendshipRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	for _, existing := range m.byID {
		if existing.FromUserID == friendship.FromUserID && existing.ToUserID == friendship.ToUserID && existing.EventID == friendship.EventID {
			return repository.ErrDuplicate
		}
	}
	if m.byID == nil {
		m.byID = make(map[string]*models.Friendship)
	}
	m.seq++
	friendship.ID = "fr-" + friendship.FromUserID + "-" + friendship.ToUserID
	m.byID[friendship.ID] = friendship
	return nil
}

func (m *mockFriendshipRepo) ListByUser(ctx context.Context, userID string) ([]models.FriendshipDetail, error) {
	var details []models.FriendshipDetail
	for _, friendship := range m.byID {
		if friendship.FromUserID != userID && friendship.ToUserID != userID {
			continue
		}
		details = append(details, models.FriendshipDetail{Friendship: *friendship})
	}
	return details, nil
}

func (m *mockFriendshipRepo) UpdateStatusFromPending(ctx context.Context, id string, to models.FriendshipStatus) (bool, error) {
	friendship, ok := m.byID[id]
	if !ok || friendship.Status != models.FriendshipStatusPending {
		return false, nil
	}
	friendship.Status = to
	return true, nil
}

func (m *mockFriendshipRepo) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	for _, friendship := range m.byID {
		if friendship.Status != models.FriendshipStatusAccepted {
			continue
		}
		if (friendship.FromUserID == userA && friendship.ToUserID == userB) ||
			(friendship.FromUserID == userB && friendship.ToUserID == userA) {
			return true, nil
		}
	}
	return false, nil
}

type mockMessageRepo struct {
	messages []*models.Message
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = "msg-" + message.SenderID
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockMessageRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.MessageDetail, error) {
	var details []models.MessageDetail
	for _, message := range m.messages {
		if message.SenderID != userID && message.RecipientID != userID {
			continue
		}
		details = append(details, models.MessageDetail{Message: *message})
	}
	return details, nil
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	for _, message := range m.messages {
		if message.ID == id && message.RecipientID == recipientID {
			message.Read = true
		}
	}
	return nil
}

type socialFixture struct {
	svc         *SocialService
	friendships *mockFriendshipRepo
	messages    *mockMessageRepo
	enrollments *mockEnrollmentRepo
}

func newSocialFixture() *socialFixture {
	friendships := &mockFriendshipRepo{}
	messages := &mockMessageRepo{}
	enrollments := &mockEnrollmentRepo{}
	return &socialFixture{
		svc:         NewSocialService(friendships, messages, enrollments, nil, nil),
		friendships: friendships,
		messages:    messages,
		enrollments: enrollments,
	}
}

func (f *socialFixture) confirm(eventID, userID string) {
	f.enrollments.store(&models.Enrollment{ID: "enr-" + userID, EventID: eventID, UserID: userID, Status: models.EnrollmentStatusApproved})
}

func TestFriendshipRequestCreatesPending(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")
	f.confirm("evt-1", "u2")

	friendship, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusPending, friendship.Status)
	assert.Equal(t, "u1", friendship.FromUserID)
	assert.Equal(t, "evt-1", friendship.EventID)
}

func TestFriendshipRequestRequiresBothConfirmed(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")
	// u2 is only pending, not confirmed.
	f.enrollments.store(&models.Enrollment{ID: "enr-u2", EventID: "evt-1", UserID: "u2", Status: models.EnrollmentStatusPending})

	_, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotEligible))

	// Sender without any enrollment fails the same way.
	_, err = f.svc.RequestFriendship(context.Background(), participant("u3"), models.RequestFriendshipRequest{ToUserID: "u1", EventID: "evt-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotEligible))
}

func TestFriendshipRequestSelf(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")

	_, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u1", EventID: "evt-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestFriendshipRequestDuplicate(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")
	f.confirm("evt-1", "u2")

	_, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.NoError(t, err)

	_, err = f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrFriendshipExists))
}

func TestFriendshipDecideOnlyRecipient(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")
	f.confirm("evt-1", "u2")

	friendship, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.NoError(t, err)

	// Neither the sender nor a stranger can decide.
	_, err = f.svc.Accept(context.Background(), participant("u1"), friendship.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthorized))

	_, err = f.svc.Accept(context.Background(), participant("u3"), friendship.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotAuthorized))

	accepted, err := f.svc.Accept(context.Background(), participant("u2"), friendship.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, accepted.Status)
}

func TestFriendshipDecisionsAreTerminal(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")
	f.confirm("evt-1", "u2")

	friendship, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), participant("u2"), friendship.ID)
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), participant("u2"), friendship.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidFriendshipState))
}

func TestMessageRequiresAcceptedFriendship(t *testing.T) {
	f := newSocialFixture()
	f.confirm("evt-1", "u1")
	f.confirm("evt-1", "u2")

	payload := models.SendMessageRequest{RecipientID: "u2", Subject: "Oi", Body: "Bora no proximo evento?"}

	_, err := f.svc.SendMessage(context.Background(), participant("u1"), payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFriends))

	friendship, err := f.svc.RequestFriendship(context.Background(), participant("u1"), models.RequestFriendshipRequest{ToUserID: "u2", EventID: "evt-1"})
	require.NoError(t, err)

	// A pending request is not enough.
	_, err = f.svc.SendMessage(context.Background(), participant("u1"), payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFriends))

	_, err = f.svc.Accept(context.Background(), participant("u2"), friendship.ID)
	require.NoError(t, err)

	message, err := f.svc.SendMessage(context.Background(), participant("u1"), payload)
	require.NoError(t, err)
	assert.Equal(t, "u1", message.SenderID)
	assert.False(t, message.Read)

	// Friendship works in both directions.
	_, err = f.svc.SendMessage(context.Background(), participant("u2"), models.SendMessageRequest{RecipientID: "u1", Subject: "Re: Oi", Body: "Bora!"})
	require.NoError(t, err)
}

func TestMessageToSelf(t *testing.T) {
	f := newSocialFixture()

	_, err := f.svc.SendMessage(context.Background(), participant("u1"), models.SendMessageRequest{RecipientID: "u1", Subject: "Oi", Body: "eco"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestMessageFeedScopesToActor(t *testing.T) {
	f := newSocialFixture()
	f.messages.messages = []*models.Message{
		{ID: "msg-1", SenderID: "u1", RecipientID: "u2", Subject: "a"},
		{ID: "msg-2", SenderID: "u3", RecipientID: "u4", Subject: "b"},
	}

	feed, err := f.svc.ListMessages(context.Background(), participant("u2"), 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "msg-1", feed[0].ID)

	require.NoError(t, f.svc.MarkMessageRead(context.Background(), participant("u2"), "msg-1"))
	assert.True(t, f.messages.messages[0].Read)

	// Only the recipient's mark sticks.
	require.NoError(t, f.svc.MarkMessageRead(context.Background(), participant("u1"), "msg-2"))
	assert.False(t, f.messages.messages[1].Read)
}
