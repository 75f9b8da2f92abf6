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
	"github.com/eventsync/eventsync-api/pkg/config"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type mockReviewRepo struct {
	reviews     map[string]*models.Review
	duplicateOn bool
}

func (m *mockReviewRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	_, ok := m.reviews[eventID+"/"+userID]
	return ok, nil
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if m.duplicateOn {
		return repository.ErrDuplicate
	}
	if m.reviews == nil {
		m.reviews = make(map[string]*models.Review)
	}
	review.ID = "rev-" + review.UserID
	m.reviews[review.EventID+"/"+review.UserID] = review
	return nil
}

func (m *mockReviewRepo) ListByEvent(ctx context.Context, eventID string) ([]models.ReviewDetail, error) {
	var details []models.ReviewDetail
	for _, review := range m.reviews {
		if review.EventID == eventID {
			details = append(details, models.ReviewDetail{Review: *review})
		}
	}
	return details, nil
}

type mockReputation struct {
	organizerID string
	xpAwarded   int
	rating      int
	calls       int
	fail        bool
}

func (m *mockReputation) AwardReviewXP(ctx context.Context, organizerID string, xpAward, rating int) error {
	if m.fail {
		return sql.ErrConnDone
	}
	m.organizerID = organizerID
	m.xpAwarded += xpAward
	m.rating = rating
	m.calls++
	return nil
}

type mockBoards struct {
	invalidations int
}

func (m *mockBoards) Invalidate(ctx context.Context) {
	m.invalidations++
}

type reviewFixture struct {
	svc        *ReviewService
	repo       *mockReviewRepo
	reputation *mockReputation
	boards     *mockBoards
}

func newReviewFixture(eventStatus models.EventStatus, checkedIn bool) *reviewFixture {
	repo := &mockReviewRepo{}
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{
		"evt-1/u1": {ID: "enr-1", EventID: "evt-1", UserID: "u1", Status: models.EnrollmentStatusApproved, CheckedIn: checkedIn},
	}}
	events := &mockEventReader{events: map[string]*models.Event{
		"evt-1": {ID: "evt-1", OrganizerID: "org-1", Title: "Go Conf", Status: eventStatus},
	}}
	reputation := &mockReputation{}
	boards := &mockBoards{}
	policy := config.ReputationConfig{XPAwardBase: 10, XPAwardPerRating: 10}
	svc := NewReviewService(repo, enrollments, events, reputation, boards, policy, nil, nil)
	return &reviewFixture{svc: svc, repo: repo, reputation: reputation, boards: boards}
}

func TestReviewSubmitCreditsOrganizer(t *testing.T) {
	f := newReviewFixture(models.EventStatusFinished, true)

	review, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "org-1", f.reputation.organizerID)
	assert.Equal(t, 60, f.reputation.xpAwarded, "base 10 + 10 per rating point")
	assert.Equal(t, 5, f.reputation.rating)
	assert.Equal(t, 1, f.boards.invalidations, "XP changes drop the cached leaderboard")
}

func TestReviewSubmitInvalidRating(t *testing.T) {
	f := newReviewFixture(models.EventStatusFinished, true)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: rating})
		require.Error(t, err, "rating=%d", rating)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidRating), "rating=%d", rating)
	}
	assert.Equal(t, 0, f.reputation.calls)
}

func TestReviewSubmitNotEligible(t *testing.T) {
	cases := []struct {
		name      string
		status    models.EventStatus
		checkedIn bool
	}{
		{"event not finished", models.EventStatusInProgress, true},
		{"no attendance", models.EventStatusFinished, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReviewFixture(tc.status, tc.checkedIn)

			_, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 4})
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrNotEligible))
			assert.Equal(t, 0, f.reputation.calls)
		})
	}
}

func TestReviewSubmitNotEnrolled(t *testing.T) {
	f := newReviewFixture(models.EventStatusFinished, true)

	_, err := f.svc.Submit(context.Background(), participant("u2"), "evt-1", models.SubmitReviewRequest{Rating: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotEligible))
}

func TestReviewSubmitDuplicate(t *testing.T) {
	f := newReviewFixture(models.EventStatusFinished, true)

	_, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateReview))
	assert.Equal(t, 1, f.reputation.calls, "only the first review credits XP")
}

func TestReviewSubmitDuplicateRace(t *testing.T) {
	// The existence pre-check passes but the insert hits the unique
	// constraint; the caller still gets the duplicate answer.
	f := newReviewFixture(models.EventStatusFinished, true)
	f.repo.duplicateOn = true

	_, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateReview))
	assert.Equal(t, 0, f.reputation.calls)
}

func TestReviewXPAwardNeverZero(t *testing.T) {
	f := newReviewFixture(models.EventStatusFinished, true)
	f.svc.policy = config.ReputationConfig{XPAwardBase: 0, XPAwardPerRating: 0}

	_, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, f.reputation.xpAwarded, "awards are always a positive credit")
}

func TestReviewListByEvent(t *testing.T) {
	f := newReviewFixture(models.EventStatusFinished, true)

	_, err := f.svc.Submit(context.Background(), participant("u1"), "evt-1", models.SubmitReviewRequest{Rating: 4, Comment: "nice"})
	require.NoError(t, err)

	reviews, err := f.svc.ListByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "nice", reviews[0].Comment)
}
