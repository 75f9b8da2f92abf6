package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	"github.com/eventsync/eventsync-api/pkg/config"
)

type mockRankingUsers struct {
	entries []models.RankingEntry
	calls   int
}

func (m *mockRankingUsers) ListOrganizersByXP(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	m.calls++
	return m.entries, nil
}

type mockRankingCache struct {
	values  map[string][]byte
	deletes int
}

func (m *mockRankingCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.values[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *mockRankingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	return nil
}

func (m *mockRankingCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	m.deletes++
	return nil
}

func TestLeaderboardEnrichesStandings(t *testing.T) {
	users := &mockRankingUsers{entries: []models.RankingEntry{
		{UserID: "org-1", FullName: "Alice", XP: 2500, OrganizerRating: 4.6},
		{UserID: "org-2", FullName: "Bob", XP: 150, OrganizerRating: 3.9},
	}}
	svc := NewRankingService(users, nil, NewLeagueTable(nil), nil, config.RankingsConfig{PageSize: 50}, nil)

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Platina", entries[0].League.Name)
	assert.Equal(t, "Novato", entries[1].League.Name)
}

func TestLeaderboardUsesCache(t *testing.T) {
	users := &mockRankingUsers{entries: []models.RankingEntry{
		{UserID: "org-1", FullName: "Alice", XP: 700},
	}}
	cache := &mockRankingCache{}
	svc := NewRankingService(users, cache, NewLeagueTable(nil), nil, config.RankingsConfig{PageSize: 50, CacheTTL: time.Minute}, nil)

	first, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, users.calls)

	second, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, users.calls, "the second read must come from cache")
	assert.Equal(t, first[0].League.Name, second[0].League.Name)
}

func TestLeaderboardInvalidate(t *testing.T) {
	users := &mockRankingUsers{entries: []models.RankingEntry{{UserID: "org-1", XP: 100}}}
	cache := &mockRankingCache{}
	svc := NewRankingService(users, cache, NewLeagueTable(nil), nil, config.RankingsConfig{PageSize: 50, CacheTTL: time.Minute}, nil)

	_, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())
	assert.Equal(t, 1, cache.deletes)

	_, err = svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, users.calls, "invalidation forces a database reload")
}
