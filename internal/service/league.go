package service

import (
	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/pkg/config"
)

// LeagueTable resolves XP values into league standings. The tier list is
// configuration, ordered ascending by MinXP with the first tier at 0.
type LeagueTable struct {
	tiers []config.LeagueTier
}

// NewLeagueTable builds a table from configured tiers, falling back to the
// default ladder when empty.
func NewLeagueTable(tiers []config.LeagueTier) *LeagueTable {
	if len(tiers) == 0 {
		tiers = config.DefaultLeagueTiers()
	}
	return &LeagueTable{tiers: tiers}
}

// StandingFor maps accumulated XP to a league standing. Total and monotonic:
// XP below the first threshold lands in the lowest tier, XP at or above the
// highest threshold saturates at the top tier with full progress and no next
// tier. Progress within a tier is clamped to [0,1].
func (t *LeagueTable) StandingFor(xp int) models.LeagueStanding {
	if xp < 0 {
		xp = 0
	}

	current := 0
	for i, tier := range t.tiers {
		if xp >= tier.MinXP {
			current = i
		}
	}

	standing := models.LeagueStanding{
		Name:  t.tiers[current].Name,
		MinXP: t.tiers[current].MinXP,
		XP:    xp,
	}

	if current == len(t.tiers)-1 {
		standing.Progress = 1
		return standing
	}

	next := t.tiers[current+1]
	standing.NextName = &next.Name
	standing.NextMinXP = &next.MinXP

	span := next.MinXP - standing.MinXP
	if span <= 0 {
		standing.Progress = 1
		return standing
	}
	progress := float64(xp-standing.MinXP) / float64(span)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	standing.Progress = progress
	return standing
}
