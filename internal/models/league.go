package models

// LeagueStanding is the derived progression snapshot for an organizer. It is
// always recomputed from XP; nothing here is authoritative storage.
type LeagueStanding struct {
	Name      string  `json:"name"`
	MinXP     int     `json:"min_xp"`
	NextName  *string `json:"next_name,omitempty"`
	NextMinXP *int    `json:"next_min_xp,omitempty"`
	Progress  float64 `json:"progress"`
	XP        int     `json:"xp"`
}

// RankingEntry is one row of the organizer leaderboard.
type RankingEntry struct {
	UserID          string         `db:"id" json:"user_id"`
	FullName        string         `db:"full_name" json:"full_name"`
	PhotoURL        *string        `db:"photo_url" json:"photo_url,omitempty"`
	XP              int            `db:"xp" json:"xp"`
	OrganizerRating float64        `db:"organizer_rating" json:"organizer_rating"`
	League          LeagueStanding `json:"league"`
}
