package models

import "time"

// PoolStanding is the running per-team tally kept on the pool record while
// its matches play out. The authoritative, tiebroken standings are always
// recomputed from match history by the standings package; this tally exists
// for cheap live display.
type PoolStanding struct {
	Team      string `json:"team"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Points    int    `json:"points"`
	PointDiff int    `json:"point_differential"`
}

// Pool is a round-robin group inside a pool stage. Consumed once at
// stage-end by the stage transition engine, then historical.
type Pool struct {
	PoolID       string         `json:"pool_id" db:"pool_id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Stage        int            `json:"stage" db:"stage"`
	PoolName     string         `json:"pool_name" db:"pool_name"`
	Teams        []string       `json:"teams" db:"teams"`
	Standings    []PoolStanding `json:"standings,omitempty" db:"-"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`

	// Matches is populated by the service layer from the match log; pool
	// matches carry the PoolID as their bracket tag.
	Matches []Match `json:"matches,omitempty" db:"-"`
}
