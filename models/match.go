package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming   MatchStatus = "upcoming"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

// Bracket tags. Pool stages use the pool id as the tag, so the type stays a
// plain string rather than a closed enum.
const (
	BracketWinners = "winners"
	BracketLosers  = "losers"
	BracketMain    = "main"
)

// TBD marks a slot whose occupant is not yet known. Slots are stored as nil
// pointers; TBD is the display form used in payloads and logs.
const TBD = "TBD"

// Match is the atomic unit of a bracket. The (Stage, Round, Position,
// Bracket) tuple is unique within a tournament. Matches are created by the
// generator at stage start or on demand by progression, mutated by result
// updates, and never deleted once created.
type Match struct {
	ID           string      `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Stage        int         `json:"stage" db:"stage"`
	Round        int         `json:"round" db:"round"`
	Position     int         `json:"position" db:"position"`
	Bracket      string      `json:"bracket" db:"bracket"`
	Team1        *string     `json:"team1,omitempty" db:"team1"`
	Team2        *string     `json:"team2,omitempty" db:"team2"`
	Score1       *int        `json:"score1,omitempty" db:"score1"`
	Score2       *int        `json:"score2,omitempty" db:"score2"`
	Winner       *string     `json:"winner,omitempty" db:"winner"`
	Status       MatchStatus `json:"status" db:"status"`
	IsDraw       bool        `json:"is_draw" db:"is_draw"`
	Forfeit      *string     `json:"forfeit,omitempty" db:"forfeit"`

	// Leaderboard/FFA stages schedule heats instead of head-to-head pairs.
	HeatParticipants []string       `json:"heat_participants,omitempty" db:"heat_participants"`
	Rankings         map[string]int `json:"rankings,omitempty" db:"rankings"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the match can no longer change state.
func (m *Match) Terminal() bool {
	return m.Status == MatchStatusCompleted || m.Status == MatchStatusCancelled
}

// Loser returns the losing side of a completed, decided match.
func (m *Match) Loser() *string {
	if m.Winner == nil || m.IsDraw {
		return nil
	}
	if m.Team1 != nil && *m.Team1 == *m.Winner {
		return m.Team2
	}
	if m.Team2 != nil && *m.Team2 == *m.Winner {
		return m.Team1
	}
	return nil
}

// SlotName renders a side for payloads, substituting TBD for open slots.
func SlotName(s *string) string {
	if s == nil {
		return TBD
	}
	return *s
}

// BracketStructure is the generator output: a complete match set for one
// stage plus its derived totals. It is not persisted beyond the matches it
// contains.
type BracketStructure struct {
	Format       EngineType `json:"format"`
	Matches      []Match    `json:"matches"`
	TotalMatches int        `json:"total_matches"`
	TotalRounds  int        `json:"total_rounds"`
}
