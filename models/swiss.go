package models

// SwissResult is the outcome of one Swiss pairing from team1's perspective.
type SwissResult string

const (
	SwissResultPending  SwissResult = "pending"
	SwissResultTeam1Win SwissResult = "team1_win"
	SwissResultTeam2Win SwissResult = "team2_win"
	SwissResultDraw     SwissResult = "draw"
)

type SwissPairing struct {
	Team1  string      `json:"team1"`
	Team2  string      `json:"team2"`
	Table  int         `json:"table,omitempty"`
	Result SwissResult `json:"result"`
	Score1 *int        `json:"score1,omitempty"`
	Score2 *int        `json:"score2,omitempty"`

	// IsBye marks the odd team out; a bye scores as a win.
	IsBye bool `json:"is_bye,omitempty"`
}

// SwissRound is one entry of the append-only round log. A round is created
// when its pairings are generated and marked complete once every pairing
// resolves.
type SwissRound struct {
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Stage        int            `json:"stage" db:"stage"`
	RoundNumber  int            `json:"round_number" db:"round_number"`
	Pairings     []SwissPairing `json:"pairings" db:"pairings"`
	IsComplete   bool           `json:"is_complete" db:"is_complete"`
}

// SwissTeamRecord is the derived Swiss standing, rebuilt each round from
// the accumulated round log. Points are 1 per win, 0.5 per draw.
type SwissTeamRecord struct {
	Team              string   `json:"team"`
	Points            float64  `json:"points"`
	GamePoints        int      `json:"game_points"`
	Buchholz          float64  `json:"buchholz"`
	StrengthOfSched   float64  `json:"strength_of_schedule"`
	PerformanceRating float64  `json:"performance_rating"`
	Wins              int      `json:"wins"`
	Draws             int      `json:"draws"`
	Losses            int      `json:"losses"`
	Opponents         []string `json:"opponents,omitempty"`
	Seed              int      `json:"seed,omitempty"`
}

// HasPlayed reports whether the team already faced the given opponent.
func (r *SwissTeamRecord) HasPlayed(opponent string) bool {
	for _, o := range r.Opponents {
		if o == opponent {
			return true
		}
	}
	return false
}

// SwissEntryCriteria filters which Swiss finishers enter the elimination
// stage. GuaranteedSlots top finishers are seeded even when they fall below
// a threshold.
type SwissEntryCriteria struct {
	TotalTeamsAdvancing int      `json:"total_teams_advancing"`
	MinPoints           *float64 `json:"min_points,omitempty"`
	MinWinPercentage    *float64 `json:"min_win_percentage,omitempty"`
	MinPerformance      *float64 `json:"min_performance,omitempty"`
	GuaranteedSlots     int      `json:"guaranteed_slots,omitempty"`
}
