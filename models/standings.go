package models

// TiebreakerMethod names one link of the tiebreak chain applied after
// sorting by tournament points.
type TiebreakerMethod string

const (
	TiebreakHeadToHead      TiebreakerMethod = "head_to_head"
	TiebreakPointDiff       TiebreakerMethod = "point_differential"
	TiebreakPointsScored    TiebreakerMethod = "points_scored"
	TiebreakPointsAllowed   TiebreakerMethod = "points_allowed"
	TiebreakCommonOpponents TiebreakerMethod = "common_opponents"
	TiebreakStrengthOfSched TiebreakerMethod = "strength_of_schedule"
	TiebreakCoinFlip        TiebreakerMethod = "coin_flip"
	TiebreakAlphabetical    TiebreakerMethod = "alphabetical"
)

// HeadToHead accumulates one team's results against a single opponent.
type HeadToHead struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Points int `json:"points"`
}

// TeamStanding is a derived view recomputed on demand from completed
// matches; it is never mutated in place.
type TeamStanding struct {
	Team            string                `json:"team"`
	Wins            int                   `json:"wins"`
	Losses          int                   `json:"losses"`
	Draws           int                   `json:"draws"`
	Points          int                   `json:"points"`
	PointsFor       int                   `json:"points_for"`
	PointsAgainst   int                   `json:"points_against"`
	PointDiff       int                   `json:"point_differential"`
	WinPercentage   float64               `json:"win_percentage"`
	StrengthOfSched float64               `json:"strength_of_schedule"`
	HeadToHead      map[string]HeadToHead `json:"head_to_head,omitempty"`
	PoolID          string                `json:"pool_id,omitempty"`
	PoolPlacement   int                   `json:"pool_placement,omitempty"`
	GamesPlayed     int                   `json:"games_played"`
}

type AdvancementPolicy string

const (
	AdvanceTopNPerPool AdvancementPolicy = "top_n_per_pool"
	AdvanceTopNOverall AdvancementPolicy = "top_n_overall"
	AdvancePercentage  AdvancementPolicy = "percentage"
)

type WildcardCriterion string

const (
	WildcardBestRecord    WildcardCriterion = "best_record"
	WildcardBestPointDiff WildcardCriterion = "best_point_differential"
	WildcardBestStrength  WildcardCriterion = "best_strength_of_schedule"
)

// AdvancementRules selects how a pool stage feeds the next stage.
type AdvancementRules struct {
	Policy            AdvancementPolicy `json:"policy"`
	TeamsPerPool      int               `json:"teams_per_pool,omitempty"`
	TotalTeams        int               `json:"total_teams,omitempty"`
	Percentage        float64           `json:"percentage,omitempty"`
	WildcardSlots     int               `json:"wildcard_slots,omitempty"`
	WildcardCriterion WildcardCriterion `json:"wildcard_criterion,omitempty"`
}

// SeedAssignment records one advancing team's seed and bracket slot with a
// human-readable justification.
type SeedAssignment struct {
	Team            string `json:"team"`
	Seed            int    `json:"seed"`
	BracketPosition int    `json:"bracket_position"`
	Justification   string `json:"justification"`
}

// AdvancementResult is the output of a stage transition.
type AdvancementResult struct {
	Advancing       []string           `json:"advancing"`
	Eliminated      []string           `json:"eliminated"`
	Seeding         []SeedAssignment   `json:"seeding"`
	TiebreakersUsed []TiebreakerMethod `json:"tiebreakers_used,omitempty"`
	Wildcards       []string           `json:"wildcards,omitempty"`
}
