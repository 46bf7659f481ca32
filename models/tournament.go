package models

import (
	"fmt"
	"time"
)

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusSoon      TournamentStatus = "soon"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
	StatusCanceled  TournamentStatus = "canceled"
)

type ParticipantType string

const (
	ParticipantIndividual ParticipantType = "individual"
	ParticipantTeam       ParticipantType = "team"
)

type SeedingMethod string

const (
	SeedingRandom SeedingMethod = "random"
	SeedingRanked SeedingMethod = "ranked"
	SeedingManual SeedingMethod = "manual"
)

// EngineType is the discriminant of the StageConfig tagged union.
type EngineType string

const (
	EngineSingleElimination EngineType = "single"
	EngineDoubleElimination EngineType = "double"
	EngineRoundRobin        EngineType = "round_robin"
	EngineSwiss             EngineType = "swiss"
	EngineLeaderboard       EngineType = "leaderboard"
)

type TournamentMeta struct {
	Name             string          `json:"name"`
	ParticipantType  ParticipantType `json:"participant_type"`
	ParticipantCount int             `json:"participant_count"`
	TeamSize         *int            `json:"team_size,omitempty"`
}

// Division groups participants by an eligibility policy. The engine treats
// divisions as opaque labels; eligibility enforcement happens upstream.
type Division struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Gender *string `json:"gender,omitempty"`
	MinAge *int    `json:"min_age,omitempty"`
	MaxAge *int    `json:"max_age,omitempty"`
}

// StageConfig is a tagged union: Engine selects which settings block is
// meaningful, and TournamentConfig.Validate rejects configs carrying
// settings for a different engine, so each generator receives a
// narrowly-typed config.
type StageConfig struct {
	Engine EngineType `json:"engine"`
	Size   int        `json:"size"`

	RoundRobin  *RoundRobinSettings  `json:"round_robin,omitempty"`
	Swiss       *SwissSettings       `json:"swiss,omitempty"`
	Leaderboard *LeaderboardSettings `json:"leaderboard,omitempty"`
}

// RoundRobinSettings configures a pool/group stage.
type RoundRobinSettings struct {
	PoolCount     int                `json:"pool_count"`
	PointsPerWin  int                `json:"points_per_win"`
	PointsPerDraw int                `json:"points_per_draw"`
	PointsPerLoss int                `json:"points_per_loss"`
	Tiebreakers   []TiebreakerMethod `json:"tiebreakers,omitempty"`
	Advancement   *AdvancementRules  `json:"advancement,omitempty"`
}

type SwissSettings struct {
	Rounds         int                 `json:"rounds"`
	AvoidRematches bool                `json:"avoid_rematches"`
	Accelerated    bool                `json:"accelerated"`
	Advancement    *SwissEntryCriteria `json:"advancement,omitempty"`
}

type LeaderboardSettings struct {
	HeatSize int `json:"heat_size"`
	Attempts int `json:"attempts"`
}

// TournamentConfig is the immutable input created once at tournament
// creation. The Stages slice defines the full multi-stage pipeline up front.
type TournamentConfig struct {
	Meta      TournamentMeta `json:"meta"`
	Divisions []Division     `json:"divisions,omitempty"`
	Stages    []StageConfig  `json:"stages"`
	Seeding   SeedingMethod  `json:"seeding"`
}

// Validate checks the tagged-union shape of every stage. It returns a
// field->message map covering every violation found, not just the first.
func (c *TournamentConfig) Validate() map[string]string {
	violations := make(map[string]string)

	if c.Meta.Name == "" {
		violations["meta.name"] = "tournament name is required"
	}
	if c.Meta.ParticipantType != ParticipantIndividual && c.Meta.ParticipantType != ParticipantTeam {
		violations["meta.participant_type"] = fmt.Sprintf("unknown participant type %q", c.Meta.ParticipantType)
	}
	if c.Meta.ParticipantCount < 2 {
		violations["meta.participant_count"] = fmt.Sprintf("participant count must be at least 2, got %d", c.Meta.ParticipantCount)
	}
	switch c.Seeding {
	case SeedingRandom, SeedingRanked, SeedingManual:
	default:
		violations["seeding"] = fmt.Sprintf("unknown seeding method %q", c.Seeding)
	}
	if len(c.Stages) == 0 {
		violations["stages"] = "at least one stage is required"
	}

	for i, stage := range c.Stages {
		prefix := fmt.Sprintf("stages[%d]", i)
		if stage.Size < 2 {
			violations[prefix+".size"] = fmt.Sprintf("stage size must be at least 2, got %d", stage.Size)
		}
		switch stage.Engine {
		case EngineSingleElimination, EngineDoubleElimination:
			if stage.RoundRobin != nil || stage.Swiss != nil || stage.Leaderboard != nil {
				violations[prefix] = fmt.Sprintf("engine %q does not accept engine-specific settings", stage.Engine)
			}
		case EngineRoundRobin:
			if stage.Swiss != nil || stage.Leaderboard != nil {
				violations[prefix] = "round_robin stage carries settings for a different engine"
			}
		case EngineSwiss:
			if stage.RoundRobin != nil || stage.Leaderboard != nil {
				violations[prefix] = "swiss stage carries settings for a different engine"
			}
		case EngineLeaderboard:
			if stage.RoundRobin != nil || stage.Swiss != nil {
				violations[prefix] = "leaderboard stage carries settings for a different engine"
			}
		default:
			// Unknown engines are tolerated here: the generator falls back
			// to single elimination and logs it (documented policy).
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

// Tournament is the persisted aggregate root. Config is stored as a JSONB
// column and never mutated after creation.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	OrganizerID  int              `json:"organizer_id" db:"organizer_id"`
	Config       TournamentConfig `json:"config" db:"config"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentStage int              `json:"current_stage" db:"current_stage"`
	Champion     *string          `json:"champion,omitempty" db:"champion"`
	ArchiveKey   *string          `json:"-" db:"archive_key"`
	ArchiveURL   *string          `json:"archive_url,omitempty" db:"-"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by the service layer.
	Matches []Match      `json:"matches,omitempty" db:"-"`
	Pools   []Pool       `json:"pools,omitempty" db:"-"`
	Rounds  []SwissRound `json:"swiss_rounds,omitempty" db:"-"`
}

// CurrentStageConfig returns the config of the stage the tournament is in.
func (t *Tournament) CurrentStageConfig() (StageConfig, error) {
	if t.CurrentStage < 0 || t.CurrentStage >= len(t.Config.Stages) {
		return StageConfig{}, fmt.Errorf("tournament %d has no stage %d (stages configured: %d)",
			t.ID, t.CurrentStage, len(t.Config.Stages))
	}
	return t.Config.Stages[t.CurrentStage], nil
}
