package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() TournamentConfig {
	return TournamentConfig{
		Meta: TournamentMeta{
			Name:             "Spring Classic",
			ParticipantType:  ParticipantTeam,
			ParticipantCount: 8,
		},
		Seeding: SeedingRanked,
		Stages: []StageConfig{
			{Engine: EngineRoundRobin, Size: 8, RoundRobin: &RoundRobinSettings{PoolCount: 2}},
			{Engine: EngineSingleElimination, Size: 4},
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	assert.Nil(t, cfg.Validate())
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	cfg := TournamentConfig{
		Meta:    TournamentMeta{ParticipantType: "robots", ParticipantCount: 1},
		Seeding: "dice",
	}

	violations := cfg.Validate()
	require.NotNil(t, violations)
	assert.Contains(t, violations, "meta.name")
	assert.Contains(t, violations, "meta.participant_type")
	assert.Contains(t, violations, "meta.participant_count")
	assert.Contains(t, violations, "seeding")
	assert.Contains(t, violations, "stages")
	assert.Len(t, violations, 5, "one pass reports the whole config")
}

func TestValidateRejectsMismatchedStageSettings(t *testing.T) {
	cases := []struct {
		name  string
		stage StageConfig
	}{
		{"elimination with swiss settings", StageConfig{Engine: EngineSingleElimination, Size: 8, Swiss: &SwissSettings{Rounds: 3}}},
		{"double elim with pool settings", StageConfig{Engine: EngineDoubleElimination, Size: 8, RoundRobin: &RoundRobinSettings{}}},
		{"round robin with leaderboard settings", StageConfig{Engine: EngineRoundRobin, Size: 8, Leaderboard: &LeaderboardSettings{}}},
		{"swiss with pool settings", StageConfig{Engine: EngineSwiss, Size: 8, RoundRobin: &RoundRobinSettings{}}},
		{"leaderboard with swiss settings", StageConfig{Engine: EngineLeaderboard, Size: 8, Swiss: &SwissSettings{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Stages = []StageConfig{tc.stage}
			violations := cfg.Validate()
			require.NotNil(t, violations)
			assert.Contains(t, violations, "stages[0]")
		})
	}
}

func TestValidateOwnSettingsAreAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Stages = []StageConfig{
		{Engine: EngineSwiss, Size: 8, Swiss: &SwissSettings{Rounds: 4}},
		{Engine: EngineLeaderboard, Size: 8, Leaderboard: &LeaderboardSettings{HeatSize: 4}},
	}
	assert.Nil(t, cfg.Validate())
}

func TestValidateToleratesUnknownEngine(t *testing.T) {
	// Unknown engines fall back to single elimination at generation time,
	// they are not a config error.
	cfg := validConfig()
	cfg.Stages = []StageConfig{{Engine: "ladder", Size: 8}}
	assert.Nil(t, cfg.Validate())
}

func TestValidateRejectsTinyStage(t *testing.T) {
	cfg := validConfig()
	cfg.Stages[1].Size = 1
	violations := cfg.Validate()
	require.NotNil(t, violations)
	assert.Contains(t, violations, "stages[1].size")
}

func TestCurrentStageConfigBounds(t *testing.T) {
	tournament := Tournament{ID: 1, Config: validConfig()}

	stage, err := tournament.CurrentStageConfig()
	require.NoError(t, err)
	assert.Equal(t, EngineRoundRobin, stage.Engine)

	tournament.CurrentStage = 1
	stage, err = tournament.CurrentStageConfig()
	require.NoError(t, err)
	assert.Equal(t, EngineSingleElimination, stage.Engine)

	tournament.CurrentStage = 2
	_, err = tournament.CurrentStageConfig()
	assert.Error(t, err)
}
