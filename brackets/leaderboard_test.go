package brackets

import (
	"testing"

	"github.com/champions4change/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardHeats(t *testing.T) {
	structure, err := NewLeaderboardGenerator().Generate(GenerateParams{
		Participants: teamNames(20),
		StageConfig: models.StageConfig{
			Engine:      models.EngineLeaderboard,
			Leaderboard: &models.LeaderboardSettings{HeatSize: 8, Attempts: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, structure.TotalRounds)
	require.Len(t, structure.Matches, 6, "three heats per attempt")

	for _, m := range structure.Matches {
		assert.Nil(t, m.Team1)
		assert.Nil(t, m.Team2)
		assert.NotEmpty(t, m.HeatParticipants)
		assert.LessOrEqual(t, len(m.HeatParticipants), 8)
	}

	// The last heat of each round carries the remainder.
	assert.Len(t, structure.Matches[2].HeatParticipants, 4)

	// Every participant appears exactly once per round.
	perRound := map[int]map[string]int{}
	for _, m := range structure.Matches {
		if perRound[m.Round] == nil {
			perRound[m.Round] = map[string]int{}
		}
		for _, p := range m.HeatParticipants {
			perRound[m.Round][p]++
		}
	}
	for round, counts := range perRound {
		assert.Len(t, counts, 20, "round %d", round)
		for p, c := range counts {
			assert.Equal(t, 1, c, "round %d participant %s", round, p)
		}
	}
}

func TestLeaderboardDefaults(t *testing.T) {
	structure, err := NewLeaderboardGenerator().Generate(GenerateParams{Participants: teamNames(10)})
	require.NoError(t, err)
	assert.Equal(t, 1, structure.TotalRounds)
	assert.Len(t, structure.Matches, 2, "heats of 8 by default")
}
