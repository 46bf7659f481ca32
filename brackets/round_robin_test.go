package brackets

import (
	"fmt"
	"testing"

	"github.com/champions4change/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinEveryPairExactlyOnce(t *testing.T) {
	for _, n := range []int{2, 4, 5, 7, 8} {
		teams := teamNames(n)
		structure, err := NewRoundRobinGenerator().Generate(GenerateParams{Participants: teams})
		require.NoError(t, err, "n=%d", n)

		assert.Equal(t, n*(n-1)/2, structure.TotalMatches, "n=%d", n)

		pairs := map[string]int{}
		for _, m := range structure.Matches {
			a, b := *m.Team1, *m.Team2
			if a > b {
				a, b = b, a
			}
			pairs[a+"|"+b]++
		}
		for pair, count := range pairs {
			assert.Equal(t, 1, count, "n=%d pair %s", n, pair)
		}
		assert.Len(t, pairs, n*(n-1)/2, "n=%d", n)
	}
}

func TestRoundRobinNoTeamTwiceInSameRound(t *testing.T) {
	for _, n := range []int{5, 6, 9} {
		structure, err := NewRoundRobinGenerator().Generate(GenerateParams{Participants: teamNames(n)})
		require.NoError(t, err)

		perRound := map[int]map[string]bool{}
		for _, m := range structure.Matches {
			if perRound[m.Round] == nil {
				perRound[m.Round] = map[string]bool{}
			}
			for _, team := range []string{*m.Team1, *m.Team2} {
				assert.False(t, perRound[m.Round][team],
					"n=%d: %s appears twice in round %d", n, team, m.Round)
				perRound[m.Round][team] = true
			}
		}
	}
}

func TestAssignPoolsSnakeDistribution(t *testing.T) {
	participants := teamNames(8)
	pools := AssignPools(participants, 2)
	require.Len(t, pools, 2)

	// Seeds 1,4,5,8 snake into pool A; 2,3,6,7 into pool B.
	assert.Equal(t, "pool-a", pools[0].ID)
	assert.Equal(t, "Pool A", pools[0].Name)
	assert.Equal(t, []string{"Team 01", "Team 04", "Team 05", "Team 08"}, pools[0].Teams)
	assert.Equal(t, []string{"Team 02", "Team 03", "Team 06", "Team 07"}, pools[1].Teams)
}

func TestRoundRobinMultiPoolBracketTags(t *testing.T) {
	structure, err := NewRoundRobinGenerator().Generate(GenerateParams{
		Participants: teamNames(8),
		StageConfig: models.StageConfig{
			Engine:     models.EngineRoundRobin,
			RoundRobin: &models.RoundRobinSettings{PoolCount: 2},
		},
	})
	require.NoError(t, err)

	// Each pool of 4 plays 6 matches, tagged with its pool id.
	byBracket := map[string]int{}
	for _, m := range structure.Matches {
		byBracket[m.Bracket]++
	}
	assert.Equal(t, map[string]int{"pool-a": 6, "pool-b": 6}, byBracket)
}

func TestRoundRobinSinglePoolUsesMainTag(t *testing.T) {
	structure, err := NewRoundRobinGenerator().Generate(GenerateParams{Participants: teamNames(4)})
	require.NoError(t, err)
	for _, m := range structure.Matches {
		assert.Equal(t, models.BracketMain, m.Bracket)
	}
}

func ExampleAssignPools() {
	pools := AssignPools([]string{"A", "B", "C", "D", "E", "F"}, 3)
	for _, p := range pools {
		fmt.Println(p.Name, p.Teams)
	}
	// Output:
	// Pool A [A F]
	// Pool B [B E]
	// Pool C [C D]
}
