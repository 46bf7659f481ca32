package swiss

import (
	"fmt"
	"sort"
	"testing"

	"github.com/champions4change/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swissTeams(n int) []string {
	teams := make([]string, n)
	for i := range teams {
		teams[i] = fmt.Sprintf("Team %02d", i+1)
	}
	return teams
}

func recordWithPoints(team string, points float64, opponents ...string) models.SwissTeamRecord {
	return models.SwissTeamRecord{Team: team, Points: points, Opponents: opponents}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + " vs " + b
}

// resolvePairings decides every pending pairing deterministically: the
// lexicographically smaller name wins.
func resolvePairings(pairings []models.SwissPairing) {
	for i := range pairings {
		if pairings[i].IsBye || pairings[i].Result != models.SwissResultPending {
			continue
		}
		if pairings[i].Team1 < pairings[i].Team2 {
			pairings[i].Result = models.SwissResultTeam1Win
		} else {
			pairings[i].Result = models.SwissResultTeam2Win
		}
	}
}

func TestGeneratePairingsInputValidation(t *testing.T) {
	_, err := GeneratePairings([]models.SwissTeamRecord{recordWithPoints("Solo", 0)}, 1, Options{})
	assert.Error(t, err)

	_, err = GeneratePairings([]models.SwissTeamRecord{
		recordWithPoints("A", 0),
		recordWithPoints("B", 0),
	}, 0, Options{})
	assert.Error(t, err)
}

func TestGeneratePairingsWithinPointGroups(t *testing.T) {
	records := []models.SwissTeamRecord{
		recordWithPoints("Cats", 1),
		recordWithPoints("Ants", 2),
		recordWithPoints("Dogs", 1),
		recordWithPoints("Bees", 2),
	}

	pairings, err := GeneratePairings(records, 2, Options{})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	// The 2-point group pairs internally, as does the 1-point group.
	assert.Equal(t, "Ants", pairings[0].Team1)
	assert.Equal(t, "Bees", pairings[0].Team2)
	assert.Equal(t, "Cats", pairings[1].Team1)
	assert.Equal(t, "Dogs", pairings[1].Team2)

	for i, p := range pairings {
		assert.Equal(t, i+1, p.Table)
		assert.Equal(t, models.SwissResultPending, p.Result)
	}
}

func TestGeneratePairingsSkipsRematchWithinGroup(t *testing.T) {
	records := []models.SwissTeamRecord{
		recordWithPoints("Ants", 1, "Bees", "Cats"),
		recordWithPoints("Bees", 1, "Ants"),
		recordWithPoints("Cats", 1, "Ants"),
		recordWithPoints("Dogs", 1),
	}

	pairings, err := GeneratePairings(records, 2, Options{AvoidRematches: true})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	// Ants already faced Bees and Cats, so it takes Dogs instead.
	assert.Equal(t, "Ants", pairings[0].Team1)
	assert.Equal(t, "Dogs", pairings[0].Team2)
	assert.Equal(t, "Bees", pairings[1].Team1)
	assert.Equal(t, "Cats", pairings[1].Team2)
}

func TestGeneratePairingsFloatsExhaustedAnchor(t *testing.T) {
	// Ants has faced its entire point group; it floats down and pairs
	// against the group below rather than accepting a rematch.
	records := []models.SwissTeamRecord{
		recordWithPoints("Ants", 1, "Bees", "Cats"),
		recordWithPoints("Bees", 1, "Ants"),
		recordWithPoints("Cats", 1, "Ants"),
		recordWithPoints("Dogs", 0),
	}

	pairings, err := GeneratePairings(records, 2, Options{AvoidRematches: true})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	assert.Equal(t, "Bees", pairings[0].Team1)
	assert.Equal(t, "Cats", pairings[0].Team2)
	assert.Equal(t, "Ants", pairings[1].Team1)
	assert.Equal(t, "Dogs", pairings[1].Team2)
}

func TestGeneratePairingsAcceptsForcedRematch(t *testing.T) {
	// Two teams left, already faced each other: the rematch is allowed.
	records := []models.SwissTeamRecord{
		recordWithPoints("Ants", 1, "Bees"),
		recordWithPoints("Bees", 0, "Ants"),
	}

	pairings, err := GeneratePairings(records, 2, Options{AvoidRematches: true})
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Equal(t, "Ants", pairings[0].Team1)
	assert.Equal(t, "Bees", pairings[0].Team2)
}

func TestGeneratePairingsOddFieldBye(t *testing.T) {
	records := []models.SwissTeamRecord{
		recordWithPoints("Ants", 2),
		recordWithPoints("Bees", 2),
		recordWithPoints("Cats", 1),
		recordWithPoints("Dogs", 1),
		recordWithPoints("Emus", 0),
	}

	pairings, err := GeneratePairings(records, 3, Options{AvoidRematches: true})
	require.NoError(t, err)
	require.Len(t, pairings, 3)

	bye := pairings[2]
	assert.True(t, bye.IsBye)
	assert.Equal(t, "Emus", bye.Team1, "bye goes to the lowest-standing unpaired team")
	assert.Empty(t, bye.Team2)
	assert.Equal(t, models.SwissResultTeam1Win, bye.Result, "bye scores as a win immediately")
}

func TestGeneratePairingsAccelerated(t *testing.T) {
	teams := swissTeams(12)
	records := make([]models.SwissTeamRecord, len(teams))
	for i, team := range teams {
		records[i] = recordWithPoints(team, 0)
		records[i].Seed = i + 1
	}

	pairings, err := GeneratePairings(records, 1, Options{Accelerated: true})
	require.NoError(t, err)
	require.Len(t, pairings, 6)

	// Top half against bottom half: seed i meets seed i+6.
	for i, p := range pairings {
		assert.Equal(t, teams[i], p.Team1)
		assert.Equal(t, teams[6+i], p.Team2)
	}
}

func TestGeneratePairingsAcceleratedOnlyEarlyRoundsAndLargeFields(t *testing.T) {
	records := make([]models.SwissTeamRecord, 12)
	for i := range records {
		records[i] = recordWithPoints(fmt.Sprintf("Team %02d", i+1), 0)
	}

	// Round 3 pairs normally even with Accelerated set.
	pairings, err := GeneratePairings(records, 3, Options{Accelerated: true})
	require.NoError(t, err)
	assert.Equal(t, "Team 02", pairings[0].Team2)

	// A field below twelve teams never accelerates.
	pairings, err = GeneratePairings(records[:8], 1, Options{Accelerated: true})
	require.NoError(t, err)
	assert.Equal(t, "Team 02", pairings[0].Team2)
}

// TestSixteenTeamFiveRoundsNoRematch runs a full simulated event: pair,
// resolve, recompute standings, repeat. With rematch avoidance on, no two
// teams should ever meet twice across five rounds of sixteen.
func TestSixteenTeamFiveRoundsNoRematch(t *testing.T) {
	teams := swissTeams(16)
	var rounds []models.SwissRound
	records := CalculateStandings(rounds, teams)

	for roundNumber := 1; roundNumber <= 5; roundNumber++ {
		pairings, err := GeneratePairings(records, roundNumber, Options{AvoidRematches: true})
		require.NoError(t, err)
		require.Len(t, pairings, 8, "round %d", roundNumber)

		// Each team plays exactly once per round.
		seen := make(map[string]bool)
		for _, p := range pairings {
			assert.False(t, seen[p.Team1], "%s paired twice in round %d", p.Team1, roundNumber)
			seen[p.Team1] = true
			if !p.IsBye {
				assert.False(t, seen[p.Team2], "%s paired twice in round %d", p.Team2, roundNumber)
				seen[p.Team2] = true
			}
		}
		assert.Len(t, seen, 16)

		resolvePairings(pairings)
		rounds = append(rounds, models.SwissRound{RoundNumber: roundNumber, Pairings: pairings})
		records = CalculateStandings(rounds, teams)
	}

	meetings := make(map[string]int)
	for _, round := range rounds {
		for _, p := range round.Pairings {
			if p.IsBye {
				continue
			}
			meetings[pairKey(p.Team1, p.Team2)]++
		}
	}
	keys := make([]string, 0, len(meetings))
	for k := range meetings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		assert.Equal(t, 1, meetings[k], "rematch: %s", k)
	}
}

// TestOddFieldRotatesByes simulates a seven-team event and checks each
// round awards exactly one bye.
func TestOddFieldRotatesByes(t *testing.T) {
	teams := swissTeams(7)
	var rounds []models.SwissRound
	records := CalculateStandings(rounds, teams)

	for roundNumber := 1; roundNumber <= 3; roundNumber++ {
		pairings, err := GeneratePairings(records, roundNumber, Options{AvoidRematches: true})
		require.NoError(t, err)
		require.Len(t, pairings, 4)

		byes := 0
		for _, p := range pairings {
			if p.IsBye {
				byes++
			}
		}
		assert.Equal(t, 1, byes, "round %d", roundNumber)

		resolvePairings(pairings)
		rounds = append(rounds, models.SwissRound{RoundNumber: roundNumber, Pairings: pairings})
		records = CalculateStandings(rounds, teams)
	}
}
