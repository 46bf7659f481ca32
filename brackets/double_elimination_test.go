package brackets

import (
	"testing"

	"github.com/champions4change/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleEliminationEightTeamStructure(t *testing.T) {
	structure, err := NewDoubleEliminationGenerator().Generate(GenerateParams{
		TournamentID: 1,
		Participants: teamNames(8),
	})
	require.NoError(t, err)

	// 7 winners matches, 6 losers matches, grand final, reset.
	assert.Equal(t, 15, structure.TotalMatches)
	assert.Equal(t, 5, structure.TotalRounds)

	winners := map[int]int{}
	losers := map[int]int{}
	for _, m := range structure.Matches {
		switch m.Bracket {
		case models.BracketWinners:
			winners[m.Round]++
		case models.BracketLosers:
			losers[m.Round]++
		default:
			t.Fatalf("unexpected bracket tag %q", m.Bracket)
		}
	}

	assert.Equal(t, map[int]int{1: 4, 2: 2, 3: 1, 4: 1, 5: 1}, winners,
		"winners rounds plus grand final and reset")
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 1, 4: 1}, losers,
		"losers rounds pair up as (n/4, n/4, n/8, n/8)")
}

func TestDoubleEliminationPadsToFourSlots(t *testing.T) {
	structure, err := NewDoubleEliminationGenerator().Generate(GenerateParams{
		Participants: []string{"A", "B"},
	})
	require.NoError(t, err)

	// 3 winners + 2 losers + grand final + reset.
	assert.Equal(t, 7, structure.TotalMatches)
	assert.Equal(t, 4, structure.TotalRounds)
}

func TestLosersRounds(t *testing.T) {
	assert.Equal(t, 2, LosersRounds(4))
	assert.Equal(t, 4, LosersRounds(8))
	assert.Equal(t, 6, LosersRounds(16))

	assert.Equal(t, 2, losersRoundSize(8, 1))
	assert.Equal(t, 2, losersRoundSize(8, 2))
	assert.Equal(t, 1, losersRoundSize(8, 3))
	assert.Equal(t, 1, losersRoundSize(8, 4))
	assert.Equal(t, 4, losersRoundSize(16, 1))
	assert.Equal(t, 2, losersRoundSize(16, 3))
	assert.Equal(t, 1, losersRoundSize(16, 5))
}

func TestRouteLoser(t *testing.T) {
	tests := []struct {
		round, pos int
		want       LoserSlot
	}{
		// Winners round 1 fills losers round 1 two drops per match,
		// the slot chosen by position parity.
		{1, 0, LoserSlot{LosersRound: 1, LosersMatch: 1, Slot: 1}},
		{1, 1, LoserSlot{LosersRound: 1, LosersMatch: 1, Slot: 2}},
		{1, 2, LoserSlot{LosersRound: 1, LosersMatch: 2, Slot: 1}},
		{1, 3, LoserSlot{LosersRound: 1, LosersMatch: 2, Slot: 2}},
		// Deeper rounds drop into the even losers round at the same
		// position, opposite the losers-bracket survivor.
		{2, 0, LoserSlot{LosersRound: 2, LosersMatch: 1, Slot: 2}},
		{2, 1, LoserSlot{LosersRound: 2, LosersMatch: 2, Slot: 2}},
		{3, 0, LoserSlot{LosersRound: 4, LosersMatch: 1, Slot: 2}},
	}
	for _, tc := range tests {
		got, err := RouteLoser(tc.round, tc.pos)
		require.NoError(t, err, "round %d pos %d", tc.round, tc.pos)
		assert.Equal(t, tc.want, got, "round %d pos %d", tc.round, tc.pos)
	}
}

func TestRouteLoserRejectsInvalidInput(t *testing.T) {
	_, err := RouteLoser(0, 0)
	assert.Error(t, err)
	_, err = RouteLoser(1, -1)
	assert.Error(t, err)
}

// Every loser of a full 8-team run must land in a distinct losers-bracket
// slot: no collisions, no slot left unreachable.
func TestRouteLoserCoversEightTeamBracket(t *testing.T) {
	type key struct{ round, match, slot int }
	seen := map[key]bool{}

	drops := []struct{ round, matches int }{
		{1, 4},
		{2, 2},
		{3, 1},
	}
	for _, d := range drops {
		for pos := 0; pos < d.matches; pos++ {
			slot, err := RouteLoser(d.round, pos)
			require.NoError(t, err)
			k := key{slot.LosersRound, slot.LosersMatch, slot.Slot}
			assert.False(t, seen[k], "collision at %+v", k)
			seen[k] = true

			require.LessOrEqual(t, slot.LosersRound, LosersRounds(8))
			require.LessOrEqual(t, slot.LosersMatch, losersRoundSize(8, slot.LosersRound))
		}
	}
	assert.Len(t, seen, 7, "seven losers drop out of an 8-team winners bracket")
}
