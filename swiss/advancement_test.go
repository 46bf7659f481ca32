package swiss

import (
	"testing"

	"github.com/champions4change/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

// fourTeamRounds is the Buchholz fixture reused across advancement tests:
// final order Ants 2.0, Bees 1.0, Cats 0.5, Dogs 0.5.
func fourTeamRounds() []models.SwissRound {
	return []models.SwissRound{
		{RoundNumber: 1, Pairings: []models.SwissPairing{
			playedPairing("Ants", "Bees", 2, 1, models.SwissResultTeam1Win),
			playedPairing("Cats", "Dogs", 1, 1, models.SwissResultDraw),
		}},
		{RoundNumber: 2, Pairings: []models.SwissPairing{
			playedPairing("Ants", "Cats", 3, 0, models.SwissResultTeam1Win),
			playedPairing("Bees", "Dogs", 2, 0, models.SwissResultTeam1Win),
		}},
	}
}

func TestExecuteSwissToEliminationRejectsZeroAdvancing(t *testing.T) {
	_, err := ExecuteSwissToElimination(fourTeamRounds(), models.SwissEntryCriteria{}, []string{"Ants", "Bees"})
	assert.Error(t, err)
}

func TestExecuteSwissToEliminationTruncatesToCount(t *testing.T) {
	teams := []string{"Ants", "Bees", "Cats", "Dogs"}
	result, err := ExecuteSwissToElimination(fourTeamRounds(), models.SwissEntryCriteria{
		TotalTeamsAdvancing: 2,
	}, teams)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ants", "Bees"}, result.Advancing)
	assert.Equal(t, []string{"Cats", "Dogs"}, result.Eliminated)

	require.Len(t, result.Seeding, 2)
	assert.Equal(t, "Ants", result.Seeding[0].Team)
	assert.Equal(t, 1, result.Seeding[0].Seed)
	assert.Equal(t, 2, result.Seeding[1].Seed)
	assert.Contains(t, result.Seeding[0].Justification, "swiss finish 1")
}

func TestExecuteSwissToEliminationMinPoints(t *testing.T) {
	teams := []string{"Ants", "Bees", "Cats", "Dogs"}
	result, err := ExecuteSwissToElimination(fourTeamRounds(), models.SwissEntryCriteria{
		TotalTeamsAdvancing: 3,
		MinPoints:           float64Ptr(1.0),
	}, teams)
	require.NoError(t, err)

	// Cats and Dogs sit at 0.5 points and fail the threshold, so only two
	// of the three slots fill.
	assert.Equal(t, []string{"Ants", "Bees"}, result.Advancing)
	assert.ElementsMatch(t, []string{"Cats", "Dogs"}, result.Eliminated)
}

func TestExecuteSwissToEliminationMinWinPercentage(t *testing.T) {
	teams := []string{"Ants", "Bees", "Cats", "Dogs"}
	result, err := ExecuteSwissToElimination(fourTeamRounds(), models.SwissEntryCriteria{
		TotalTeamsAdvancing: 4,
		MinWinPercentage:    float64Ptr(0.5),
	}, teams)
	require.NoError(t, err)

	// Ants won both games, Bees one of two; Cats and Dogs are winless.
	assert.Equal(t, []string{"Ants", "Bees"}, result.Advancing)
}

func TestExecuteSwissToEliminationGuaranteedSlotOverridesThreshold(t *testing.T) {
	teams := []string{"Ants", "Bees", "Cats", "Dogs"}
	result, err := ExecuteSwissToElimination(fourTeamRounds(), models.SwissEntryCriteria{
		TotalTeamsAdvancing: 3,
		MinPoints:           float64Ptr(1.0),
		GuaranteedSlots:     3,
	}, teams)
	require.NoError(t, err)

	// Cats fails the points threshold but holds the third guaranteed slot.
	assert.Equal(t, []string{"Ants", "Bees", "Cats"}, result.Advancing)
	assert.Equal(t, []string{"Dogs"}, result.Eliminated)
}

// TestExecuteSwissToEliminationGuaranteeEvictsWeakestQualifier forces the
// eviction path: the runner-up on points drew every game, fails the win
// percentage filter, and must displace a lower finisher that passed it.
//
//	R1: Aces beat Yaks,  Drakes draw Pumas,  Quails draw Rooks
//	R2: Aces beat Yaks,  Drakes draw Quails, Pumas draw Rooks
//	R3: Aces beat Pumas, Drakes draw Rooks,  Yaks beat Quails
//
// Aces finish 3.0, Drakes 1.5 with zero wins, Yaks 1.0 with one win.
func TestExecuteSwissToEliminationGuaranteeEvictsWeakestQualifier(t *testing.T) {
	teams := []string{"Aces", "Drakes", "Rooks", "Pumas", "Quails", "Yaks"}
	rounds := []models.SwissRound{
		{RoundNumber: 1, Pairings: []models.SwissPairing{
			playedPairing("Aces", "Yaks", 2, 0, models.SwissResultTeam1Win),
			playedPairing("Drakes", "Pumas", 2, 2, models.SwissResultDraw),
			playedPairing("Quails", "Rooks", 1, 1, models.SwissResultDraw),
		}},
		{RoundNumber: 2, Pairings: []models.SwissPairing{
			playedPairing("Aces", "Yaks", 3, 1, models.SwissResultTeam1Win),
			playedPairing("Drakes", "Quails", 2, 2, models.SwissResultDraw),
			playedPairing("Pumas", "Rooks", 0, 0, models.SwissResultDraw),
		}},
		{RoundNumber: 3, Pairings: []models.SwissPairing{
			playedPairing("Aces", "Pumas", 2, 1, models.SwissResultTeam1Win),
			playedPairing("Drakes", "Rooks", 2, 2, models.SwissResultDraw),
			playedPairing("Yaks", "Quails", 2, 0, models.SwissResultTeam1Win),
		}},
	}

	result, err := ExecuteSwissToElimination(rounds, models.SwissEntryCriteria{
		TotalTeamsAdvancing: 2,
		MinWinPercentage:    float64Ptr(0.3),
		GuaranteedSlots:     2,
	}, teams)
	require.NoError(t, err)

	// Without the guarantee the qualifiers would be Aces and Yaks; the
	// guarantee reinstates Drakes and evicts Yaks.
	assert.Equal(t, []string{"Aces", "Drakes"}, result.Advancing)
	assert.Contains(t, result.Eliminated, "Yaks")
	assert.NotContains(t, result.Advancing, "Yaks")
}

func TestBracketPositionForSeedMirrorsBottomHalf(t *testing.T) {
	cases := []struct {
		seed, total, want int
	}{
		{1, 8, 1},
		{4, 8, 4},
		{5, 8, 4},
		{8, 8, 1},
		{1, 2, 1},
		{2, 2, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, bracketPositionForSeed(tc.seed, tc.total), "seed %d of %d", tc.seed, tc.total)
	}
}
