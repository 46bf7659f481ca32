package brackets

import (
	"errors"
	"fmt"
	"math"

	"github.com/champions4change/tournament-engine/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// Generate builds a winners bracket identical to single elimination, a
// pre-sized losers bracket with 2*(W-1) rounds for W winners rounds, and
// two grand-final slots: the grand final itself and a pre-created reset
// match played only when the losers-bracket finalist beats the
// winners-bracket finalist once. The reset match is cancelled, never
// deleted, when it turns out unnecessary.
//
// Losers round r holds bracketSize / 2^(ceil(r/2)+1) matches: odd rounds
// pair losers-bracket survivors, even rounds receive the winners-bracket
// drop for that depth, so rounds come in equal-sized pairs
// (n/4, n/4, n/8, n/8, ... 1, 1).
func (g *DoubleEliminationGenerator) Generate(params GenerateParams) (*models.BracketStructure, error) {
	participants := params.Participants
	if len(participants) < 2 {
		return nil, errors.New("not enough participants to generate a double elimination bracket (minimum 2)")
	}

	// A two-entrant double elimination has no losers bracket to route
	// through; pad to the four-slot minimum so the drop pattern holds.
	bracketSize := nextPowerOfTwo(len(participants))
	if bracketSize < 4 {
		bracketSize = 4
	}
	numRounds := int(math.Ceil(math.Log2(float64(bracketSize))))
	field := FillParticipants(participants, bracketSize, models.ParticipantTeam)

	se := &SingleEliminationGenerator{}
	matches := se.buildRounds(params, field, numRounds, models.BracketWinners)

	for r := 1; r <= 2*(numRounds-1); r++ {
		count := losersRoundSize(bracketSize, r)
		for pos := 1; pos <= count; pos++ {
			matches = append(matches, newMatch(params, r, pos, models.BracketLosers, nil, nil))
		}
	}

	// Grand final and its conditional rematch live at the top of the
	// winners bracket so the generic advancement rule reaches them.
	matches = append(matches, newMatch(params, numRounds+1, 1, models.BracketWinners, nil, nil))
	matches = append(matches, newMatch(params, numRounds+2, 1, models.BracketWinners, nil, nil))

	return &models.BracketStructure{
		Format:       models.EngineDoubleElimination,
		Matches:      matches,
		TotalMatches: len(matches),
		TotalRounds:  numRounds + 2,
	}, nil
}

// losersRoundSize returns how many matches losers round r holds for the
// given power-of-two bracket size.
func losersRoundSize(bracketSize, r int) int {
	depth := (r + 1) / 2 // pair index: rounds (1,2)->1, (3,4)->2, ...
	return bracketSize / (1 << uint(depth+1))
}

// LosersRounds returns the number of losers-bracket rounds for a
// power-of-two bracket size.
func LosersRounds(bracketSize int) int {
	w := int(math.Ceil(math.Log2(float64(bracketSize))))
	return 2 * (w - 1)
}

// LoserSlot locates the losers-bracket destination of a dropped team.
// LosersMatch is the 1-based position within the round; Slot is 1 (team1)
// or 2 (team2).
type LoserSlot struct {
	LosersRound int
	LosersMatch int
	Slot        int
}

// RouteLoser maps a loss at winners round R, position P (zero-based) to its
// losers-bracket slot. Round 1 losers fill losers round 1 two at a time,
// with the side chosen by the parity of P; losers from deeper winners
// rounds drop into losers round 2*(R-1) at the same position, taking the
// second slot opposite the losers-bracket survivor. The function is pure
// and holds no bracket state; callers recover from out-of-range inputs with
// the first-open-slot fallback rather than dropping the team.
func RouteLoser(winnersRound, winnersPositionZeroBased int) (LoserSlot, error) {
	if winnersRound < 1 {
		return LoserSlot{}, fmt.Errorf("invalid winners round %d", winnersRound)
	}
	if winnersPositionZeroBased < 0 {
		return LoserSlot{}, fmt.Errorf("invalid winners position %d", winnersPositionZeroBased)
	}

	if winnersRound == 1 {
		slot := 1
		if winnersPositionZeroBased%2 == 1 {
			slot = 2
		}
		return LoserSlot{
			LosersRound: 1,
			LosersMatch: winnersPositionZeroBased/2 + 1,
			Slot:        slot,
		}, nil
	}

	return LoserSlot{
		LosersRound: 2 * (winnersRound - 1),
		LosersMatch: winnersPositionZeroBased + 1,
		Slot:        2,
	}, nil
}
