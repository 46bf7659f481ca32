package brackets

import (
	"errors"
	"math"

	"github.com/champions4change/tournament-engine/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate builds rounds = ceil(log2(N)) with round 1 paired by standard
// seeding (1 vs N, 2 vs N-1, folded) and every later round pre-created with
// open slots sized at half the previous round's match count. A field that
// is not a power of two is padded with placeholder entrants so byes occupy
// real bracket slots.
func (g *SingleEliminationGenerator) Generate(params GenerateParams) (*models.BracketStructure, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, errors.New("not enough participants to generate a single elimination bracket (minimum 2)")
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := nextPowerOfTwo(n)
	field := FillParticipants(participants, bracketSize, models.ParticipantTeam)

	matches := g.buildRounds(params, field, numRounds, models.BracketMain)

	return &models.BracketStructure{
		Format:       models.EngineSingleElimination,
		Matches:      matches,
		TotalMatches: len(matches),
		TotalRounds:  numRounds,
	}, nil
}

// buildRounds is shared with the double-elimination winners bracket, which
// is structurally identical apart from its bracket tag.
func (g *SingleEliminationGenerator) buildRounds(params GenerateParams, field []string, numRounds int, bracket string) []models.Match {
	bracketSize := len(field)
	matches := make([]models.Match, 0, bracketSize-1)

	order := seedOrder(bracketSize)
	for pos := 1; pos <= bracketSize/2; pos++ {
		team1 := field[order[2*pos-2]-1]
		team2 := field[order[2*pos-1]-1]
		matches = append(matches, newMatch(params, 1, pos, bracket, strPtr(team1), strPtr(team2)))
	}

	matchesInRound := bracketSize / 2
	for round := 2; round <= numRounds; round++ {
		matchesInRound /= 2
		for pos := 1; pos <= matchesInRound; pos++ {
			matches = append(matches, newMatch(params, round, pos, bracket, nil, nil))
		}
	}

	return matches
}
