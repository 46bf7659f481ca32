package brackets

import (
	"errors"

	"github.com/champions4change/tournament-engine/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// Generate produces only round 1, pairing the top half of the seed order
// against the bottom half (seed 1 vs seed N/2+1, and so on). Later rounds
// depend on results and are generated incrementally by the swiss package as
// each round completes. TotalRounds reports the planned round count, which
// defaults to the point where a single perfect record can remain.
func (g *SwissGenerator) Generate(params GenerateParams) (*models.BracketStructure, error) {
	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, errors.New("not enough participants to generate swiss pairings (minimum 2)")
	}

	plannedRounds := 0
	if params.StageConfig.Swiss != nil {
		plannedRounds = params.StageConfig.Swiss.Rounds
	}
	if plannedRounds == 0 {
		for (1 << uint(plannedRounds)) < n {
			plannedRounds++
		}
	}

	half := n / 2
	matches := make([]models.Match, 0, half)
	for i := 0; i < half; i++ {
		matches = append(matches, newMatch(params, 1, i+1, models.BracketMain,
			strPtr(participants[i]), strPtr(participants[half+i])))
	}
	// Odd entrant count: the last seed receives a round-1 bye, recorded as
	// a completed match with a single side so the history shows it.
	if n%2 != 0 {
		bye := newMatch(params, 1, half+1, models.BracketMain, strPtr(participants[n-1]), nil)
		bye.Status = models.MatchStatusCompleted
		bye.Winner = strPtr(participants[n-1])
		matches = append(matches, bye)
	}

	return &models.BracketStructure{
		Format:       models.EngineSwiss,
		Matches:      matches,
		TotalMatches: len(matches),
		TotalRounds:  plannedRounds,
	}, nil
}
