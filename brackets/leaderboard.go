package brackets

import (
	"errors"

	"github.com/champions4change/tournament-engine/models"
)

const defaultHeatSize = 8

type LeaderboardGenerator struct{}

func NewLeaderboardGenerator() Generator {
	return &LeaderboardGenerator{}
}

func (g *LeaderboardGenerator) GetName() string {
	return "Leaderboard"
}

// Generate schedules heats rather than head-to-head pairs: each round
// (attempt) splits the field into heats of at most HeatSize participants,
// and results arrive as per-participant rankings instead of a binary
// winner.
func (g *LeaderboardGenerator) Generate(params GenerateParams) (*models.BracketStructure, error) {
	participants := params.Participants
	if len(participants) < 2 {
		return nil, errors.New("not enough participants to generate a leaderboard event (minimum 2)")
	}

	heatSize := defaultHeatSize
	attempts := 1
	if settings := params.StageConfig.Leaderboard; settings != nil {
		if settings.HeatSize > 1 {
			heatSize = settings.HeatSize
		}
		if settings.Attempts > 0 {
			attempts = settings.Attempts
		}
	}

	matches := make([]models.Match, 0)
	for round := 1; round <= attempts; round++ {
		position := 0
		for start := 0; start < len(participants); start += heatSize {
			end := start + heatSize
			if end > len(participants) {
				end = len(participants)
			}
			position++
			heat := newMatch(params, round, position, models.BracketMain, nil, nil)
			heat.HeatParticipants = append([]string(nil), participants[start:end]...)
			matches = append(matches, heat)
		}
	}

	return &models.BracketStructure{
		Format:       models.EngineLeaderboard,
		Matches:      matches,
		TotalMatches: len(matches),
		TotalRounds:  attempts,
	}, nil
}
