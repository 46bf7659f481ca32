package brackets

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/champions4change/tournament-engine/models"
	"github.com/google/uuid"
)

// GenerateParams carries everything a generator needs to build one stage.
// Participants are ordered by seed (index 0 = seed 1).
type GenerateParams struct {
	TournamentID int
	Stage        int
	StageConfig  models.StageConfig
	Participants []string
}

// Generator builds the complete match set for one stage. Implementations
// are pure: deterministic for the same params, no side effects.
type Generator interface {
	Generate(params GenerateParams) (*models.BracketStructure, error)

	GetName() string
}

// ForEngine dispatches on the stage engine. An unrecognized engine falls
// back to single elimination with a logged warning rather than an error, so
// partially-configured tournaments still produce a usable bracket.
func ForEngine(engine models.EngineType, logger *slog.Logger) Generator {
	switch engine {
	case models.EngineSingleElimination:
		return NewSingleEliminationGenerator()
	case models.EngineDoubleElimination:
		return NewDoubleEliminationGenerator()
	case models.EngineRoundRobin:
		return NewRoundRobinGenerator()
	case models.EngineSwiss:
		return NewSwissGenerator()
	case models.EngineLeaderboard:
		return NewLeaderboardGenerator()
	default:
		if logger != nil {
			logger.Warn("unrecognized bracket engine, falling back to single elimination",
				slog.String("engine", string(engine)))
		}
		return NewSingleEliminationGenerator()
	}
}

// FillParticipants pads a participant list to the requested field size with
// synthesized placeholder names. Byes must still be representable as
// bracket slots, so a short list is policy, not an error.
func FillParticipants(names []string, count int, participantType models.ParticipantType) []string {
	if len(names) >= count {
		out := make([]string, count)
		copy(out, names[:count])
		return out
	}
	out := make([]string, 0, count)
	out = append(out, names...)
	prefix := "Participant"
	if participantType == models.ParticipantTeam {
		prefix = "Team"
	}
	for i := len(names) + 1; i <= count; i++ {
		out = append(out, fmt.Sprintf("%s %d", prefix, i))
	}
	return out
}

// seedOrder returns the seeds (1-based) in bracket-position order for a
// power-of-two field, so that adjacent pairs give 1vN, and top seeds cannot
// meet before the late rounds. For size 8: [1 8 4 5 3 6 2 7].
func seedOrder(size int) []int {
	order := []int{1}
	for n := 1; n < size; n *= 2 {
		next := make([]int, 0, n*2)
		for _, s := range order {
			next = append(next, s, 2*n+1-s)
		}
		order = next
	}
	return order
}

// nextPowerOfTwo rounds n up to the nearest power of two, minimum 2.
func nextPowerOfTwo(n int) int {
	size := 2
	for size < n {
		size *= 2
	}
	return size
}

func newMatch(params GenerateParams, round, position int, bracket string, team1, team2 *string) models.Match {
	now := time.Now()
	return models.Match{
		ID:           uuid.NewString(),
		TournamentID: params.TournamentID,
		Stage:        params.Stage,
		Round:        round,
		Position:     position,
		Bracket:      bracket,
		Team1:        team1,
		Team2:        team2,
		Status:       models.MatchStatusUpcoming,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func strPtr(s string) *string {
	return &s
}
