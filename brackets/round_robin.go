package brackets

import (
	"errors"
	"fmt"

	"github.com/champions4change/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate schedules every unordered pair within each pool exactly once,
// assigning round numbers with the circle method so no participant appears
// twice in the same round. A single-pool stage tags matches "main";
// multi-pool stages tag matches with their pool id.
func (g *RoundRobinGenerator) Generate(params GenerateParams) (*models.BracketStructure, error) {
	participants := params.Participants
	if len(participants) < 2 {
		return nil, errors.New("not enough participants to generate a round robin schedule (minimum 2)")
	}

	poolCount := 1
	if params.StageConfig.RoundRobin != nil && params.StageConfig.RoundRobin.PoolCount > 1 {
		poolCount = params.StageConfig.RoundRobin.PoolCount
	}

	pools := AssignPools(participants, poolCount)

	matches := make([]models.Match, 0)
	totalRounds := 0
	for _, pool := range pools {
		bracket := models.BracketMain
		if poolCount > 1 {
			bracket = pool.ID
		}
		poolMatches, rounds := circleSchedule(params, pool.Teams, bracket)
		matches = append(matches, poolMatches...)
		if rounds > totalRounds {
			totalRounds = rounds
		}
	}

	return &models.BracketStructure{
		Format:       models.EngineRoundRobin,
		Matches:      matches,
		TotalMatches: len(matches),
		TotalRounds:  totalRounds,
	}, nil
}

// PoolAssignment is a pool id with its snake-distributed members.
type PoolAssignment struct {
	ID    string
	Name  string
	Teams []string
}

// AssignPools snake-distributes seeded participants across count pools so
// pool strength stays balanced: seeds 1..count go forward, the next count
// seeds go backward, and so on.
func AssignPools(participants []string, count int) []PoolAssignment {
	if count < 1 {
		count = 1
	}
	pools := make([]PoolAssignment, count)
	for i := range pools {
		pools[i] = PoolAssignment{
			ID:   fmt.Sprintf("pool-%c", 'a'+i),
			Name: fmt.Sprintf("Pool %c", 'A'+i),
		}
	}
	for i, team := range participants {
		lap := i / count
		idx := i % count
		if lap%2 == 1 {
			idx = count - 1 - idx
		}
		pools[idx].Teams = append(pools[idx].Teams, team)
	}
	return pools
}

// circleSchedule runs the circle method: fix the first entrant, rotate the
// rest one step per round, pair index i against index n-1-i. An odd field
// gets a rotating dummy whose pairings are skipped, which is how byes fall
// out of the schedule.
func circleSchedule(params GenerateParams, teams []string, bracket string) ([]models.Match, int) {
	n := len(teams)
	if n < 2 {
		return nil, 0
	}

	rot := make([]*string, 0, n+1)
	for i := range teams {
		rot = append(rot, &teams[i])
	}
	if n%2 != 0 {
		rot = append(rot, nil)
		n++
	}

	numRounds := n - 1
	half := n / 2
	matches := make([]models.Match, 0, numRounds*half)

	for round := 1; round <= numRounds; round++ {
		position := 0
		for i := 0; i < half; i++ {
			t1 := rot[i]
			t2 := rot[n-1-i]
			if t1 == nil || t2 == nil {
				continue
			}
			position++
			matches = append(matches, newMatch(params, round, position, bracket, strPtr(*t1), strPtr(*t2)))
		}
		// Rotate all but the first entrant.
		last := rot[n-1]
		copy(rot[2:], rot[1:n-1])
		rot[1] = last
	}

	return matches, numRounds
}
