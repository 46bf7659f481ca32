// Package swiss implements Swiss-system pairing, standings and
// qualification. Like the standings package, everything here is a pure
// function over the append-only round log.
package swiss

import (
	"fmt"
	"sort"

	"github.com/champions4change/tournament-engine/models"
)

// Options tunes pairing behavior.
type Options struct {
	// AvoidRematches skips candidates a team already faced, unless
	// floating leaves no alternative.
	AvoidRematches bool
	// Accelerated pairs top half against bottom half directly for the
	// first two rounds of large fields, spreading results faster.
	Accelerated bool
}

const acceleratedRounds = 2
const acceleratedMinField = 12

// GeneratePairings computes the pairings for the given round from current
// standings. Teams are grouped by tournament points; within a point group
// teams pair sequentially, and anyone left unpaired floats down to the next
// group. An odd field leaves one bye, awarded to the lowest-standing
// unpaired team.
func GeneratePairings(records []models.SwissTeamRecord, roundNumber int, opts Options) ([]models.SwissPairing, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("not enough teams to pair (minimum 2, got %d)", len(records))
	}
	if roundNumber < 1 {
		return nil, fmt.Errorf("invalid round number %d", roundNumber)
	}

	ordered := make([]models.SwissTeamRecord, len(records))
	copy(ordered, records)
	sortRecords(ordered)

	if opts.Accelerated && roundNumber <= acceleratedRounds && len(ordered) >= acceleratedMinField {
		return acceleratedPairings(ordered), nil
	}

	var pairings []models.SwissPairing
	var floaters []models.SwissTeamRecord

	for _, group := range pointGroups(ordered) {
		pool := append(floaters, group...)
		floaters = nil

		for len(pool) >= 2 {
			anchor := pool[0]
			oppIdx := -1
			if opts.AvoidRematches {
				for i := 1; i < len(pool); i++ {
					if !anchor.HasPlayed(pool[i].Team) {
						oppIdx = i
						break
					}
				}
			}
			if oppIdx == -1 {
				if opts.AvoidRematches && len(pool) > 2 {
					// Every candidate is a rematch; float the anchor down
					// and try to place it in a weaker group instead.
					floaters = append(floaters, anchor)
					pool = pool[1:]
					continue
				}
				// Documented exception: no alternative remains, accept
				// the rematch.
				oppIdx = 1
			}
			pairings = append(pairings, models.SwissPairing{
				Team1:  anchor.Team,
				Team2:  pool[oppIdx].Team,
				Result: models.SwissResultPending,
			})
			pool = append(pool[1:oppIdx], pool[oppIdx+1:]...)
		}
		floaters = append(floaters, pool...)
	}

	// Leftover floaters pair among themselves; the final odd team out, if
	// any, takes the bye.
	for len(floaters) >= 2 {
		pairings = append(pairings, models.SwissPairing{
			Team1:  floaters[0].Team,
			Team2:  floaters[1].Team,
			Result: models.SwissResultPending,
		})
		floaters = floaters[2:]
	}
	if len(floaters) == 1 {
		pairings = append(pairings, models.SwissPairing{
			Team1:  floaters[0].Team,
			Result: models.SwissResultTeam1Win,
			IsBye:  true,
		})
	}

	for i := range pairings {
		pairings[i].Table = i + 1
	}
	return pairings, nil
}

// acceleratedPairings pairs the top half of the standings directly against
// the bottom half.
func acceleratedPairings(ordered []models.SwissTeamRecord) []models.SwissPairing {
	half := len(ordered) / 2
	pairings := make([]models.SwissPairing, 0, half+1)
	for i := 0; i < half; i++ {
		pairings = append(pairings, models.SwissPairing{
			Team1:  ordered[i].Team,
			Team2:  ordered[half+i].Team,
			Table:  i + 1,
			Result: models.SwissResultPending,
		})
	}
	if len(ordered)%2 != 0 {
		pairings = append(pairings, models.SwissPairing{
			Team1:  ordered[len(ordered)-1].Team,
			Table:  half + 1,
			Result: models.SwissResultTeam1Win,
			IsBye:  true,
		})
	}
	return pairings
}

// pointGroups splits standings-ordered records into maximal runs of equal
// tournament points, strongest group first.
func pointGroups(ordered []models.SwissTeamRecord) [][]models.SwissTeamRecord {
	var groups [][]models.SwissTeamRecord
	for i := 0; i < len(ordered); {
		j := i + 1
		for j < len(ordered) && ordered[j].Points == ordered[i].Points {
			j++
		}
		groups = append(groups, ordered[i:j])
		i = j
	}
	return groups
}

// sortRecords applies the standings order: tournament points, Buchholz,
// game points, strength of schedule, all descending, then name for
// determinism.
func sortRecords(records []models.SwissTeamRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Buchholz != b.Buchholz {
			return a.Buchholz > b.Buchholz
		}
		if a.GamePoints != b.GamePoints {
			return a.GamePoints > b.GamePoints
		}
		if a.StrengthOfSched != b.StrengthOfSched {
			return a.StrengthOfSched > b.StrengthOfSched
		}
		return a.Team < b.Team
	})
}
