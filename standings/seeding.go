package standings

import (
	"fmt"
	"sort"

	"github.com/champions4change/tournament-engine/models"
)

// SeedAdvancers turns the advancing teams into a seeded order: teams are
// grouped by pool placement (all 1st-place finishers, then 2nd-place, and
// so on, wildcards last), each group internally sorted by performance, and
// the groups concatenated into sequential seeds. The seed order is what the
// next stage's generator consumes.
func SeedAdvancers(advancing []models.TeamStanding, wildcards []string) []models.SeedAssignment {
	wildcardSet := make(map[string]bool, len(wildcards))
	for _, w := range wildcards {
		wildcardSet[w] = true
	}

	groups := make(map[int][]models.TeamStanding)
	var placements []int
	for _, s := range advancing {
		placement := s.PoolPlacement
		if wildcardSet[s.Team] {
			placement = 1 << 20 // wildcards seed after every placement group
		}
		if _, ok := groups[placement]; !ok {
			placements = append(placements, placement)
		}
		groups[placement] = append(groups[placement], s)
	}
	sort.Ints(placements)

	total := len(advancing)
	out := make([]models.SeedAssignment, 0, total)
	seed := 0
	for _, placement := range placements {
		group := groups[placement]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Points != group[j].Points {
				return group[i].Points > group[j].Points
			}
			if group[i].PointDiff != group[j].PointDiff {
				return group[i].PointDiff > group[j].PointDiff
			}
			return group[i].Team < group[j].Team
		})
		for _, s := range group {
			seed++
			out = append(out, models.SeedAssignment{
				Team:            s.Team,
				Seed:            seed,
				BracketPosition: BracketPositionForSeed(seed, total),
				Justification:   seedJustification(s, wildcardSet[s.Team]),
			})
		}
	}
	return out
}

// BracketPositionForSeed maps seed s of T advancers into the standard
// top-half/bottom-half layout: the top half keeps its seed position, the
// bottom half mirrors, so the top seeds cannot meet until late rounds.
func BracketPositionForSeed(seed, total int) int {
	if total <= 0 {
		return seed
	}
	if seed <= total/2 {
		return seed
	}
	return total - seed + 1
}

func seedJustification(s models.TeamStanding, wildcard bool) string {
	record := fmt.Sprintf("%d-%d", s.Wins, s.Losses)
	if s.Draws > 0 {
		record = fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Draws)
	}
	if wildcard {
		return fmt.Sprintf("wildcard from %s (%s, %+d point differential)", s.PoolID, record, s.PointDiff)
	}
	return fmt.Sprintf("%s place %d (%s, %+d point differential)", s.PoolID, s.PoolPlacement, record, s.PointDiff)
}
