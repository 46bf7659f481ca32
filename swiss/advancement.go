package swiss

import (
	"fmt"

	"github.com/champions4change/tournament-engine/models"
)

// ExecuteSwissToElimination selects which Swiss finishers enter the
// elimination stage and hands back their seeded order. Threshold filters
// (points, win percentage, performance) run first, the field is truncated
// to the advancing count, and then any guaranteed top finishers are forced
// back in: a guarantee always overrides a threshold, so the top of the
// table can never be excluded by a secondary filter.
func ExecuteSwissToElimination(rounds []models.SwissRound, criteria models.SwissEntryCriteria, teams []string) (*models.AdvancementResult, error) {
	if criteria.TotalTeamsAdvancing < 1 {
		return nil, fmt.Errorf("total_teams_advancing must be positive, got %d", criteria.TotalTeamsAdvancing)
	}

	records := CalculateStandings(rounds, teams)

	qualified := make([]models.SwissTeamRecord, 0, criteria.TotalTeamsAdvancing)
	for _, rec := range records {
		if meetsThresholds(rec, criteria) {
			qualified = append(qualified, rec)
		}
	}
	if len(qualified) > criteria.TotalTeamsAdvancing {
		qualified = qualified[:criteria.TotalTeamsAdvancing]
	}

	guaranteed := criteria.GuaranteedSlots
	if guaranteed > criteria.TotalTeamsAdvancing {
		guaranteed = criteria.TotalTeamsAdvancing
	}
	if guaranteed > len(records) {
		guaranteed = len(records)
	}
	for i := 0; i < guaranteed; i++ {
		if containsTeam(qualified, records[i].Team) {
			continue
		}
		// Reinsert the guaranteed finisher in standings order, evicting
		// the weakest qualifier if the field is full.
		if len(qualified) == criteria.TotalTeamsAdvancing {
			qualified = qualified[:len(qualified)-1]
		}
		qualified = append(qualified, records[i])
	}
	sortRecords(qualified)

	result := &models.AdvancementResult{}
	total := len(qualified)
	for i, rec := range qualified {
		result.Advancing = append(result.Advancing, rec.Team)
		result.Seeding = append(result.Seeding, models.SeedAssignment{
			Team:            rec.Team,
			Seed:            i + 1,
			BracketPosition: bracketPositionForSeed(i+1, total),
			Justification: fmt.Sprintf("swiss finish %d (%.1f points, Buchholz %.1f)",
				i+1, rec.Points, rec.Buchholz),
		})
	}
	for _, rec := range records {
		if !containsTeam(qualified, rec.Team) {
			result.Eliminated = append(result.Eliminated, rec.Team)
		}
	}
	return result, nil
}

func meetsThresholds(rec models.SwissTeamRecord, criteria models.SwissEntryCriteria) bool {
	if criteria.MinPoints != nil && rec.Points < *criteria.MinPoints {
		return false
	}
	if criteria.MinWinPercentage != nil {
		games := rec.Wins + rec.Draws + rec.Losses
		if games == 0 {
			return false
		}
		if float64(rec.Wins)/float64(games) < *criteria.MinWinPercentage {
			return false
		}
	}
	if criteria.MinPerformance != nil && rec.PerformanceRating < *criteria.MinPerformance {
		return false
	}
	return true
}

func containsTeam(records []models.SwissTeamRecord, team string) bool {
	for _, r := range records {
		if r.Team == team {
			return true
		}
	}
	return false
}

// bracketPositionForSeed mirrors the pool-stage seeding layout: top half
// keeps its seed, bottom half mirrors.
func bracketPositionForSeed(seed, total int) int {
	if total <= 0 || seed <= total/2 {
		return seed
	}
	return total - seed + 1
}
