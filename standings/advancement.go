package standings

import (
	"fmt"
	"sort"

	"github.com/champions4change/tournament-engine/models"
)

// CalculatePoolAdvancement decides which teams leave a pool stage for the
// next one. Every team in the stage either advances or is recorded as
// eliminated; nobody is silently dropped.
func CalculatePoolAdvancement(pools []models.Pool, rules models.AdvancementRules, scoring Scoring, tiebreakers []models.TiebreakerMethod) (*models.AdvancementResult, error) {
	if len(pools) == 0 {
		return nil, fmt.Errorf("no pools supplied for advancement")
	}

	used := newTiebreakRecorder()
	poolTables := make([][]models.TeamStanding, 0, len(pools))
	totalTeams := 0
	for _, pool := range pools {
		table := Tally(pool.Teams, pool.Matches, scoring)
		for i := range table {
			table[i].PoolID = pool.PoolID
		}
		sort.SliceStable(table, func(i, j int) bool {
			if table[i].Points != table[j].Points {
				return table[i].Points > table[j].Points
			}
			return compareWithChain(table[i], table[j], table, tiebreakers, used) < 0
		})
		for i := range table {
			table[i].PoolPlacement = i + 1
		}
		poolTables = append(poolTables, table)
		totalTeams += len(table)
	}

	advancing, err := selectAdvancing(poolTables, rules, tiebreakers, used, totalTeams)
	if err != nil {
		return nil, err
	}

	advancingSet := make(map[string]bool, len(advancing))
	for _, s := range advancing {
		advancingSet[s.Team] = true
	}

	var wildcards []string
	if rules.WildcardSlots > 0 {
		picked := selectWildcards(poolTables, advancingSet, rules)
		for _, s := range picked {
			advancing = append(advancing, s)
			advancingSet[s.Team] = true
			wildcards = append(wildcards, s.Team)
		}
	}

	result := &models.AdvancementResult{
		Seeding:         SeedAdvancers(advancing, wildcards),
		TiebreakersUsed: used.methods(),
		Wildcards:       wildcards,
	}
	for _, s := range result.Seeding {
		result.Advancing = append(result.Advancing, s.Team)
	}
	for _, table := range poolTables {
		for _, s := range table {
			if !advancingSet[s.Team] {
				result.Eliminated = append(result.Eliminated, s.Team)
			}
		}
	}
	sort.Strings(result.Eliminated)

	return result, nil
}

func selectAdvancing(poolTables [][]models.TeamStanding, rules models.AdvancementRules, tiebreakers []models.TiebreakerMethod, used *tiebreakRecorder, totalTeams int) ([]models.TeamStanding, error) {
	switch rules.Policy {
	case models.AdvanceTopNPerPool, "":
		perPool := rules.TeamsPerPool
		if perPool <= 0 {
			perPool = 1
		}
		var advancing []models.TeamStanding
		for _, table := range poolTables {
			n := perPool
			if n > len(table) {
				n = len(table)
			}
			advancing = append(advancing, table[:n]...)
		}
		return advancing, nil

	case models.AdvanceTopNOverall:
		if rules.TotalTeams <= 0 {
			return nil, fmt.Errorf("top_n_overall advancement requires a positive total_teams, got %d", rules.TotalTeams)
		}
		overall := rankOverall(poolTables, tiebreakers, used)
		if rules.TotalTeams < len(overall) {
			overall = overall[:rules.TotalTeams]
		}
		return overall, nil

	case models.AdvancePercentage:
		pct := rules.Percentage
		if pct <= 0 || pct > 1 {
			pct = 0.5
		}
		count := int(float64(totalTeams) * pct)
		if count < 1 {
			count = 1
		}
		overall := rankOverall(poolTables, tiebreakers, used)
		if count < len(overall) {
			overall = overall[:count]
		}
		return overall, nil

	default:
		return nil, fmt.Errorf("unknown advancement policy %q", rules.Policy)
	}
}

// rankOverall merges all pool tables into one global ranking using the same
// tiebreak chain.
func rankOverall(poolTables [][]models.TeamStanding, tiebreakers []models.TiebreakerMethod, used *tiebreakRecorder) []models.TeamStanding {
	var all []models.TeamStanding
	for _, table := range poolTables {
		all = append(all, table...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Points != all[j].Points {
			return all[i].Points > all[j].Points
		}
		return compareWithChain(all[i], all[j], all, tiebreakers, used) < 0
	})
	return all
}

// selectWildcards fills the extra slots with the best non-advancing teams
// by the configured criterion.
func selectWildcards(poolTables [][]models.TeamStanding, advancing map[string]bool, rules models.AdvancementRules) []models.TeamStanding {
	var remaining []models.TeamStanding
	for _, table := range poolTables {
		for _, s := range table {
			if !advancing[s.Team] {
				remaining = append(remaining, s)
			}
		}
	}

	sort.SliceStable(remaining, func(i, j int) bool {
		a, b := remaining[i], remaining[j]
		switch rules.WildcardCriterion {
		case models.WildcardBestPointDiff:
			if a.PointDiff != b.PointDiff {
				return a.PointDiff > b.PointDiff
			}
		case models.WildcardBestStrength:
			if a.StrengthOfSched != b.StrengthOfSched {
				return a.StrengthOfSched > b.StrengthOfSched
			}
		default: // best record
			if a.WinPercentage != b.WinPercentage {
				return a.WinPercentage > b.WinPercentage
			}
			if a.Points != b.Points {
				return a.Points > b.Points
			}
		}
		return a.Team < b.Team
	})

	if rules.WildcardSlots < len(remaining) {
		remaining = remaining[:rules.WildcardSlots]
	}
	return remaining
}
