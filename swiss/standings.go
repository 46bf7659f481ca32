package swiss

import (
	"github.com/champions4change/tournament-engine/models"
)

// CalculateStandings rebuilds every team's Swiss record from the round log.
// Tournament points are 1 per win, 0.5 per draw, 0 per loss; byes count as
// wins. Buchholz and strength of schedule are self-referential (they sum
// over opponents' results) and are therefore computed in a second pass
// after all raw points are tallied.
func CalculateStandings(rounds []models.SwissRound, teams []string) []models.SwissTeamRecord {
	byName := make(map[string]*models.SwissTeamRecord, len(teams))
	order := make([]string, 0, len(teams))
	for i, team := range teams {
		if _, ok := byName[team]; ok {
			continue
		}
		byName[team] = &models.SwissTeamRecord{Team: team, Seed: i + 1}
		order = append(order, team)
	}

	for _, round := range rounds {
		for _, pairing := range round.Pairings {
			r1 := byName[pairing.Team1]
			if r1 == nil {
				continue
			}
			if pairing.IsBye {
				r1.Wins++
				r1.Points++
				continue
			}
			r2 := byName[pairing.Team2]
			if r2 == nil {
				continue
			}

			if pairing.Score1 != nil {
				r1.GamePoints += *pairing.Score1
			}
			if pairing.Score2 != nil {
				r2.GamePoints += *pairing.Score2
			}

			switch pairing.Result {
			case models.SwissResultTeam1Win:
				r1.Wins++
				r1.Points++
				r2.Losses++
			case models.SwissResultTeam2Win:
				r2.Wins++
				r2.Points++
				r1.Losses++
			case models.SwissResultDraw:
				r1.Draws++
				r2.Draws++
				r1.Points += 0.5
				r2.Points += 0.5
			default:
				// Pending pairings contribute opponents but no points, so
				// mid-round standings stay consistent.
			}
			r1.Opponents = append(r1.Opponents, r2.Team)
			r2.Opponents = append(r2.Opponents, r1.Team)
		}
	}

	// Second pass: opponent-strength tiebreakers.
	for _, rec := range byName {
		games := rec.Wins + rec.Draws + rec.Losses
		var oppPoints, oppWinPct float64
		for _, opp := range rec.Opponents {
			if o := byName[opp]; o != nil {
				oppPoints += o.Points
				if g := o.Wins + o.Draws + o.Losses; g > 0 {
					oppWinPct += float64(o.Wins) / float64(g)
				}
			}
		}
		rec.Buchholz = oppPoints
		if len(rec.Opponents) > 0 {
			rec.StrengthOfSched = oppWinPct / float64(len(rec.Opponents))
		}
		if games > 0 {
			// Performance rating: own score percentage shifted by the mean
			// strength of the opposition faced.
			rec.PerformanceRating = rec.Points/float64(games) + rec.StrengthOfSched - 0.5
		}
	}

	out := make([]models.SwissTeamRecord, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sortRecords(out)
	return out
}
