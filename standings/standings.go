// Package standings is the stage transition engine: pool standings with
// configurable tiebreaker chains, advancement selection, and next-stage
// seeding. Everything here is a pure function over completed-match
// snapshots; persistence happens at the orchestration boundary.
package standings

import (
	"sort"

	"github.com/champions4change/tournament-engine/models"
)

// Scoring holds the tournament points awarded per result.
type Scoring struct {
	Win  int
	Draw int
	Loss int
}

// DefaultScoring is the 3/1/0 football-style default.
func DefaultScoring() Scoring {
	return Scoring{Win: 3, Draw: 1, Loss: 0}
}

// ScoringFromSettings reads the configured points, falling back to the
// default when the stage carries none.
func ScoringFromSettings(settings *models.RoundRobinSettings) Scoring {
	if settings == nil || (settings.PointsPerWin == 0 && settings.PointsPerDraw == 0 && settings.PointsPerLoss == 0) {
		return DefaultScoring()
	}
	return Scoring{Win: settings.PointsPerWin, Draw: settings.PointsPerDraw, Loss: settings.PointsPerLoss}
}

// CalculatePoolStandings rebuilds the standings of one pool from its
// completed matches, then orders them by tournament points with the
// tiebreak chain deciding equal-point groups. The returned slice carries
// 1-based pool placements. Matches still upcoming or cancelled contribute
// nothing.
func CalculatePoolStandings(pool models.Pool, scoring Scoring, tiebreakers []models.TiebreakerMethod) []models.TeamStanding {
	table := Tally(pool.Teams, pool.Matches, scoring)
	for i := range table {
		table[i].PoolID = pool.PoolID
	}
	ordered, _ := SortStandings(table, tiebreakers)
	for i := range ordered {
		ordered[i].PoolPlacement = i + 1
	}
	return ordered
}

// Tally accumulates the raw per-team numbers from completed matches:
// win/loss/draw counts, game points for and against, tournament points, and
// the head-to-head sub-map keyed by opponent. Strength of schedule is
// filled in a second pass once every team's win percentage is known.
func Tally(teams []string, matches []models.Match, scoring Scoring) []models.TeamStanding {
	byName := make(map[string]*models.TeamStanding, len(teams))
	order := make([]string, 0, len(teams))
	for _, team := range teams {
		if _, ok := byName[team]; ok {
			continue
		}
		byName[team] = &models.TeamStanding{Team: team, HeadToHead: make(map[string]models.HeadToHead)}
		order = append(order, team)
	}

	opponents := make(map[string][]string)

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.Team1 == nil || m.Team2 == nil {
			continue
		}
		s1, s2 := byName[*m.Team1], byName[*m.Team2]
		if s1 == nil || s2 == nil {
			continue
		}

		var score1, score2 int
		if m.Score1 != nil {
			score1 = *m.Score1
		}
		if m.Score2 != nil {
			score2 = *m.Score2
		}

		s1.GamesPlayed++
		s2.GamesPlayed++
		s1.PointsFor += score1
		s1.PointsAgainst += score2
		s2.PointsFor += score2
		s2.PointsAgainst += score1
		opponents[s1.Team] = append(opponents[s1.Team], s2.Team)
		opponents[s2.Team] = append(opponents[s2.Team], s1.Team)

		h1 := s1.HeadToHead[s2.Team]
		h2 := s2.HeadToHead[s1.Team]
		h1.Points += score1
		h2.Points += score2

		switch {
		case m.IsDraw:
			s1.Draws++
			s2.Draws++
			s1.Points += scoring.Draw
			s2.Points += scoring.Draw
		case m.Winner != nil && *m.Winner == s1.Team:
			s1.Wins++
			s2.Losses++
			s1.Points += scoring.Win
			s2.Points += scoring.Loss
			h1.Wins++
			h2.Losses++
		case m.Winner != nil && *m.Winner == s2.Team:
			s2.Wins++
			s1.Losses++
			s2.Points += scoring.Win
			s1.Points += scoring.Loss
			h2.Wins++
			h1.Losses++
		}

		s1.HeadToHead[s2.Team] = h1
		s2.HeadToHead[s1.Team] = h2
	}

	for _, s := range byName {
		s.PointDiff = s.PointsFor - s.PointsAgainst
		if s.GamesPlayed > 0 {
			s.WinPercentage = float64(s.Wins) / float64(s.GamesPlayed)
		}
	}

	// Strength of schedule: mean win percentage of opponents faced, so it
	// is only meaningful after the first pass above.
	for name, s := range byName {
		opps := opponents[name]
		if len(opps) == 0 {
			continue
		}
		var sum float64
		for _, opp := range opps {
			sum += byName[opp].WinPercentage
		}
		s.StrengthOfSched = sum / float64(len(opps))
	}

	out := make([]models.TeamStanding, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

// SortStandings orders by tournament points descending, applying the
// tiebreak chain to equal-point neighbors. It reports which tiebreak
// methods actually decided an ordering.
func SortStandings(table []models.TeamStanding, tiebreakers []models.TiebreakerMethod) ([]models.TeamStanding, []models.TiebreakerMethod) {
	ordered := make([]models.TeamStanding, len(table))
	copy(ordered, table)

	used := newTiebreakRecorder()
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Points != ordered[j].Points {
			return ordered[i].Points > ordered[j].Points
		}
		return compareWithChain(ordered[i], ordered[j], ordered, tiebreakers, used) < 0
	})
	return ordered, used.methods()
}
