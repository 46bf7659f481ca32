package standings

import (
	"hash/fnv"
	"strings"

	"github.com/champions4change/tournament-engine/models"
)

// DefaultTiebreakers is the chain applied when a stage configures none.
var DefaultTiebreakers = []models.TiebreakerMethod{
	models.TiebreakHeadToHead,
	models.TiebreakPointDiff,
	models.TiebreakPointsScored,
}

type tiebreakRecorder struct {
	seen map[models.TiebreakerMethod]bool
	list []models.TiebreakerMethod
}

func newTiebreakRecorder() *tiebreakRecorder {
	return &tiebreakRecorder{seen: make(map[models.TiebreakerMethod]bool)}
}

func (r *tiebreakRecorder) record(m models.TiebreakerMethod) {
	if r == nil || r.seen[m] {
		return
	}
	r.seen[m] = true
	r.list = append(r.list, m)
}

func (r *tiebreakRecorder) methods() []models.TiebreakerMethod {
	if r == nil {
		return nil
	}
	return r.list
}

// compareWithChain tries each configured method in priority order; the
// first non-zero comparison wins. Alphabetical order is always the final
// fallback so the result is deterministic even for true ties. Negative
// means a ranks ahead of b.
func compareWithChain(a, b models.TeamStanding, all []models.TeamStanding, chain []models.TiebreakerMethod, used *tiebreakRecorder) int {
	if len(chain) == 0 {
		chain = DefaultTiebreakers
	}
	for _, method := range chain {
		if c := compareByMethod(a, b, all, method); c != 0 {
			used.record(method)
			return c
		}
	}
	if c := strings.Compare(a.Team, b.Team); c != 0 {
		used.record(models.TiebreakAlphabetical)
		return c
	}
	return 0
}

func compareByMethod(a, b models.TeamStanding, all []models.TeamStanding, method models.TiebreakerMethod) int {
	switch method {
	case models.TiebreakHeadToHead:
		ha := a.HeadToHead[b.Team]
		hb := b.HeadToHead[a.Team]
		if c := descInt(ha.Wins-ha.Losses, hb.Wins-hb.Losses); c != 0 {
			return c
		}
		return descInt(ha.Points, hb.Points)
	case models.TiebreakPointDiff:
		return descInt(a.PointDiff, b.PointDiff)
	case models.TiebreakPointsScored:
		return descInt(a.PointsFor, b.PointsFor)
	case models.TiebreakPointsAllowed:
		// Fewer points allowed is better.
		return ascInt(a.PointsAgainst, b.PointsAgainst)
	case models.TiebreakCommonOpponents:
		return descInt(winsVsCommonOpponents(a, b), winsVsCommonOpponents(b, a))
	case models.TiebreakStrengthOfSched:
		return descFloat(a.StrengthOfSched, b.StrengthOfSched)
	case models.TiebreakCoinFlip:
		return coinFlip(a.Team, b.Team)
	case models.TiebreakAlphabetical:
		return strings.Compare(a.Team, b.Team)
	default:
		return 0
	}
}

// winsVsCommonOpponents counts a's wins against opponents both teams have
// faced.
func winsVsCommonOpponents(a, b models.TeamStanding) int {
	wins := 0
	for opp, rec := range a.HeadToHead {
		if opp == b.Team {
			continue
		}
		if _, shared := b.HeadToHead[opp]; shared {
			wins += rec.Wins
		}
	}
	return wins
}

// coinFlip resolves a true tie with a stable pseudo-random pick: the same
// pair always flips the same way, which keeps repeated standings runs
// consistent within an event.
func coinFlip(a, b string) int {
	lo, hi := a, b
	invert := false
	if lo > hi {
		lo, hi = hi, lo
		invert = true
	}
	h := fnv.New32a()
	h.Write([]byte(lo))
	h.Write([]byte{0})
	h.Write([]byte(hi))
	c := 1
	if h.Sum32()%2 == 0 {
		c = -1
	}
	if invert {
		return -c
	}
	return c
}

func descInt(a, b int) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func ascInt(a, b int) int {
	return -descInt(a, b)
}

func descFloat(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
