package services

import (
	"fmt"
	"math"
	"time"

	"github.com/champions4change/tournament-engine/brackets"
	"github.com/champions4change/tournament-engine/models"
	"github.com/google/uuid"
)

// progressionDelta is the pure result of advancing one completed match
// through the bracket: mutated copies of existing matches, matches created
// on demand, the notification payloads that describe what moved, and the
// completion flags the orchestrator acts on. Persistence happens only after
// the whole delta is computed.
type progressionDelta struct {
	updates   []models.Match
	creates   []models.Match
	moves     []models.ProgressionPayload
	conflicts []string

	roundComplete    bool
	roundAdvancing   []string
	roundEliminated  []string
	stageComplete    bool
	champion         *string
	cancelledResetID string
}

// progressionState is the working snapshot the advancement rules mutate.
type progressionState struct {
	tournamentID int
	stage        int
	work         []models.Match
	changed      map[int]bool
	creates      []models.Match
	delta        *progressionDelta
}

// computeProgression advances the winner (and, for double elimination,
// routes the loser) of the completed match. The snapshot must already
// contain the completed match with its final status and winner. The
// function is pure: it never touches storage.
func computeProgression(stageCfg models.StageConfig, snapshot []models.Match, completed models.Match) (*progressionDelta, error) {
	delta := &progressionDelta{}
	st := &progressionState{
		tournamentID: completed.TournamentID,
		stage:        completed.Stage,
		work:         append([]models.Match(nil), snapshot...),
		changed:      make(map[int]bool),
		delta:        delta,
	}

	switch normalizeEngine(stageCfg.Engine) {
	case models.EngineSingleElimination:
		st.advanceSingleElimination(completed)
	case models.EngineDoubleElimination:
		if err := st.advanceDoubleElimination(completed); err != nil {
			return nil, err
		}
	default:
		// Round robin, swiss and leaderboard stages have no intra-bracket
		// advancement; rounds resolve by completion counting alone.
	}

	st.finishRoundAccounting(completed)

	for idx := range st.work {
		if st.changed[idx] {
			delta.updates = append(delta.updates, st.work[idx])
		}
	}
	delta.creates = st.creates
	delta.stageComplete = st.stageDone()

	return delta, nil
}

// normalizeEngine applies the documented unknown-engine fallback.
func normalizeEngine(engine models.EngineType) models.EngineType {
	switch engine {
	case models.EngineSingleElimination, models.EngineDoubleElimination,
		models.EngineRoundRobin, models.EngineSwiss, models.EngineLeaderboard:
		return engine
	default:
		return models.EngineSingleElimination
	}
}

func (st *progressionState) advanceSingleElimination(completed models.Match) {
	if completed.Winner == nil {
		return
	}
	maxRound := st.maxRound(completed.Bracket)
	if completed.Round >= maxRound {
		st.delta.champion = completed.Winner
		return
	}
	st.advanceWinnerByHalving(completed, completed.Bracket)
}

// advanceWinnerByHalving applies the universal elimination rule: the winner
// of (round, position) lands in (round+1, ceil(position/2)), team1 when the
// position is odd, team2 when even. The odd/even convention is load-bearing
// for every advancement computation and must not drift.
func (st *progressionState) advanceWinnerByHalving(completed models.Match, bracket string) {
	nextRound := completed.Round + 1
	nextPos := (completed.Position + 1) / 2
	slot := 1
	if completed.Position%2 == 0 {
		slot = 2
	}
	st.placeTeam(*completed.Winner, completed, nextRound, nextPos, bracket, slot, false)
}

func (st *progressionState) advanceDoubleElimination(completed models.Match) error {
	if completed.Winner == nil {
		return nil
	}
	winnersRounds := st.winnersRounds()
	grandFinal := winnersRounds + 1
	resetRound := winnersRounds + 2

	switch completed.Bracket {
	case models.BracketWinners:
		switch {
		case completed.Round < winnersRounds:
			st.advanceWinnerByHalving(completed, models.BracketWinners)
			st.routeLoser(completed)
		case completed.Round == winnersRounds:
			// Winners final: the winner waits in the grand final while the
			// loser gets one more life in the losers final.
			st.placeTeam(*completed.Winner, completed, grandFinal, 1, models.BracketWinners, 1, false)
			st.routeLoser(completed)
		case completed.Round == grandFinal:
			st.resolveGrandFinal(completed, resetRound)
		case completed.Round == resetRound:
			st.delta.champion = completed.Winner
		default:
			return fmt.Errorf("winners bracket round %d out of range (final structure ends at round %d)",
				completed.Round, resetRound)
		}
	case models.BracketLosers:
		losersFinal := 2 * (winnersRounds - 1)
		switch {
		case completed.Round == losersFinal:
			st.placeTeam(*completed.Winner, completed, grandFinal, 1, models.BracketWinners, 2, false)
		case completed.Round%2 == 1:
			// Odd losers rounds feed the same position of the next round,
			// where the winners-bracket drop occupies the second slot.
			st.placeTeam(*completed.Winner, completed, completed.Round+1, completed.Position, models.BracketLosers, 1, false)
		default:
			st.advanceWinnerByHalving(completed, models.BracketLosers)
		}
	default:
		return fmt.Errorf("unexpected bracket tag %q in double elimination", completed.Bracket)
	}
	return nil
}

// resolveGrandFinal either crowns the winners-bracket finalist or arms the
// pre-created reset match after the losers-bracket finalist evens the
// score.
func (st *progressionState) resolveGrandFinal(completed models.Match, resetRound int) {
	winnersFinalistWon := completed.Team1 != nil && completed.Winner != nil && *completed.Team1 == *completed.Winner

	idx := st.findMatch(resetRound, 1, models.BracketWinners)
	if winnersFinalistWon {
		st.delta.champion = completed.Winner
		if idx >= 0 && !st.work[idx].Terminal() {
			st.work[idx].Status = models.MatchStatusCancelled
			st.work[idx].UpdatedAt = time.Now()
			st.changed[idx] = true
			st.delta.cancelledResetID = st.work[idx].ID
		}
		return
	}

	if idx >= 0 {
		st.work[idx].Team1 = completed.Team1
		st.work[idx].Team2 = completed.Team2
		st.work[idx].UpdatedAt = time.Now()
		st.changed[idx] = true
	} else {
		m := st.newSlotMatch(resetRound, 1, models.BracketWinners)
		m.Team1 = completed.Team1
		m.Team2 = completed.Team2
		st.creates = append(st.creates, m)
	}
}

// routeLoser drops the loser of a winners-bracket match into the losers
// bracket. A routing failure is recovered by scanning for the first open
// slot in any upcoming losers match rather than losing the team; in
// pathological completion orderings this best-effort placement can land a
// team in a slot reserved for a different path, which is accepted looseness
// rather than a crash.
func (st *progressionState) routeLoser(completed models.Match) {
	loser := completed.Loser()
	if loser == nil {
		return
	}
	slot, err := brackets.RouteLoser(completed.Round, completed.Position-1)
	if err == nil {
		if st.placeTeam(*loser, completed, slot.LosersRound, slot.LosersMatch, models.BracketLosers, slot.Slot, true) {
			return
		}
	}
	st.placeLoserFallback(*loser, completed)
}

// placeLoserFallback scans the losers bracket in (round, position) order
// for the first open slot of an upcoming match.
func (st *progressionState) placeLoserFallback(team string, source models.Match) {
	bestIdx, bestSlot := -1, 0
	for idx := range st.work {
		m := &st.work[idx]
		if m.Stage != st.stage || m.Bracket != models.BracketLosers || m.Status != models.MatchStatusUpcoming {
			continue
		}
		var open int
		switch {
		case m.Team1 == nil:
			open = 1
		case m.Team2 == nil:
			open = 2
		default:
			continue
		}
		if bestIdx == -1 || m.Round < st.work[bestIdx].Round ||
			(m.Round == st.work[bestIdx].Round && m.Position < st.work[bestIdx].Position) {
			bestIdx, bestSlot = idx, open
		}
	}
	if bestIdx == -1 {
		st.delta.conflicts = append(st.delta.conflicts,
			fmt.Sprintf("no open losers-bracket slot found for %s dropping from round %d position %d",
				team, source.Round, source.Position))
		return
	}
	target := &st.work[bestIdx]
	st.setSlot(target, bestSlot, team)
	st.changed[bestIdx] = true
	st.delta.moves = append(st.delta.moves, models.ProgressionPayload{
		MatchID:     target.ID,
		Team:        team,
		FromRound:   source.Round,
		FromBracket: source.Bracket,
		ToRound:     target.Round,
		ToPosition:  target.Position,
		ToBracket:   target.Bracket,
		Slot:        bestSlot,
		AsLoser:     true,
	})
}

// placeTeam locates or creates the target match and fills the given slot.
// Re-processing the same completed match is a no-op: an occupied slot
// holding the same team is left alone, and an occupied slot holding a
// different team is reported as a conflict, never overwritten. Returns
// false only when the requested target cannot exist (create refused), which
// signals the caller to fall back.
func (st *progressionState) placeTeam(team string, source models.Match, round, position int, bracket string, slot int, loser bool) bool {
	if round < 1 || position < 1 {
		return false
	}

	idx := st.findMatch(round, position, bracket)
	var target *models.Match
	created := false
	if idx >= 0 {
		target = &st.work[idx]
	} else {
		for i := range st.creates {
			c := &st.creates[i]
			if c.Round == round && c.Position == position && c.Bracket == bracket {
				target = c
				created = true
				break
			}
		}
	}
	if target == nil {
		m := st.newSlotMatch(round, position, bracket)
		st.creates = append(st.creates, m)
		target = &st.creates[len(st.creates)-1]
		created = true
	}

	current := target.Team1
	if slot == 2 {
		current = target.Team2
	}
	if current != nil {
		if *current == team {
			return true // already advanced, idempotent re-processing
		}
		st.delta.conflicts = append(st.delta.conflicts,
			fmt.Sprintf("slot %d of round %d position %d (%s) already holds %s, refusing to overwrite with %s",
				slot, round, position, bracket, *current, team))
		return true
	}

	st.setSlot(target, slot, team)
	if idx >= 0 && !created {
		st.changed[idx] = true
	}
	st.delta.moves = append(st.delta.moves, models.ProgressionPayload{
		MatchID:     target.ID,
		Team:        team,
		FromRound:   source.Round,
		FromBracket: source.Bracket,
		ToRound:     round,
		ToPosition:  position,
		ToBracket:   bracket,
		Slot:        slot,
		AsLoser:     loser,
	})
	return true
}

func (st *progressionState) setSlot(m *models.Match, slot int, team string) {
	name := team
	if slot == 1 {
		m.Team1 = &name
	} else {
		m.Team2 = &name
	}
	m.UpdatedAt = time.Now()
}

// finishRoundAccounting checks whether the completed match closed out its
// round and records who moved on and who is out, so no participant leaves a
// round unaccounted for.
func (st *progressionState) finishRoundAccounting(completed models.Match) {
	for _, m := range st.work {
		if m.Stage != st.stage || m.Bracket != completed.Bracket || m.Round != completed.Round {
			continue
		}
		if !m.Terminal() {
			return
		}
	}
	st.delta.roundComplete = true
	for _, m := range st.work {
		if m.Stage != st.stage || m.Bracket != completed.Bracket || m.Round != completed.Round {
			continue
		}
		if m.Status != models.MatchStatusCompleted {
			continue
		}
		if m.Winner != nil {
			st.delta.roundAdvancing = append(st.delta.roundAdvancing, *m.Winner)
			if loser := m.Loser(); loser != nil {
				st.delta.roundEliminated = append(st.delta.roundEliminated, *loser)
			}
		}
	}
}

// stageDone reports whether nothing in the stage remains playable once the
// delta is applied: created matches are upcoming by definition, so any
// creation keeps the stage open.
func (st *progressionState) stageDone() bool {
	if len(st.creates) > 0 {
		return false
	}
	for _, m := range st.work {
		if m.Stage != st.stage {
			continue
		}
		if !m.Terminal() {
			return false
		}
	}
	return true
}

func (st *progressionState) findMatch(round, position int, bracket string) int {
	for idx := range st.work {
		m := &st.work[idx]
		if m.Stage == st.stage && m.Round == round && m.Position == position && m.Bracket == bracket {
			return idx
		}
	}
	return -1
}

func (st *progressionState) maxRound(bracket string) int {
	max := 0
	for _, m := range st.work {
		if m.Stage == st.stage && m.Bracket == bracket && m.Round > max {
			max = m.Round
		}
	}
	return max
}

// winnersRounds derives W from the snapshot: the winners bracket spans
// rounds 1..W plus the two grand-final rounds, and round 1 holds
// bracketSize/2 matches.
func (st *progressionState) winnersRounds() int {
	firstRoundMatches := 0
	for _, m := range st.work {
		if m.Stage == st.stage && m.Bracket == models.BracketWinners && m.Round == 1 {
			firstRoundMatches++
		}
	}
	if firstRoundMatches == 0 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(firstRoundMatches*2))))
}

func (st *progressionState) newSlotMatch(round, position int, bracket string) models.Match {
	now := time.Now()
	return models.Match{
		ID:           uuid.NewString(),
		TournamentID: st.tournamentID,
		Stage:        st.stage,
		Round:        round,
		Position:     position,
		Bracket:      bracket,
		Status:       models.MatchStatusUpcoming,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
