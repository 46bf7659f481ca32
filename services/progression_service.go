package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/champions4change/tournament-engine/live"
	"github.com/champions4change/tournament-engine/models"
	"github.com/champions4change/tournament-engine/repositories"
	"github.com/champions4change/tournament-engine/standings"
	"github.com/champions4change/tournament-engine/swiss"
	"github.com/google/uuid"
)

// Archiver stores a completed tournament's bracket snapshot and returns the
// storage key. The R2 uploader implements it; a nil archiver skips archiving.
type Archiver interface {
	ArchiveBracket(ctx context.Context, tournament *models.Tournament) (key string, err error)
}

// SubmitResultInput is the full result report for one match.
type SubmitResultInput struct {
	MatchID  string         `json:"match_id"`
	Score1   *int           `json:"score1,omitempty"`
	Score2   *int           `json:"score2,omitempty"`
	Winner   *string        `json:"winner,omitempty"`
	IsDraw   bool           `json:"is_draw,omitempty"`
	Forfeit  *string        `json:"forfeit,omitempty"`
	Rankings map[string]int `json:"rankings,omitempty"`
}

type ProgressionService interface {
	StartMatch(ctx context.Context, matchID string) (*models.Match, error)
	UpdateLiveScore(ctx context.Context, matchID string, score1, score2 int) error
	SubmitResult(ctx context.Context, input SubmitResultInput) (*models.Match, error)
}

type progressionService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	poolRepo       repositories.PoolRepository
	swissRepo      repositories.SwissRoundRepository
	cache          *live.ScoreCache
	hub            Broadcaster
	archiver       Archiver
	logger         *slog.Logger

	locks *tournamentLocks

	queueMu sync.Mutex
	queues  map[int]*scoreQueue
}

func NewProgressionService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	swissRepo repositories.SwissRoundRepository,
	cache *live.ScoreCache,
	hub Broadcaster,
	archiver Archiver,
	logger *slog.Logger,
) ProgressionService {
	return &progressionService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		poolRepo:       poolRepo,
		swissRepo:      swissRepo,
		cache:          cache,
		hub:            hub,
		archiver:       archiver,
		logger:         logger,
		locks:          newTournamentLocks(),
		queues:         make(map[int]*scoreQueue),
	}
}

// StartMatch moves an upcoming match with both slots filled into play.
func (s *progressionService) StartMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Terminal() {
		return nil, ErrMatchAlreadyFinal
	}
	if match.Status != models.MatchStatusUpcoming {
		return nil, fmt.Errorf("%w: match %s is %s", ErrInvalidStatusTransition, matchID, match.Status)
	}
	if len(match.HeatParticipants) == 0 && (match.Team1 == nil || match.Team2 == nil) {
		return nil, fmt.Errorf("%w: match %s still has an open slot", ErrInvalidStatusTransition, matchID)
	}

	lock := s.locks.forTournament(match.TournamentID)
	lock.Lock()
	defer lock.Unlock()

	match.Status = models.MatchStatusInProgress
	match.UpdatedAt = time.Now()
	if err := s.matchRepo.Update(ctx, nil, match); err != nil {
		return nil, err
	}

	s.publish(newEvent(models.EventMatchStarted, match.TournamentID, match))
	return match, nil
}

type scoreUpdate struct {
	matchID string
	score1  int
	score2  int
}

// UpdateLiveScore enqueues a score tick onto the tournament's single-writer
// queue. Ticks that arrive faster than they can be applied are buffered and
// applied in arrival order, never dropped; enqueueing blocks once the buffer
// fills rather than reordering.
func (s *progressionService) UpdateLiveScore(ctx context.Context, matchID string, score1, score2 int) error {
	if score1 < 0 || score2 < 0 {
		return newValidationError(map[string]string{"score": "scores cannot be negative"})
	}
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Status != models.MatchStatusInProgress {
		return fmt.Errorf("%w: live scores only apply to a match in progress", ErrInvalidStatusTransition)
	}

	q := s.queueFor(match.TournamentID)
	select {
	case q.ch <- scoreUpdate{matchID: matchID, score1: score1, score2: score2}:
		return nil
	case <-q.done:
		return fmt.Errorf("%w: tournament %d is no longer accepting live scores",
			ErrTournamentNotActive, match.TournamentID)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scoreQueue is one tournament's single-writer buffer. done releases both
// the drain goroutine and any producer blocked on a full buffer.
type scoreQueue struct {
	ch   chan scoreUpdate
	done chan struct{}
}

func (s *progressionService) queueFor(tournamentID int) *scoreQueue {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	q, ok := s.queues[tournamentID]
	if !ok {
		q = &scoreQueue{
			ch:   make(chan scoreUpdate, 64),
			done: make(chan struct{}),
		}
		s.queues[tournamentID] = q
		go s.drainScores(tournamentID, q)
	}
	return q
}

// releaseQueue retires a tournament's score queue once no further ticks can
// arrive. Anything still buffered is dropped as stale.
func (s *progressionService) releaseQueue(tournamentID int) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if q, ok := s.queues[tournamentID]; ok {
		close(q.done)
		delete(s.queues, tournamentID)
	}
}

func (s *progressionService) drainScores(tournamentID int, q *scoreQueue) {
	for {
		select {
		case upd := <-q.ch:
			if err := s.applyLiveScore(context.Background(), tournamentID, upd); err != nil {
				s.logger.Error("live score apply failed",
					slog.Int("tournament_id", tournamentID),
					slog.String("match_id", upd.matchID),
					slog.Any("error", err))
			}
		case <-q.done:
			return
		}
	}
}

func (s *progressionService) applyLiveScore(ctx context.Context, tournamentID int, upd scoreUpdate) error {
	lock := s.locks.forTournament(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	match, err := s.loadMatch(ctx, upd.matchID)
	if err != nil {
		return err
	}
	if match.Status != models.MatchStatusInProgress {
		return nil // finalized while queued, the tick is stale
	}
	match.Score1 = intPtr(upd.score1)
	match.Score2 = intPtr(upd.score2)
	match.UpdatedAt = time.Now()
	if err := s.matchRepo.Update(ctx, nil, match); err != nil {
		return err
	}

	s.cache.Put(tournamentID, live.ScoreSnapshot{
		MatchID:   match.ID,
		Score1:    upd.score1,
		Score2:    upd.score2,
		UpdatedAt: match.UpdatedAt,
	})
	s.publish(newEvent(models.EventScoreUpdate, tournamentID, match))
	return nil
}

// SubmitResult finalizes a match and advances the bracket. The whole
// read-compute-write cycle runs under the tournament's lock: the stage's
// match log is snapshotted, the progression delta is computed purely over
// the snapshot, and the delta plus any stage transition is persisted in one
// transaction before events go out.
func (s *progressionService) SubmitResult(ctx context.Context, input SubmitResultInput) (_ *models.Match, txErr error) {
	match, err := s.loadMatch(ctx, input.MatchID)
	if err != nil {
		return nil, err
	}
	if match.Terminal() {
		return nil, ErrMatchAlreadyFinal
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotActive, tournament.ID, tournament.Status)
	}
	if match.Stage >= len(tournament.Config.Stages) {
		return nil, fmt.Errorf("match %s references stage %d but only %d stages are configured",
			match.ID, match.Stage, len(tournament.Config.Stages))
	}
	stageCfg := tournament.Config.Stages[match.Stage]

	lock := s.locks.forTournament(tournament.ID)
	lock.Lock()
	defer lock.Unlock()

	// The pre-lock read was only a fast fail: a concurrent submission may
	// have finalized this match while we waited for the lock. Reload and
	// re-check before anything is validated or written, the same way
	// applyLiveScore discards stale ticks.
	match, err = s.loadMatch(ctx, input.MatchID)
	if err != nil {
		return nil, err
	}
	if match.Terminal() {
		return nil, ErrMatchAlreadyFinal
	}

	if violations := validateResult(stageCfg, match, input); len(violations) > 0 {
		return nil, newValidationError(violations)
	}

	snapshot, err := s.matchRepo.ListByTournament(ctx, tournament.ID, repositories.ListMatchesFilter{Stage: intPtr(match.Stage)})
	if err != nil {
		return nil, err
	}

	applyResult(match, input)
	for i := range snapshot {
		if snapshot[i].ID == match.ID {
			snapshot[i] = *match
			break
		}
	}

	delta, err := computeProgression(stageCfg, snapshot, *match)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	if txErr = s.matchRepo.Update(ctx, tx, match); txErr != nil {
		return nil, txErr
	}
	for i := range delta.updates {
		if delta.updates[i].ID == match.ID {
			continue
		}
		if txErr = s.matchRepo.Update(ctx, tx, &delta.updates[i]); txErr != nil {
			return nil, txErr
		}
	}
	if txErr = s.matchRepo.CreateBatch(ctx, tx, delta.creates); txErr != nil {
		return nil, txErr
	}

	stageComplete := delta.stageComplete
	if normalizeEngine(stageCfg.Engine) == models.EngineSwiss {
		var nextRoundScheduled bool
		nextRoundScheduled, txErr = s.recordSwissResult(ctx, tx, tournament, stageCfg, match)
		if txErr != nil {
			return nil, txErr
		}
		if nextRoundScheduled {
			stageComplete = false
		}
	}

	var done *completionOutcome
	if stageComplete {
		done, txErr = s.completeStage(ctx, tx, tournament, stageCfg, snapshot, delta)
		if txErr != nil {
			return nil, txErr
		}
	}

	s.publishProgression(tournament.ID, match, delta, done)
	if done != nil && done.tournamentDone {
		s.cache.Evict(tournament.ID)
		s.releaseQueue(tournament.ID)
		s.archive(tournament)
	}
	return match, txErr
}

// applyResult writes an already-validated result onto the match.
func applyResult(match *models.Match, input SubmitResultInput) {
	match.Score1 = input.Score1
	match.Score2 = input.Score2
	match.IsDraw = input.IsDraw
	match.Forfeit = input.Forfeit
	match.Rankings = input.Rankings
	match.Winner = input.Winner
	if input.Forfeit != nil && input.Winner == nil {
		// A forfeit decides the match for the other side.
		if match.Team1 != nil && *match.Team1 == *input.Forfeit {
			match.Winner = match.Team2
		} else if match.Team2 != nil && *match.Team2 == *input.Forfeit {
			match.Winner = match.Team1
		}
	}
	match.Status = models.MatchStatusCompleted
	match.UpdatedAt = time.Now()
}

// validateResult collects every violation in the report, not just the
// first, so the submitter can fix the whole payload in one round trip.
func validateResult(stageCfg models.StageConfig, match *models.Match, input SubmitResultInput) map[string]string {
	violations := make(map[string]string)
	engine := normalizeEngine(stageCfg.Engine)

	if input.Score1 != nil && *input.Score1 < 0 {
		violations["score1"] = "score cannot be negative"
	}
	if input.Score2 != nil && *input.Score2 < 0 {
		violations["score2"] = "score cannot be negative"
	}

	if engine == models.EngineLeaderboard {
		if len(input.Rankings) == 0 {
			violations["rankings"] = "leaderboard heats resolve by rankings, none given"
		} else {
			for _, p := range match.HeatParticipants {
				if _, ok := input.Rankings[p]; !ok {
					violations["rankings"] = fmt.Sprintf("no ranking for heat participant %s", p)
					break
				}
			}
		}
		return violations
	}

	elimination := engine == models.EngineSingleElimination || engine == models.EngineDoubleElimination
	if input.IsDraw {
		if elimination {
			violations["is_draw"] = "elimination matches cannot end in a draw"
		}
		if input.Winner != nil {
			violations["winner"] = "a drawn match cannot name a winner"
		}
	} else if input.Winner == nil && input.Forfeit == nil {
		violations["winner"] = "a decided match must name a winner"
	}

	isParticipant := func(team string) bool {
		return (match.Team1 != nil && *match.Team1 == team) ||
			(match.Team2 != nil && *match.Team2 == team)
	}
	if input.Winner != nil && !isParticipant(*input.Winner) {
		violations["winner"] = fmt.Sprintf("%s is not a participant of this match", *input.Winner)
	}
	if input.Forfeit != nil && !isParticipant(*input.Forfeit) {
		violations["forfeit"] = fmt.Sprintf("%s is not a participant of this match", *input.Forfeit)
	}

	if input.Winner != nil && input.Forfeit == nil && input.Score1 != nil && input.Score2 != nil && *input.Score1 != *input.Score2 {
		higher := match.Team1
		if *input.Score2 > *input.Score1 {
			higher = match.Team2
		}
		if higher != nil && *higher != *input.Winner {
			violations["winner"] = fmt.Sprintf("winner %s contradicts the score %d-%d", *input.Winner, *input.Score1, *input.Score2)
		}
	}
	return violations
}

// recordSwissResult mirrors the finished match into the swiss round log
// and, when the round closes with rounds still to play, schedules the next
// round in the same transaction. Returns whether a new round was created.
func (s *progressionService) recordSwissResult(
	ctx context.Context,
	tx repositories.SQLExecutor,
	tournament *models.Tournament,
	stageCfg models.StageConfig,
	match *models.Match,
) (bool, error) {
	rounds, err := s.swissRepo.ListByTournamentStage(ctx, tournament.ID, match.Stage)
	if err != nil {
		return false, err
	}
	var current *models.SwissRound
	for i := range rounds {
		if rounds[i].RoundNumber == match.Round {
			current = &rounds[i]
			break
		}
	}
	if current == nil {
		return false, fmt.Errorf("%w: no round %d logged for tournament %d stage %d",
			ErrSwissRoundNotFound, match.Round, tournament.ID, match.Stage)
	}

	for i := range current.Pairings {
		p := &current.Pairings[i]
		if !pairingMatches(p, match) {
			continue
		}
		p.Score1 = match.Score1
		p.Score2 = match.Score2
		p.Result = swissResultOf(match)
		break
	}
	current.IsComplete = true
	for _, p := range current.Pairings {
		if p.Result == models.SwissResultPending {
			current.IsComplete = false
			break
		}
	}
	if err := s.swissRepo.UpdateRound(ctx, tx, current); err != nil {
		return false, err
	}
	if !current.IsComplete {
		return false, nil
	}

	teams := teamsFromRounds(rounds)
	planned := swissPlannedRounds(stageCfg.Swiss, len(teams))
	if current.RoundNumber >= planned {
		return false, nil
	}

	records := swiss.CalculateStandings(rounds, teams)
	opts := swiss.Options{AvoidRematches: true}
	if stageCfg.Swiss != nil {
		opts.AvoidRematches = stageCfg.Swiss.AvoidRematches
		opts.Accelerated = stageCfg.Swiss.Accelerated
	}
	pairings, err := swiss.GeneratePairings(records, current.RoundNumber+1, opts)
	if err != nil {
		return false, err
	}

	nextRound := &models.SwissRound{
		TournamentID: tournament.ID,
		Stage:        match.Stage,
		RoundNumber:  current.RoundNumber + 1,
		Pairings:     pairings,
	}
	if err := s.swissRepo.CreateRound(ctx, tx, nextRound); err != nil {
		return false, err
	}
	matches := matchesFromPairings(tournament.ID, match.Stage, nextRound.RoundNumber, pairings)
	if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
		return false, err
	}

	s.logger.Info("swiss round scheduled",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("round", nextRound.RoundNumber),
		slog.Int("pairings", len(pairings)))
	return true, nil
}

func pairingMatches(p *models.SwissPairing, m *models.Match) bool {
	t1, t2 := models.SlotName(m.Team1), models.SlotName(m.Team2)
	return (p.Team1 == t1 && p.Team2 == t2) || (p.Team1 == t2 && p.Team2 == t1)
}

func swissResultOf(m *models.Match) models.SwissResult {
	switch {
	case m.IsDraw:
		return models.SwissResultDraw
	case m.Winner == nil:
		return models.SwissResultPending
	case m.Team1 != nil && *m.Team1 == *m.Winner:
		return models.SwissResultTeam1Win
	default:
		return models.SwissResultTeam2Win
	}
}

// teamsFromRounds derives the field from the round log itself; byes appear
// as pairings with an empty second side.
func teamsFromRounds(rounds []models.SwissRound) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, r := range rounds {
		for _, p := range r.Pairings {
			for _, t := range []string{p.Team1, p.Team2} {
				if t != "" && !seen[t] {
					seen[t] = true
					teams = append(teams, t)
				}
			}
		}
	}
	sort.Strings(teams)
	return teams
}

func swissPlannedRounds(settings *models.SwissSettings, fieldSize int) int {
	if settings != nil && settings.Rounds > 0 {
		return settings.Rounds
	}
	if fieldSize < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(fieldSize))))
}

func matchesFromPairings(tournamentID, stage, round int, pairings []models.SwissPairing) []models.Match {
	now := time.Now()
	matches := make([]models.Match, 0, len(pairings))
	for _, p := range pairings {
		m := models.Match{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			Stage:        stage,
			Round:        round,
			Position:     p.Table,
			Bracket:      models.BracketMain,
			Team1:        strPtr(p.Team1),
			Status:       models.MatchStatusUpcoming,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if p.IsBye {
			// A bye is recorded as an already-won match, same as round one.
			m.Status = models.MatchStatusCompleted
			m.Winner = strPtr(p.Team1)
		} else {
			m.Team2 = strPtr(p.Team2)
		}
		matches = append(matches, m)
	}
	return matches
}

// completionOutcome is what a finished stage resolved into.
type completionOutcome struct {
	tournamentDone bool
	champion       *string
	advancement    *models.AdvancementResult
	nextStage      int
}

// completeStage either rolls the tournament into its next configured stage,
// seeding it from the finished stage's results, or closes the tournament
// out with a champion.
func (s *progressionService) completeStage(
	ctx context.Context,
	tx repositories.SQLExecutor,
	tournament *models.Tournament,
	stageCfg models.StageConfig,
	snapshot []models.Match,
	delta *progressionDelta,
) (*completionOutcome, error) {
	stage := tournament.CurrentStage
	hasNext := stage+1 < len(tournament.Config.Stages)

	result, err := s.stageAdvancement(ctx, tournament, stageCfg, snapshot, delta)
	if err != nil {
		return nil, err
	}

	if !hasNext {
		champion := delta.champion
		if champion == nil && len(result.Advancing) > 0 {
			champion = strPtr(result.Advancing[0])
		}
		tournament.Status = models.StatusCompleted
		tournament.Champion = champion
		tournament.UpdatedAt = time.Now()
		if err := s.tournamentRepo.Update(ctx, tx, tournament); err != nil {
			return nil, err
		}
		s.logger.Info("tournament completed",
			slog.Int("tournament_id", tournament.ID),
			slog.String("champion", models.SlotName(champion)))
		return &completionOutcome{tournamentDone: true, champion: champion, advancement: result}, nil
	}

	nextCfg := tournament.Config.Stages[stage+1]
	participants := make([]string, 0, len(result.Seeding))
	for _, seat := range result.Seeding {
		participants = append(participants, seat.Team)
	}
	if nextCfg.Size > 0 && len(participants) > nextCfg.Size {
		participants = participants[:nextCfg.Size]
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: stage %d advanced only %d teams", ErrNotEnoughParticipants, stage, len(participants))
	}

	if _, err := GenerateStage(tx, s.matchRepo, s.poolRepo, s.swissRepo, StageGeneration{
		Ctx:          ctx,
		Tournament:   tournament,
		Stage:        stage + 1,
		StageConfig:  nextCfg,
		Participants: participants,
		Logger:       s.logger,
	}); err != nil {
		return nil, err
	}

	tournament.CurrentStage = stage + 1
	tournament.UpdatedAt = time.Now()
	if err := s.tournamentRepo.Update(ctx, tx, tournament); err != nil {
		return nil, err
	}
	s.logger.Info("stage transition",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("from_stage", stage),
		slog.Int("to_stage", stage+1),
		slog.Int("advancing", len(result.Advancing)))
	return &completionOutcome{advancement: result, nextStage: stage + 1}, nil
}

// stageAdvancement ranks the finished stage's field in seeding order.
func (s *progressionService) stageAdvancement(
	ctx context.Context,
	tournament *models.Tournament,
	stageCfg models.StageConfig,
	snapshot []models.Match,
	delta *progressionDelta,
) (*models.AdvancementResult, error) {
	switch normalizeEngine(stageCfg.Engine) {
	case models.EngineRoundRobin:
		return s.poolAdvancement(ctx, tournament, stageCfg, snapshot)
	case models.EngineSwiss:
		return s.swissAdvancement(ctx, tournament, stageCfg)
	case models.EngineLeaderboard:
		return leaderboardAdvancement(stageCfg, snapshot), nil
	default:
		return eliminationPlacements(snapshot, delta), nil
	}
}

func (s *progressionService) poolAdvancement(
	ctx context.Context,
	tournament *models.Tournament,
	stageCfg models.StageConfig,
	snapshot []models.Match,
) (*models.AdvancementResult, error) {
	pools, err := s.poolRepo.ListByTournamentStage(ctx, tournament.ID, tournament.CurrentStage)
	if err != nil {
		return nil, err
	}
	for i := range pools {
		pools[i].Matches = nil
		for _, m := range snapshot {
			if m.Bracket == pools[i].PoolID {
				pools[i].Matches = append(pools[i].Matches, m)
			}
		}
	}

	rules := models.AdvancementRules{Policy: models.AdvanceTopNPerPool, TeamsPerPool: 2}
	tiebreakers := standings.DefaultTiebreakers
	scoring := standings.ScoringFromSettings(stageCfg.RoundRobin)
	if stageCfg.RoundRobin != nil {
		if stageCfg.RoundRobin.Advancement != nil {
			rules = *stageCfg.RoundRobin.Advancement
		}
		if len(stageCfg.RoundRobin.Tiebreakers) > 0 {
			tiebreakers = stageCfg.RoundRobin.Tiebreakers
		}
	}
	return standings.CalculatePoolAdvancement(pools, rules, scoring, tiebreakers)
}

func (s *progressionService) swissAdvancement(
	ctx context.Context,
	tournament *models.Tournament,
	stageCfg models.StageConfig,
) (*models.AdvancementResult, error) {
	rounds, err := s.swissRepo.ListByTournamentStage(ctx, tournament.ID, tournament.CurrentStage)
	if err != nil {
		return nil, err
	}
	teams := teamsFromRounds(rounds)
	criteria := models.SwissEntryCriteria{TotalTeamsAdvancing: len(teams) / 2}
	if stageCfg.Swiss != nil && stageCfg.Swiss.Advancement != nil {
		criteria = *stageCfg.Swiss.Advancement
	}
	return swiss.ExecuteSwissToElimination(rounds, criteria, teams)
}

// leaderboardAdvancement orders the field by total rank points across all
// heats, ascending: a first place contributes 1, so lower is better.
func leaderboardAdvancement(stageCfg models.StageConfig, snapshot []models.Match) *models.AdvancementResult {
	totals := make(map[string]int)
	appearances := make(map[string]int)
	for _, m := range snapshot {
		if m.Status != models.MatchStatusCompleted {
			continue
		}
		for team, rank := range m.Rankings {
			totals[team] += rank
			appearances[team]++
		}
	}
	teams := make([]string, 0, len(totals))
	for team := range totals {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if totals[a] != totals[b] {
			return totals[a] < totals[b]
		}
		return a < b
	})

	result := &models.AdvancementResult{Advancing: teams}
	for i, team := range teams {
		result.Seeding = append(result.Seeding, models.SeedAssignment{
			Team:            team,
			Seed:            i + 1,
			BracketPosition: standings.BracketPositionForSeed(i+1, len(teams)),
			Justification: fmt.Sprintf("total rank %d across %d heats",
				totals[team], appearances[team]),
		})
	}
	return result
}

// eliminationPlacements ranks an elimination field by how deep each team
// survived: champion first, runner-up second, then by elimination depth
// descending with alphabetical order inside a round. For double elimination
// the grand final and reset sit past the end of the winners rounds yet
// carry lower round numbers than the late losers bracket, so exits there
// are weighted above any losers-bracket round.
func eliminationPlacements(snapshot []models.Match, delta *progressionDelta) *models.AdvancementResult {
	firstRoundWinners := 0
	for _, m := range snapshot {
		if m.Bracket == models.BracketWinners && m.Round == 1 {
			firstRoundWinners++
		}
	}
	winnersRounds := 0
	if firstRoundWinners > 0 {
		winnersRounds = int(math.Ceil(math.Log2(float64(firstRoundWinners * 2))))
	}
	const grandFinalWeight = 1 << 16
	depthOf := func(m models.Match) int {
		if winnersRounds > 0 && m.Bracket == models.BracketWinners && m.Round > winnersRounds {
			return grandFinalWeight + m.Round
		}
		return m.Round
	}

	type exit struct {
		team  string
		depth int
	}
	exits := make(map[string]int)
	rounds := make(map[string]int)
	for _, m := range snapshot {
		if m.Status != models.MatchStatusCompleted {
			continue
		}
		if loser := m.Loser(); loser != nil {
			if d := depthOf(m); d > exits[*loser] {
				exits[*loser] = d
				rounds[*loser] = m.Round
			}
		}
	}

	var ordered []exit
	for team, depth := range exits {
		if delta.champion != nil && team == *delta.champion {
			continue
		}
		ordered = append(ordered, exit{team: team, depth: depth})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].depth != ordered[j].depth {
			return ordered[i].depth > ordered[j].depth
		}
		return ordered[i].team < ordered[j].team
	})

	result := &models.AdvancementResult{}
	if delta.champion != nil {
		result.Advancing = append(result.Advancing, *delta.champion)
	}
	for _, e := range ordered {
		result.Advancing = append(result.Advancing, e.team)
	}
	total := len(result.Advancing)
	for i, team := range result.Advancing {
		just := fmt.Sprintf("eliminated in round %d", rounds[team])
		if delta.champion != nil && team == *delta.champion {
			just = "stage champion"
		}
		result.Seeding = append(result.Seeding, models.SeedAssignment{
			Team:            team,
			Seed:            i + 1,
			BracketPosition: standings.BracketPositionForSeed(i+1, total),
			Justification:   just,
		})
	}
	return result
}

// publishProgression pushes the event fan-out for one finalized match.
func (s *progressionService) publishProgression(tournamentID int, match *models.Match, delta *progressionDelta, done *completionOutcome) {
	s.publishTo(tournamentID, newEvent(models.EventMatchCompleted, tournamentID, match))
	for _, move := range delta.moves {
		s.publishTo(tournamentID, newEvent(models.EventBracketProgression, tournamentID, move))
	}
	for _, conflict := range delta.conflicts {
		s.logger.Warn("bracket conflict", slog.Int("tournament_id", tournamentID), slog.String("detail", conflict))
		s.publishTo(tournamentID, newEvent(models.EventConflictReported, tournamentID, conflict))
	}
	if done != nil {
		s.publishTo(tournamentID, newEvent(models.EventBracketProgression, tournamentID, done.advancement))
	}
}

func (s *progressionService) publish(event models.Event) {
	s.publishTo(event.TournamentID, event)
}

func (s *progressionService) publishTo(tournamentID int, event models.Event) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomID(tournamentID), event)
}

// archive uploads the final bracket snapshot; failures are logged, never
// fatal, since the tournament result is already committed.
func (s *progressionService) archive(tournament *models.Tournament) {
	if s.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	key, err := s.archiver.ArchiveBracket(ctx, tournament)
	if err != nil {
		s.logger.Error("bracket archive failed",
			slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		return
	}
	tournament.ArchiveKey = &key
	if err := s.tournamentRepo.Update(ctx, nil, tournament); err != nil {
		s.logger.Error("failed to record archive key",
			slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
	}
}

func (s *progressionService) loadMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}
