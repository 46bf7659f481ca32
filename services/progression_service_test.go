package services

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/champions4change/tournament-engine/models"
	"github.com/champions4change/tournament-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResultCollectsEveryViolation(t *testing.T) {
	cfg := models.StageConfig{Engine: models.EngineSingleElimination}
	match := &models.Match{Team1: strPtr("Ants"), Team2: strPtr("Bees")}

	violations := validateResult(cfg, match, SubmitResultInput{
		Score1: intPtr(-1),
		Score2: intPtr(-3),
		IsDraw: true,
		Winner: strPtr("Ants"),
	})

	// One bad payload, one full report.
	assert.Len(t, violations, 4)
	assert.Contains(t, violations, "score1")
	assert.Contains(t, violations, "score2")
	assert.Contains(t, violations, "is_draw")
	assert.Contains(t, violations, "winner")
}

func TestValidateResultDecidedMatchNeedsWinner(t *testing.T) {
	cfg := models.StageConfig{Engine: models.EngineRoundRobin}
	match := &models.Match{Team1: strPtr("Ants"), Team2: strPtr("Bees")}

	violations := validateResult(cfg, match, SubmitResultInput{Score1: intPtr(2), Score2: intPtr(1)})
	assert.Contains(t, violations, "winner")

	// A forfeit decides the match without naming a winner.
	violations = validateResult(cfg, match, SubmitResultInput{Forfeit: strPtr("Bees")})
	assert.Empty(t, violations)

	// Draws are legal outside elimination.
	violations = validateResult(cfg, match, SubmitResultInput{IsDraw: true, Score1: intPtr(1), Score2: intPtr(1)})
	assert.Empty(t, violations)
}

func TestValidateResultRejectsOutsiders(t *testing.T) {
	cfg := models.StageConfig{Engine: models.EngineSingleElimination}
	match := &models.Match{Team1: strPtr("Ants"), Team2: strPtr("Bees")}

	violations := validateResult(cfg, match, SubmitResultInput{Winner: strPtr("Cats")})
	assert.Contains(t, violations["winner"], "Cats")

	violations = validateResult(cfg, match, SubmitResultInput{Winner: strPtr("Ants"), Forfeit: strPtr("Cats")})
	assert.Contains(t, violations["forfeit"], "Cats")
}

func TestValidateResultWinnerMustMatchScore(t *testing.T) {
	cfg := models.StageConfig{Engine: models.EngineSingleElimination}
	match := &models.Match{Team1: strPtr("Ants"), Team2: strPtr("Bees")}

	violations := validateResult(cfg, match, SubmitResultInput{
		Winner: strPtr("Ants"),
		Score1: intPtr(1),
		Score2: intPtr(3),
	})
	assert.Contains(t, violations["winner"], "contradicts")

	// A forfeit may contradict the score on the board.
	violations = validateResult(cfg, match, SubmitResultInput{
		Winner:  strPtr("Ants"),
		Forfeit: strPtr("Bees"),
		Score1:  intPtr(1),
		Score2:  intPtr(3),
	})
	assert.Empty(t, violations)
}

func TestValidateResultLeaderboardNeedsFullRankings(t *testing.T) {
	cfg := models.StageConfig{Engine: models.EngineLeaderboard}
	match := &models.Match{HeatParticipants: []string{"Ants", "Bees", "Cats"}}

	violations := validateResult(cfg, match, SubmitResultInput{})
	assert.Contains(t, violations, "rankings")

	violations = validateResult(cfg, match, SubmitResultInput{
		Rankings: map[string]int{"Ants": 1, "Bees": 2},
	})
	assert.Contains(t, violations["rankings"], "Cats")

	violations = validateResult(cfg, match, SubmitResultInput{
		Rankings: map[string]int{"Ants": 1, "Bees": 2, "Cats": 3},
	})
	assert.Empty(t, violations)
}

func TestApplyResultForfeitDecidesForTheOtherSide(t *testing.T) {
	match := &models.Match{
		Team1:  strPtr("Ants"),
		Team2:  strPtr("Bees"),
		Status: models.MatchStatusInProgress,
	}
	applyResult(match, SubmitResultInput{Forfeit: strPtr("Ants")})

	require.NotNil(t, match.Winner)
	assert.Equal(t, "Bees", *match.Winner)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.Forfeit)
	assert.Equal(t, "Ants", *match.Forfeit)
}

func TestSwissResultOf(t *testing.T) {
	m := &models.Match{Team1: strPtr("Ants"), Team2: strPtr("Bees")}
	assert.Equal(t, models.SwissResultPending, swissResultOf(m))

	m.Winner = strPtr("Ants")
	assert.Equal(t, models.SwissResultTeam1Win, swissResultOf(m))

	m.Winner = strPtr("Bees")
	assert.Equal(t, models.SwissResultTeam2Win, swissResultOf(m))

	m.IsDraw = true
	assert.Equal(t, models.SwissResultDraw, swissResultOf(m))
}

func TestTeamsFromRoundsDerivesFieldFromLog(t *testing.T) {
	rounds := []models.SwissRound{
		{Pairings: []models.SwissPairing{
			{Team1: "Cats", Team2: "Ants"},
			{Team1: "Bees", IsBye: true},
		}},
		{Pairings: []models.SwissPairing{
			{Team1: "Ants", Team2: "Bees"},
		}},
	}
	assert.Equal(t, []string{"Ants", "Bees", "Cats"}, teamsFromRounds(rounds))
}

func TestSwissPlannedRounds(t *testing.T) {
	assert.Equal(t, 4, swissPlannedRounds(nil, 16))
	assert.Equal(t, 3, swissPlannedRounds(nil, 7))
	assert.Equal(t, 1, swissPlannedRounds(nil, 1))
	assert.Equal(t, 5, swissPlannedRounds(&models.SwissSettings{Rounds: 5}, 16))
}

func TestMatchesFromPairings(t *testing.T) {
	pairings := []models.SwissPairing{
		{Team1: "Ants", Team2: "Bees", Table: 1},
		{Team1: "Cats", Table: 2, IsBye: true, Result: models.SwissResultTeam1Win},
	}
	matches := matchesFromPairings(7, 0, 2, pairings)
	require.Len(t, matches, 2)

	head := matches[0]
	assert.Equal(t, 7, head.TournamentID)
	assert.Equal(t, 2, head.Round)
	assert.Equal(t, 1, head.Position)
	assert.Equal(t, models.BracketMain, head.Bracket)
	assert.Equal(t, models.MatchStatusUpcoming, head.Status)

	bye := matches[1]
	assert.Equal(t, models.MatchStatusCompleted, bye.Status, "byes are born finished")
	require.NotNil(t, bye.Winner)
	assert.Equal(t, "Cats", *bye.Winner)
	assert.Nil(t, bye.Team2)
}

func TestLeaderboardAdvancementRanksByTotalRank(t *testing.T) {
	cfg := models.StageConfig{Engine: models.EngineLeaderboard}
	snapshot := []models.Match{
		{
			Status:   models.MatchStatusCompleted,
			Rankings: map[string]int{"Ants": 1, "Bees": 2, "Cats": 3},
		},
		{
			Status:   models.MatchStatusCompleted,
			Rankings: map[string]int{"Ants": 2, "Bees": 1, "Cats": 3},
		},
		{
			// Unfinished heats contribute nothing.
			Status:   models.MatchStatusUpcoming,
			Rankings: map[string]int{"Cats": 1},
		},
	}

	result := leaderboardAdvancement(cfg, snapshot)
	// Ants and Bees both total 3 and tie; alphabetical order settles it.
	assert.Equal(t, []string{"Ants", "Bees", "Cats"}, result.Advancing)
	require.Len(t, result.Seeding, 3)
	assert.Equal(t, 1, result.Seeding[0].Seed)
	assert.Contains(t, result.Seeding[0].Justification, "total rank 3 across 2 heats")
	assert.Contains(t, result.Seeding[2].Justification, "total rank 6")
}

func TestEliminationPlacementsOrdersByDepth(t *testing.T) {
	snapshot := []models.Match{
		{Round: 1, Position: 1, Status: models.MatchStatusCompleted,
			Team1: strPtr("Ants"), Team2: strPtr("Dogs"), Winner: strPtr("Ants")},
		{Round: 1, Position: 2, Status: models.MatchStatusCompleted,
			Team1: strPtr("Cats"), Team2: strPtr("Bees"), Winner: strPtr("Cats")},
		{Round: 2, Position: 1, Status: models.MatchStatusCompleted,
			Team1: strPtr("Ants"), Team2: strPtr("Cats"), Winner: strPtr("Ants")},
	}
	delta := &progressionDelta{champion: strPtr("Ants")}

	result := eliminationPlacements(snapshot, delta)
	assert.Equal(t, []string{"Ants", "Cats", "Bees", "Dogs"}, result.Advancing)
	require.Len(t, result.Seeding, 4)
	assert.Equal(t, "stage champion", result.Seeding[0].Justification)
	assert.Contains(t, result.Seeding[1].Justification, "eliminated in round 2")
}

func TestTournamentLocksReturnSameMutexPerTournament(t *testing.T) {
	locks := newTournamentLocks()
	a := locks.forTournament(1)
	b := locks.forTournament(1)
	c := locks.forTournament(2)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

// stubMatchRepo serves canned matches. When stale is set, the first GetByID
// returns it instead of the stored row, mimicking a read that raced a
// concurrent finalization.
type stubMatchRepo struct {
	mu      sync.Mutex
	loads   int
	stale   *models.Match
	stored  models.Match
	updated []models.Match
}

func (r *stubMatchRepo) Create(context.Context, repositories.SQLExecutor, *models.Match) error {
	return nil
}

func (r *stubMatchRepo) CreateBatch(context.Context, repositories.SQLExecutor, []models.Match) error {
	return nil
}

func (r *stubMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.stored.ID {
		return nil, repositories.ErrMatchNotFound
	}
	r.loads++
	if r.loads == 1 && r.stale != nil {
		m := *r.stale
		return &m, nil
	}
	m := r.stored
	return &m, nil
}

func (r *stubMatchRepo) ListByTournament(context.Context, int, repositories.ListMatchesFilter) ([]models.Match, error) {
	return []models.Match{r.stored}, nil
}

func (r *stubMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, *match)
	return nil
}

type stubTournamentRepo struct {
	tournament models.Tournament
}

func (r *stubTournamentRepo) Create(context.Context, repositories.SQLExecutor, *models.Tournament) error {
	return nil
}

func (r *stubTournamentRepo) GetByID(context.Context, int) (*models.Tournament, error) {
	t := r.tournament
	return &t, nil
}

func (r *stubTournamentRepo) List(context.Context, repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return nil, nil
}

func (r *stubTournamentRepo) Update(context.Context, repositories.SQLExecutor, *models.Tournament) error {
	return nil
}

func newStubbedService(matchRepo *stubMatchRepo, tournamentRepo *stubTournamentRepo) *progressionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewProgressionService(nil, tournamentRepo, matchRepo, nil, nil, nil, NopBroadcaster{}, nil, logger)
	return svc.(*progressionService)
}

// TestSubmitResultRechecksFinalityUnderLock covers the window between the
// first read and lock acquisition: a result that was finalized in the
// meantime must be rejected, not overwritten.
func TestSubmitResultRechecksFinalityUnderLock(t *testing.T) {
	final := models.Match{
		ID:           "m1",
		TournamentID: 1,
		Stage:        0,
		Round:        1,
		Position:     1,
		Bracket:      models.BracketMain,
		Team1:        strPtr("Ants"),
		Team2:        strPtr("Bees"),
		Winner:       strPtr("Ants"),
		Status:       models.MatchStatusCompleted,
	}
	stale := final
	stale.Winner = nil
	stale.Status = models.MatchStatusInProgress

	matchRepo := &stubMatchRepo{stored: final, stale: &stale}
	tournamentRepo := &stubTournamentRepo{tournament: models.Tournament{
		ID:     1,
		Status: models.StatusActive,
		Config: models.TournamentConfig{
			Stages: []models.StageConfig{{Engine: models.EngineSingleElimination, Size: 8}},
		},
	}}
	svc := newStubbedService(matchRepo, tournamentRepo)

	_, err := svc.SubmitResult(context.Background(), SubmitResultInput{
		MatchID: "m1",
		Winner:  strPtr("Bees"),
		Score1:  intPtr(0),
		Score2:  intPtr(2),
	})

	assert.ErrorIs(t, err, ErrMatchAlreadyFinal)
	assert.GreaterOrEqual(t, matchRepo.loads, 2, "the match must be reloaded under the lock")
	assert.Empty(t, matchRepo.updated, "a finalized match must stay unchanged")
}

func TestScoreQueueReusedPerTournament(t *testing.T) {
	svc := newStubbedService(&stubMatchRepo{}, &stubTournamentRepo{})

	q := svc.queueFor(7)
	assert.Same(t, q, svc.queueFor(7))
	assert.NotSame(t, q, svc.queueFor(8))

	svc.releaseQueue(7)
	svc.releaseQueue(8)
}

func TestReleaseQueueRetiresTheTournament(t *testing.T) {
	svc := newStubbedService(&stubMatchRepo{}, &stubTournamentRepo{})

	q := svc.queueFor(7)
	svc.releaseQueue(7)

	select {
	case <-q.done:
	default:
		t.Fatal("released queue must be marked done")
	}

	svc.queueMu.Lock()
	_, ok := svc.queues[7]
	svc.queueMu.Unlock()
	assert.False(t, ok, "released queue must leave the registry")

	// A later tick starts over with a fresh queue; releasing twice is fine.
	fresh := svc.queueFor(7)
	assert.NotSame(t, q, fresh)
	svc.releaseQueue(7)
	svc.releaseQueue(7)
}

func TestReleaseQueueStopsDrainGoroutines(t *testing.T) {
	svc := newStubbedService(&stubMatchRepo{}, &stubTournamentRepo{})
	before := runtime.NumGoroutine()

	for id := 1; id <= 50; id++ {
		svc.queueFor(id)
	}
	require.GreaterOrEqual(t, runtime.NumGoroutine(), before+50)

	for id := 1; id <= 50; id++ {
		svc.releaseQueue(id)
	}
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, time.Second, 5*time.Millisecond, "drain goroutines must exit on release")
}

// TestEliminationPlacementsWeighsGrandFinalAboveLosersBracket uses a
// sixteen-team double elimination, where the losers final (round 6) carries
// a higher raw round number than the grand final (round 5): the grand-final
// runner-up must still place ahead of every losers-bracket exit.
func TestEliminationPlacementsWeighsGrandFinalAboveLosersBracket(t *testing.T) {
	snapshot := make([]models.Match, 0, 11)
	for pos := 1; pos <= 8; pos++ {
		snapshot = append(snapshot, models.Match{
			Round: 1, Position: pos, Bracket: models.BracketWinners,
			Status: models.MatchStatusCompleted,
		})
	}
	snapshot = append(snapshot,
		models.Match{Round: 5, Position: 1, Bracket: models.BracketWinners,
			Status: models.MatchStatusCompleted,
			Team1:  strPtr("Aces"), Team2: strPtr("Boars"), Winner: strPtr("Aces")},
		models.Match{Round: 6, Position: 1, Bracket: models.BracketLosers,
			Status: models.MatchStatusCompleted,
			Team1:  strPtr("Boars"), Team2: strPtr("Crows"), Winner: strPtr("Boars")},
		models.Match{Round: 5, Position: 1, Bracket: models.BracketLosers,
			Status: models.MatchStatusCompleted,
			Team1:  strPtr("Crows"), Team2: strPtr("Drums"), Winner: strPtr("Crows")},
	)
	delta := &progressionDelta{champion: strPtr("Aces")}

	result := eliminationPlacements(snapshot, delta)
	assert.Equal(t, []string{"Aces", "Boars", "Crows", "Drums"}, result.Advancing)
	assert.Contains(t, result.Seeding[1].Justification, "eliminated in round 5")
}
