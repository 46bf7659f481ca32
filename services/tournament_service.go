package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/champions4change/tournament-engine/brackets"
	"github.com/champions4change/tournament-engine/models"
	"github.com/champions4change/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Config       models.TournamentConfig `json:"config"`
	Participants []string                `json:"participants"`
	OrganizerID  int                     `json:"organizer_id"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentData(ctx context.Context, tournamentID int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	poolRepo       repositories.PoolRepository
	swissRepo      repositories.SwissRoundRepository
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	swissRepo repositories.SwissRoundRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		poolRepo:       poolRepo,
		swissRepo:      swissRepo,
		logger:         logger,
	}
}

// CreateTournament validates the config, seeds the participant list,
// generates the first stage's bracket and persists everything in one
// transaction. A participant list shorter than the configured count is
// padded with placeholder names; that is policy, not an error.
func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (_ *models.Tournament, txErr error) {
	if violations := input.Config.Validate(); violations != nil {
		return nil, newValidationError(violations)
	}
	if len(input.Participants) > input.Config.Meta.ParticipantCount {
		return nil, newValidationError(map[string]string{
			"participants": fmt.Sprintf("got %d participants for a field of %d",
				len(input.Participants), input.Config.Meta.ParticipantCount),
		})
	}

	participants := brackets.FillParticipants(input.Participants, input.Config.Meta.ParticipantCount, input.Config.Meta.ParticipantType)
	if input.Config.Seeding == models.SeedingRandom {
		rand.Shuffle(len(participants), func(i, j int) {
			participants[i], participants[j] = participants[j], participants[i]
		})
	}

	tournament := &models.Tournament{
		Name:         input.Config.Meta.Name,
		OrganizerID:  input.OrganizerID,
		Config:       input.Config,
		Status:       models.StatusActive,
		CurrentStage: 0,
	}

	stageCfg := input.Config.Stages[0]
	s.logger.Info("generating opening stage",
		slog.String("tournament", tournament.Name),
		slog.String("engine", string(stageCfg.Engine)),
		slog.Int("participants", len(participants)))

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

	if txErr = s.tournamentRepo.Create(ctx, tx, tournament); txErr != nil {
		return nil, txErr
	}

	structure, txErr := GenerateStage(tx, s.matchRepo, s.poolRepo, s.swissRepo, StageGeneration{
		Ctx:          ctx,
		Tournament:   tournament,
		Stage:        0,
		StageConfig:  stageCfg,
		Participants: participants,
		Logger:       s.logger,
	})
	if txErr != nil {
		return nil, txErr
	}

	tournament.Matches = structure.Matches
	return tournament, txErr
}

// StageGeneration bundles the inputs of one stage build.
type StageGeneration struct {
	Ctx          context.Context
	Tournament   *models.Tournament
	Stage        int
	StageConfig  models.StageConfig
	Participants []string
	Logger       *slog.Logger
}

// GenerateStage runs the generator for one stage and persists its output:
// the match set, pool records for multi-pool stages, and the round-1 log
// entry for Swiss stages. It is shared between tournament creation and
// stage transitions.
func GenerateStage(
	exec repositories.SQLExecutor,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	swissRepo repositories.SwissRoundRepository,
	gen StageGeneration,
) (*models.BracketStructure, error) {
	generator := brackets.ForEngine(gen.StageConfig.Engine, gen.Logger)
	structure, err := generator.Generate(brackets.GenerateParams{
		TournamentID: gen.Tournament.ID,
		Stage:        gen.Stage,
		StageConfig:  gen.StageConfig,
		Participants: gen.Participants,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s stage %d for tournament %d: %w",
			generator.GetName(), gen.Stage, gen.Tournament.ID, err)
	}

	if err := matchRepo.CreateBatch(gen.Ctx, exec, structure.Matches); err != nil {
		return nil, err
	}

	if normalizeEngine(gen.StageConfig.Engine) == models.EngineRoundRobin {
		poolCount := 1
		if gen.StageConfig.RoundRobin != nil && gen.StageConfig.RoundRobin.PoolCount > 1 {
			poolCount = gen.StageConfig.RoundRobin.PoolCount
		}
		for _, assignment := range brackets.AssignPools(gen.Participants, poolCount) {
			poolID := assignment.ID
			if poolCount == 1 {
				poolID = models.BracketMain
			}
			pool := &models.Pool{
				PoolID:       poolID,
				TournamentID: gen.Tournament.ID,
				Stage:        gen.Stage,
				PoolName:     assignment.Name,
				Teams:        assignment.Teams,
			}
			if err := poolRepo.Create(gen.Ctx, exec, pool); err != nil {
				return nil, err
			}
		}
	}

	if normalizeEngine(gen.StageConfig.Engine) == models.EngineSwiss {
		round := &models.SwissRound{
			TournamentID: gen.Tournament.ID,
			Stage:        gen.Stage,
			RoundNumber:  1,
			Pairings:     pairingsFromMatches(structure.Matches),
		}
		if err := swissRepo.CreateRound(gen.Ctx, exec, round); err != nil {
			return nil, err
		}
	}

	return structure, nil
}

// pairingsFromMatches mirrors generated swiss matches into the round log.
func pairingsFromMatches(matches []models.Match) []models.SwissPairing {
	pairings := make([]models.SwissPairing, 0, len(matches))
	for i, m := range matches {
		p := models.SwissPairing{Table: i + 1, Result: models.SwissResultPending}
		if m.Team1 != nil {
			p.Team1 = *m.Team1
		}
		if m.Team2 != nil {
			p.Team2 = *m.Team2
		} else {
			p.IsBye = true
			p.Result = models.SwissResultTeam1Win
		}
		pairings = append(pairings, p)
	}
	return pairings
}

// GetTournamentData loads the tournament with its matches, pools and swiss
// rounds fetched in parallel.
func (s *tournamentService) GetTournamentData(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID, repositories.ListMatchesFilter{})
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		tournament.Matches = matches
		return nil
	})
	g.Go(func() error {
		pools, err := s.poolRepo.ListByTournamentStage(gCtx, tournamentID, tournament.CurrentStage)
		if err != nil {
			return fmt.Errorf("failed to load pools: %w", err)
		}
		tournament.Pools = pools
		return nil
	})
	g.Go(func() error {
		rounds, err := s.swissRepo.ListByTournamentStage(gCtx, tournamentID, tournament.CurrentStage)
		if err != nil {
			return fmt.Errorf("failed to load swiss rounds: %w", err)
		}
		tournament.Rounds = rounds
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Attach matches and running standings to their pools for display.
	for i := range tournament.Pools {
		pool := &tournament.Pools[i]
		for _, m := range tournament.Matches {
			if m.Stage == pool.Stage && m.Bracket == pool.PoolID {
				pool.Matches = append(pool.Matches, m)
			}
		}
	}

	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}
