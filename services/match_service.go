package services

import (
	"context"
	"errors"

	"github.com/champions4change/tournament-engine/live"
	"github.com/champions4change/tournament-engine/models"
	"github.com/champions4change/tournament-engine/repositories"
)

type MatchService interface {
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]models.Match, error)
	LiveScores(ctx context.Context, tournamentID int) (map[string]live.ScoreSnapshot, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	cache     *live.ScoreCache
}

func NewMatchService(matchRepo repositories.MatchRepository, cache *live.ScoreCache) MatchService {
	return &matchService{matchRepo: matchRepo, cache: cache}
}

func (s *matchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID, filter)
}

func (s *matchService) LiveScores(_ context.Context, tournamentID int) (map[string]live.ScoreSnapshot, error) {
	return s.cache.Scores(tournamentID), nil
}
