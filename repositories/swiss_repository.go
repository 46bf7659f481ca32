package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/champions4change/tournament-engine/models"
)

var ErrSwissRoundNotFound = errors.New("swiss round not found")

// SwissRoundRepository persists the append-only Swiss round log. Pairings
// are stored as a JSONB document per round.
type SwissRoundRepository interface {
	CreateRound(ctx context.Context, exec SQLExecutor, round *models.SwissRound) error
	UpdateRound(ctx context.Context, exec SQLExecutor, round *models.SwissRound) error
	ListByTournamentStage(ctx context.Context, tournamentID, stage int) ([]models.SwissRound, error)
}

type postgresSwissRoundRepository struct {
	db *sql.DB
}

func NewPostgresSwissRoundRepository(db *sql.DB) SwissRoundRepository {
	return &postgresSwissRoundRepository{db: db}
}

func (r *postgresSwissRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSwissRoundRepository) CreateRound(ctx context.Context, exec SQLExecutor, round *models.SwissRound) error {
	executor := r.getExecutor(exec)
	pairings, err := json.Marshal(round.Pairings)
	if err != nil {
		return fmt.Errorf("failed to encode pairings: %w", err)
	}
	query := `
		INSERT INTO swiss_rounds (tournament_id, stage, round_number, pairings, is_complete)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = executor.ExecContext(ctx, query,
		round.TournamentID, round.Stage, round.RoundNumber, pairings, round.IsComplete,
	)
	if err != nil {
		return fmt.Errorf("failed to create swiss round %d for tournament %d: %w",
			round.RoundNumber, round.TournamentID, err)
	}
	return nil
}

func (r *postgresSwissRoundRepository) UpdateRound(ctx context.Context, exec SQLExecutor, round *models.SwissRound) error {
	executor := r.getExecutor(exec)
	pairings, err := json.Marshal(round.Pairings)
	if err != nil {
		return fmt.Errorf("failed to encode pairings: %w", err)
	}
	query := `
		UPDATE swiss_rounds SET pairings = $4, is_complete = $5
		WHERE tournament_id = $1 AND stage = $2 AND round_number = $3`
	result, err := executor.ExecContext(ctx, query,
		round.TournamentID, round.Stage, round.RoundNumber, pairings, round.IsComplete,
	)
	if err != nil {
		return fmt.Errorf("failed to update swiss round %d for tournament %d: %w",
			round.RoundNumber, round.TournamentID, err)
	}
	return checkAffectedRows(result, ErrSwissRoundNotFound)
}

func (r *postgresSwissRoundRepository) ListByTournamentStage(ctx context.Context, tournamentID, stage int) ([]models.SwissRound, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT tournament_id, stage, round_number, pairings, is_complete
		FROM swiss_rounds WHERE tournament_id = $1 AND stage = $2
		ORDER BY round_number`
	rows, err := executor.QueryContext(ctx, query, tournamentID, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list swiss rounds for tournament %d stage %d: %w", tournamentID, stage, err)
	}
	defer rows.Close()

	var rounds []models.SwissRound
	for rows.Next() {
		var round models.SwissRound
		var pairings []byte
		if err := rows.Scan(&round.TournamentID, &round.Stage, &round.RoundNumber, &pairings, &round.IsComplete); err != nil {
			return nil, fmt.Errorf("failed to scan swiss round row: %w", err)
		}
		if err := json.Unmarshal(pairings, &round.Pairings); err != nil {
			return nil, fmt.Errorf("failed to decode pairings for round %d: %w", round.RoundNumber, err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
