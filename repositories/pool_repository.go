package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/champions4change/tournament-engine/models"
	"github.com/lib/pq"
)

var ErrPoolNotFound = errors.New("pool not found")

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	ListByTournamentStage(ctx context.Context, tournamentID, stage int) ([]models.Pool, error)
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Pool) error {
	executor := r.getExecutor(exec)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO pools (pool_id, tournament_id, stage, pool_name, teams, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := executor.ExecContext(ctx, query,
		p.PoolID, p.TournamentID, p.Stage, p.PoolName, pq.Array(p.Teams), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pool %s for tournament %d: %w", p.PoolID, p.TournamentID, err)
	}
	return nil
}

func (r *postgresPoolRepository) ListByTournamentStage(ctx context.Context, tournamentID, stage int) ([]models.Pool, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT pool_id, tournament_id, stage, pool_name, teams, created_at
		FROM pools WHERE tournament_id = $1 AND stage = $2
		ORDER BY pool_id`
	rows, err := executor.QueryContext(ctx, query, tournamentID, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools for tournament %d stage %d: %w", tournamentID, stage, err)
	}
	defer rows.Close()

	var pools []models.Pool
	for rows.Next() {
		var p models.Pool
		if err := rows.Scan(&p.PoolID, &p.TournamentID, &p.Stage, &p.PoolName, pq.Array(&p.Teams), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pool row: %w", err)
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}
