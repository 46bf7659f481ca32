package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/champions4change/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchSlotConflict  = errors.New("match slot conflict: (round, position, bracket) already exists")
	ErrMatchInvalidStatus = errors.New("invalid match status value")
)

type ListMatchesFilter struct {
	Stage   *int
	Round   *int
	Bracket *string
	Status  *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter ListMatchesFilter) ([]models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, stage, round, position, bracket,
	team1, team2, score1, score2, winner, status, is_draw, forfeit,
	heat_participants, rankings, created_at, updated_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	rankings, err := marshalRankings(m.Rankings)
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = executor.ExecContext(ctx, query,
		m.ID, m.TournamentID, m.Stage, m.Round, m.Position, m.Bracket,
		m.Team1, m.Team2, m.Score1, m.Score2, m.Winner, m.Status, m.IsDraw, m.Forfeit,
		pq.Array(m.HeatParticipants), rankings, m.CreatedAt, m.UpdatedAt,
	)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []models.Match) error {
	for i := range matches {
		if err := r.Create(ctx, exec, &matches[i]); err != nil {
			return fmt.Errorf("batch create failed at match %s (round %d, position %d): %w",
				matches[i].ID, matches[i].Round, matches[i].Position, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter ListMatchesFilter) ([]models.Match, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}

	if filter.Stage != nil {
		args = append(args, *filter.Stage)
		query += fmt.Sprintf(" AND stage = $%d", len(args))
	}
	if filter.Round != nil {
		args = append(args, *filter.Round)
		query += fmt.Sprintf(" AND round = $%d", len(args))
	}
	if filter.Bracket != nil {
		args = append(args, *filter.Bracket)
		query += fmt.Sprintf(" AND bracket = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY stage, bracket, round, position"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	rankings, err := marshalRankings(m.Rankings)
	if err != nil {
		return err
	}
	m.UpdatedAt = time.Now()

	query := `
		UPDATE matches SET
			team1 = $2, team2 = $3, score1 = $4, score2 = $5, winner = $6,
			status = $7, is_draw = $8, forfeit = $9, heat_participants = $10,
			rankings = $11, updated_at = $12
		WHERE id = $1`
	result, err := executor.ExecContext(ctx, query,
		m.ID, m.Team1, m.Team2, m.Score1, m.Score2, m.Winner,
		m.Status, m.IsDraw, m.Forfeit, pq.Array(m.HeatParticipants),
		rankings, m.UpdatedAt,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var rankings []byte
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Stage, &m.Round, &m.Position, &m.Bracket,
		&m.Team1, &m.Team2, &m.Score1, &m.Score2, &m.Winner, &m.Status, &m.IsDraw, &m.Forfeit,
		pq.Array(&m.HeatParticipants), &rankings, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rankings) > 0 {
		if err := json.Unmarshal(rankings, &m.Rankings); err != nil {
			return nil, fmt.Errorf("failed to decode rankings for match %s: %w", m.ID, err)
		}
	}
	return &m, nil
}

func marshalRankings(rankings map[string]int) ([]byte, error) {
	if rankings == nil {
		return nil, nil
	}
	data, err := json.Marshal(rankings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rankings: %w", err)
	}
	return data, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return ErrMatchSlotConflict
		case "invalid_text_representation", "check_violation":
			return ErrMatchInvalidStatus
		}
	}
	return err
}
