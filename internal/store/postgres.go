package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaronzipp/word-impostor/internal/models"
)

// PostgresStore persists game aggregates in a games table. Players and votes
// live in JSONB columns, mirroring the document shape the rest of the system
// uses; every row read goes through Validate so malformed records are
// rejected at this boundary.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool and pings it.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id                     TEXT PRIMARY KEY,
	code                   TEXT NOT NULL,
	status                 TEXT NOT NULL,
	mode                   TEXT NOT NULL,
	round_time             INTEGER NOT NULL,
	current_round          INTEGER NOT NULL,
	max_rounds             INTEGER NOT NULL,
	current_word           TEXT NOT NULL DEFAULT '',
	impostor_id            TEXT NOT NULL DEFAULT '',
	leader_id              TEXT NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL,
	players                JSONB NOT NULL,
	votes                  JSONB NOT NULL DEFAULT '{}',
	round_started_at       TIMESTAMPTZ,
	current_turn_player_id TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS games_code_idx ON games (code);
`

// EnsureSchema creates the games table and its code index if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

const gameColumns = `id, code, status, mode, round_time, current_round, max_rounds,
	current_word, impostor_id, leader_id, created_at, players, votes,
	round_started_at, current_turn_player_id`

// FindByID returns the game with the given id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Game, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %s", models.ErrNotFound, id)
	}
	return g, err
}

// FindByCode returns the game with the given join code.
func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Game, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE code = $1`, code)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: code %s", models.ErrNotFound, code)
	}
	return g, err
}

// Create inserts a new game row.
func (s *PostgresStore) Create(ctx context.Context, g *models.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	players, votes, err := marshalJSONFields(g)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		g.ID, g.Code, g.Status, g.Mode, g.RoundTime, g.CurrentRound, g.MaxRounds,
		g.CurrentWord, g.ImpostorID, g.LeaderID, g.CreatedAt, players, votes,
		g.RoundStartedAt, g.CurrentTurnPlayerID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is the PostgreSQL unique_violation code
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: join code %s already in use", models.ErrValidation, g.Code)
		}
		return fmt.Errorf("inserting game: %w", err)
	}
	return nil
}

// Update replaces the stored aggregate in a single write.
func (s *PostgresStore) Update(ctx context.Context, g *models.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	players, votes, err := marshalJSONFields(g)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE games SET
			code = $2, status = $3, mode = $4, round_time = $5,
			current_round = $6, max_rounds = $7, current_word = $8,
			impostor_id = $9, leader_id = $10, players = $11, votes = $12,
			round_started_at = $13, current_turn_player_id = $14
		WHERE id = $1`,
		g.ID, g.Code, g.Status, g.Mode, g.RoundTime, g.CurrentRound,
		g.MaxRounds, g.CurrentWord, g.ImpostorID, g.LeaderID, players, votes,
		g.RoundStartedAt, g.CurrentTurnPlayerID,
	)
	if err != nil {
		return fmt.Errorf("updating game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: game %s", models.ErrNotFound, g.ID)
	}
	return nil
}

func marshalJSONFields(g *models.Game) (players, votes []byte, err error) {
	players, err = json.Marshal(g.Players)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding players: %w", err)
	}
	v := g.Votes
	if v == nil {
		v = map[string]string{}
	}
	votes, err = json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding votes: %w", err)
	}
	return players, votes, nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		g              models.Game
		players, votes []byte
		roundStartedAt *time.Time
	)
	err := row.Scan(
		&g.ID, &g.Code, &g.Status, &g.Mode, &g.RoundTime, &g.CurrentRound,
		&g.MaxRounds, &g.CurrentWord, &g.ImpostorID, &g.LeaderID, &g.CreatedAt,
		&players, &votes, &roundStartedAt, &g.CurrentTurnPlayerID,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(players, &g.Players); err != nil {
		return nil, fmt.Errorf("%w: players column: %v", models.ErrValidation, err)
	}
	if err := json.Unmarshal(votes, &g.Votes); err != nil {
		return nil, fmt.Errorf("%w: votes column: %v", models.ErrValidation, err)
	}
	g.RoundStartedAt = roundStartedAt
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("stored game %s rejected: %w", g.ID, err)
	}
	return &g, nil
}
