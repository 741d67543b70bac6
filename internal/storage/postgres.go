package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS game_metadata (
	id         TEXT PRIMARY KEY,
	game_name  TEXT NOT NULL,
	metadata   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS game_metadata_game_name_idx ON game_metadata (game_name);
`

// Postgres persists games in a PostgreSQL database through a pgx
// connection pool. States are stored as JSONB; G round-trips through
// JSON, so games that need a concrete G must provide HydrateG.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to the database at dsn and ensures the schema
// exists.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	logger.Info("postgres storage initialized",
		zap.Int32("total_conns", pool.Stat().TotalConns()),
	)
	return &Postgres{pool: pool, logger: logger}, nil
}

// SetState upserts the state for gameID.
func (p *Postgres) SetState(ctx context.Context, gameID string, state game.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: marshal state: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO games (id, state, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		gameID, raw,
	)
	if err != nil {
		return fmt.Errorf("storage: set state: %w", err)
	}
	return nil
}

// GetState loads the state for gameID.
func (p *Postgres) GetState(ctx context.Context, gameID string) (game.State, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM games WHERE id = $1`, gameID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.State{}, ErrNotFound
	}
	if err != nil {
		return game.State{}, fmt.Errorf("storage: get state: %w", err)
	}

	var state game.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return game.State{}, fmt.Errorf("storage: unmarshal state: %w", err)
	}
	return state, nil
}

// Has reports whether gameID exists.
func (p *Postgres) Has(ctx context.Context, gameID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, gameID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("storage: has: %w", err)
	}
	return exists, nil
}

// SetMetadata upserts metadata for gameID.
func (p *Postgres) SetMetadata(ctx context.Context, gameID string, md Metadata) error {
	raw, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("storage: marshal metadata: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO game_metadata (id, game_name, metadata, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE SET game_name = EXCLUDED.game_name,
		 metadata = EXCLUDED.metadata, updated_at = now()`,
		gameID, md.GameName, raw,
	)
	if err != nil {
		return fmt.Errorf("storage: set metadata: %w", err)
	}
	return nil
}

// GetMetadata loads metadata for gameID.
func (p *Postgres) GetMetadata(ctx context.Context, gameID string) (Metadata, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT metadata FROM game_metadata WHERE id = $1`, gameID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Metadata{}, ErrNotFound
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("storage: get metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return Metadata{}, fmt.Errorf("storage: unmarshal metadata: %w", err)
	}
	return md, nil
}

// ListGames returns stored game ids filtered by game name.
func (p *Postgres) ListGames(ctx context.Context, gameName string) ([]string, error) {
	query := `SELECT id FROM game_metadata ORDER BY id`
	args := []any{}
	if gameName != "" {
		query = `SELECT id FROM game_metadata WHERE game_name = $1 ORDER BY id`
		args = append(args, gameName)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
