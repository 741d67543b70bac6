// Package storage persists authoritative game state and per-game
// metadata for the server side of the system.
package storage

import (
	"context"
	"errors"

	"github.com/sachgits/boardgame.io/internal/game"
)

// ErrNotFound is returned when a game id has no stored state or
// metadata.
var ErrNotFound = errors.New("storage: game not found")

// PlayerMetadata holds the join record for one seat.
type PlayerMetadata struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	// CredentialHash is the bcrypt hash of the credentials issued to
	// the player at join time. Empty means the seat is open.
	CredentialHash []byte `json:"credentialHash,omitempty"`
}

// Metadata describes one game instance outside its reducer state.
type Metadata struct {
	GameName string                    `json:"gameName"`
	Players  map[string]PlayerMetadata `json:"players"`
}

// Storage is the persistence contract the master and lobby require.
type Storage interface {
	// SetState stores the authoritative state for a game id,
	// overwriting any previous state.
	SetState(ctx context.Context, gameID string, state game.State) error
	// GetState loads the authoritative state; ErrNotFound when the
	// game does not exist.
	GetState(ctx context.Context, gameID string) (game.State, error)
	// Has reports whether the game id exists.
	Has(ctx context.Context, gameID string) (bool, error)
	// SetMetadata stores the metadata for a game id.
	SetMetadata(ctx context.Context, gameID string, md Metadata) error
	// GetMetadata loads metadata; ErrNotFound when none was stored.
	GetMetadata(ctx context.Context, gameID string) (Metadata, error)
	// ListGames returns the ids of stored games whose metadata names
	// the given game, or all ids when gameName is empty.
	ListGames(ctx context.Context, gameName string) ([]string, error)
	// Close releases underlying resources.
	Close() error
}
