// Package client implements the client-side runtime for a turn-based
// game: a reactive local store of game state, move and event
// dispatchers with player-identity resolution, an append-only log
// mirror reconciled against remote sync/update deliveries, and a
// player-scoped projection of state for rendering.
package client

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/store"
	"github.com/sachgits/boardgame.io/internal/transport"
)

// ErrNoBot is returned by Step when no autoplay strategy is
// configured or the client runs in multiplayer mode.
var ErrNoBot = errors.New("client: no autoplay strategy configured")

// Bot is the autoplay strategy contract: given the current state and
// the player expected to act, propose one action plus opaque metadata
// describing the choice. ok is false when the strategy has no move.
type Bot interface {
	Play(state game.State, playerID string) (act action.Action, metadata any, ok bool)
}

// Multiplayer configures remote synchronization. The zero value means
// single-player.
type Multiplayer struct {
	Enabled bool
	// Server is the remote authority's host:port. Empty means the
	// transport's default.
	Server string
}

// Dispatcher is one callable move or event entry point.
type Dispatcher func(args ...any)

// Config is the immutable construction input for a Client.
type Config struct {
	Game        *game.Game
	AI          Bot
	NumPlayers  int
	Multiplayer Multiplayer
	SocketOpts  transport.SocketOptions
	GameID      string
	PlayerID    string
	Credentials string
	// Enhancer is caller-supplied middleware composed after the log
	// reconciler, so it observes dispatches whose log effects have
	// already been applied.
	Enhancer store.Middleware
	// Transport overrides the websocket transport; used to plug in an
	// in-process transport for tests and demos.
	Transport transport.Transport
	Logger    *zap.Logger
}

// Client is the orchestrator: sole owner of the store, the log
// mirror, and the identity used to stamp dispatched actions.
type Client struct {
	game        *game.Game
	multiplayer Multiplayer
	bot         Bot
	logger      *zap.Logger

	store     *store.Store
	transport transport.Transport

	mu          sync.Mutex
	gameID      string
	playerID    string
	credentials string
	log         []action.LogEntry
	moves       map[string]Dispatcher
	events      map[string]Dispatcher
}

// New constructs a client from cfg. In multiplayer mode the store is
// created through the transport so remote deliveries flow into it; in
// single-player mode a standalone local store is used.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		game:        cfg.Game,
		multiplayer: cfg.Multiplayer,
		bot:         cfg.AI,
		logger:      logger,
		gameID:      cfg.GameID,
		playerID:    cfg.PlayerID,
		credentials: cfg.Credentials,
	}

	reducer, initial := game.NewReducer(game.ReducerConfig{
		Game:        cfg.Game,
		NumPlayers:  cfg.NumPlayers,
		Multiplayer: cfg.Multiplayer.Enabled,
	})

	// The log reconciler sits closest to the reducer so its mirror
	// update can never be skipped by caller middleware.
	mws := []store.Middleware{c.logMiddleware()}
	if cfg.Enhancer != nil {
		mws = append(mws, cfg.Enhancer)
	}

	if cfg.Multiplayer.Enabled {
		tr := cfg.Transport
		if tr == nil {
			tr = transport.NewSocket(transport.Options{
				Game:       cfg.Game,
				GameID:     cfg.GameID,
				PlayerID:   cfg.PlayerID,
				GameName:   cfg.Game.Name,
				NumPlayers: cfg.NumPlayers,
				Server:     cfg.Multiplayer.Server,
				Socket:     cfg.SocketOpts,
				Logger:     logger,
			})
		}
		c.transport = tr
		c.store = tr.CreateStore(reducer, initial, mws...)
	} else {
		c.store = store.New(reducer, initial, mws...)
	}

	c.rebuildDispatchers()

	logger.Debug("client constructed",
		zap.String("game", cfg.Game.Name),
		zap.String("game_id", cfg.GameID),
		zap.String("player_id", cfg.PlayerID),
		zap.Bool("multiplayer", cfg.Multiplayer.Enabled),
	)
	return c
}

// Moves returns the current move dispatchers. The map is replaced
// whenever the player id, game id, or credentials change; callers
// holding an old map must re-read it from the client.
func (c *Client) Moves() map[string]Dispatcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moves
}

// Events returns the current flow-event dispatchers. Same replacement
// contract as Moves.
func (c *Client) Events() map[string]Dispatcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

// Reset restores the initial game state and clears the log mirror.
func (c *Client) Reset() { c.store.Dispatch(action.NewReset()) }

// Undo reverts the most recent local move.
func (c *Client) Undo() { c.store.Dispatch(action.NewUndo()) }

// Redo re-applies the most recently undone move.
func (c *Client) Redo() { c.store.Dispatch(action.NewRedo()) }

// Connect establishes the multiplayer session. It is a no-op for
// single-player clients.
func (c *Client) Connect() error {
	if c.transport == nil {
		return nil
	}
	return c.transport.Connect()
}

// Subscribe registers fn with the store and, when a transport is
// attached, with the transport as well; the transport may notify for
// connection-state changes that produce no local dispatch.
func (c *Client) Subscribe(fn func()) {
	c.store.Subscribe(fn)
	if c.transport != nil {
		c.transport.Subscribe(fn)
	}
}

// Step asks the autoplay strategy for one action on behalf of the
// player expected to act, dispatches it, and returns it. A nil action
// with nil error means the strategy declined to move.
func (c *Client) Step() (*action.Action, error) {
	if c.bot == nil || c.multiplayer.Enabled {
		return nil, ErrNoBot
	}

	state := c.store.GetState()
	if len(state.Ctx.ActionPlayers) == 0 {
		return nil, nil
	}
	playerID := state.Ctx.ActionPlayers[0]

	act, metadata, ok := c.bot.Play(state, playerID)
	if !ok {
		return nil, nil
	}
	act.Payload.Metadata = metadata
	c.store.Dispatch(act)
	return &act, nil
}

// UpdatePlayerID changes the acting player identity, rebuilds the
// dispatcher sets, and rebinds the transport session if one exists.
func (c *Client) UpdatePlayerID(id string) {
	c.mu.Lock()
	c.playerID = id
	c.mu.Unlock()

	if c.transport != nil {
		c.transport.UpdatePlayerID(id)
	}
	c.rebuildDispatchers()
}

// UpdateGameID changes the game instance this client plays, rebuilds
// the dispatcher sets, and rebinds the transport session if one
// exists.
func (c *Client) UpdateGameID(id string) {
	c.mu.Lock()
	c.gameID = id
	c.mu.Unlock()

	if c.transport != nil {
		c.transport.UpdateGameID(id)
	}
	c.rebuildDispatchers()
}

// UpdateCredentials changes the credentials stamped on dispatched
// actions and rebuilds the dispatcher sets.
func (c *Client) UpdateCredentials(credentials string) {
	c.mu.Lock()
	c.credentials = credentials
	c.mu.Unlock()
	c.rebuildDispatchers()
}

// GameID returns the current game instance id.
func (c *Client) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// PlayerID returns the configured player id; empty means unassigned.
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}
