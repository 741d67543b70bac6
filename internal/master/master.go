// Package master implements the authoritative side of the game
// protocol: it owns the stored state for every game instance, judges
// incoming actions, and pushes player-filtered sync and update
// actions back out through an emitter.
package master

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/storage"
)

var (
	// ErrUnauthorized means the action's credentials do not match the
	// credentials issued for its seat.
	ErrUnauthorized = errors.New("master: invalid credentials")
	// ErrRejected means the reducer refused the action.
	ErrRejected = errors.New("master: action rejected")
)

// Emitter delivers an action to every connection a player holds on a
// game. An empty playerID addresses spectators.
type Emitter interface {
	Send(gameID, playerID string, act action.Action)
}

// Master arbitrates one game type. Safe for concurrent use; the
// load-apply-store path is serialized per master.
type Master struct {
	game    *game.Game
	storage storage.Storage
	emitter Emitter
	reducer game.Reducer
	logger  *zap.Logger

	mu sync.Mutex
}

// New creates a master for the game backed by the given storage.
func New(g *game.Game, st storage.Storage, emitter Emitter, logger *zap.Logger) *Master {
	if logger == nil {
		logger = zap.NewNop()
	}
	reducer, _ := game.NewReducer(game.ReducerConfig{Game: g})
	return &Master{
		game:    g,
		storage: st,
		emitter: emitter,
		reducer: reducer,
		logger:  logger,
	}
}

// Game returns the game definition this master arbitrates.
func (m *Master) Game() *game.Game { return m.game }

// CreateGame initializes and stores a fresh game instance, returning
// its initial state.
func (m *Master) CreateGame(ctx context.Context, gameID string, numPlayers int) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createGame(ctx, gameID, numPlayers)
}

func (m *Master) createGame(ctx context.Context, gameID string, numPlayers int) (game.State, error) {
	_, initial := game.NewReducer(game.ReducerConfig{
		Game:       m.game,
		NumPlayers: numPlayers,
	})
	if err := m.storage.SetState(ctx, gameID, initial); err != nil {
		return game.State{}, fmt.Errorf("master: create game: %w", err)
	}
	m.logger.Info("game created",
		zap.String("game", m.game.Name),
		zap.String("game_id", gameID),
		zap.Int("num_players", numPlayers),
	)
	return initial, nil
}

// OnSync handles a full-sync request from playerID: the game is
// loaded (created on first contact) and a sync action carrying the
// player-filtered state plus the complete log is emitted back to the
// requesting player.
func (m *Master) OnSync(ctx context.Context, gameID, playerID string, numPlayers int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.storage.GetState(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		state, err = m.createGame(ctx, gameID, numPlayers)
	}
	if err != nil {
		return err
	}

	m.emitter.Send(gameID, playerID, action.NewSync(m.filter(state, playerID), state.Log))
	return nil
}

// OnUpdate handles a move or event forwarded by a client. stateID is
// the client's optimistic state version: when it is stale the client
// is resynced instead of the action applied. Accepted actions are
// applied through the reducer, persisted, and fanned out to every
// seat as player-filtered updates.
func (m *Master) OnUpdate(ctx context.Context, act action.Action, stateID int, gameID, playerID string) error {
	if act.Type != action.MakeMove && act.Type != action.GameEvent {
		return fmt.Errorf("master: unsupported action type %q", act.Type)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.storage.GetState(ctx, gameID)
	if err != nil {
		return fmt.Errorf("master: load game %s: %w", gameID, err)
	}

	if stateID != state.StateID {
		m.logger.Debug("stale action, resyncing client",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.Int("client_state_id", stateID),
			zap.Int("state_id", state.StateID),
		)
		m.emitter.Send(gameID, playerID, action.NewSync(m.filter(state, playerID), state.Log))
		return nil
	}

	if err := m.authorize(ctx, gameID, playerID, act.Payload.Credentials); err != nil {
		m.logger.Warn("unauthorized action",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.String("name", act.Payload.Name),
		)
		return err
	}

	// The connection's player identity is authoritative, whatever the
	// client stamped on the payload.
	act.Payload.PlayerID = playerID
	act.Payload.Credentials = ""

	next := m.reducer(state, act)
	if next.StateID == state.StateID {
		m.logger.Debug("action rejected by reducer",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.String("type", string(act.Type)),
			zap.String("name", act.Payload.Name),
		)
		return ErrRejected
	}

	if err := m.storage.SetState(ctx, gameID, next); err != nil {
		return fmt.Errorf("master: persist game %s: %w", gameID, err)
	}

	for i := 0; i < next.Ctx.NumPlayers; i++ {
		seat := strconv.Itoa(i)
		m.emitter.Send(gameID, seat, action.NewUpdate(m.filter(next, seat), next.Deltalog))
	}
	// Spectators get the unassigned-player view.
	m.emitter.Send(gameID, "", action.NewUpdate(m.filter(next, ""), next.Deltalog))
	return nil
}

// authorize checks the action's credentials against the seat's join
// record. Games without metadata (created outside the lobby) skip the
// check.
func (m *Master) authorize(ctx context.Context, gameID, playerID, credentials string) error {
	md, err := m.storage.GetMetadata(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("master: load metadata %s: %w", gameID, err)
	}

	player, ok := md.Players[playerID]
	if !ok || len(player.CredentialHash) == 0 {
		return nil
	}
	if bcrypt.CompareHashAndPassword(player.CredentialHash, []byte(credentials)) != nil {
		return ErrUnauthorized
	}
	return nil
}

// filter produces the state a single player is allowed to see. The
// log and deltalog are stripped; they travel on the action itself.
func (m *Master) filter(state game.State, playerID string) game.State {
	g := state.G
	if m.game.HydrateG != nil {
		g = m.game.HydrateG(g)
	}
	return game.State{
		G:       m.game.View(g, state.Ctx, playerID),
		Ctx:     state.Ctx,
		StateID: state.StateID,
	}
}
