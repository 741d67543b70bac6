package transport

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/master"
	"github.com/sachgits/boardgame.io/internal/store"
)

// LocalNetwork routes master emissions to in-process clients. It
// implements master.Emitter; construct the master with it, then
// attach clients via NewLocal.
type LocalNetwork struct {
	mu      sync.Mutex
	clients []*Local
	logger  *zap.Logger
}

// NewLocalNetwork creates an empty local network.
func NewLocalNetwork(logger *zap.Logger) *LocalNetwork {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalNetwork{logger: logger}
}

// Send delivers act to every attached client bound to the game and
// player.
func (n *LocalNetwork) Send(gameID, playerID string, act action.Action) {
	n.mu.Lock()
	clients := make([]*Local, len(n.clients))
	copy(clients, n.clients)
	n.mu.Unlock()

	for _, c := range clients {
		if c.matches(gameID, playerID) {
			c.deliver(act)
		}
	}
}

func (n *LocalNetwork) attach(c *Local) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clients = append(n.clients, c)
}

// Local is an in-process transport wired straight to a master.
// It implements the same contract as Socket and exists for tests,
// demos, and single-binary deployments.
type Local struct {
	master  *master.Master
	network *LocalNetwork
	opts    Options
	logger  *zap.Logger

	mu        sync.Mutex
	gameID    string
	playerID  string
	connected bool
	callbacks []func()
	store     *store.Store
}

// NewLocal creates a local transport bound to the master and attaches
// it to the network the master emits through.
func NewLocal(m *master.Master, network *LocalNetwork, opts Options) *Local {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Local{
		master:   m,
		network:  network,
		opts:     opts,
		logger:   logger,
		gameID:   opts.GameID,
		playerID: opts.PlayerID,
	}
	network.attach(l)
	return l
}

// CreateStore builds the client store with the action-forwarding
// middleware appended outermost, so forwarded actions carry the state
// version the client acted on.
func (l *Local) CreateStore(reducer game.Reducer, initial game.State, mws ...store.Middleware) *store.Store {
	l.store = store.New(reducer, initial, append(mws, l.forwardMiddleware())...)
	return l.store
}

// Connect marks the transport connected and requests an initial sync
// from the master.
func (l *Local) Connect() error {
	l.mu.Lock()
	l.connected = true
	gameID, playerID := l.gameID, l.playerID
	callbacks := l.snapshotCallbacksLocked()
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return l.master.OnSync(context.Background(), gameID, playerID, l.opts.NumPlayers)
}

// Subscribe registers fn for connection-state changes.
func (l *Local) Subscribe(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, fn)
}

// IsConnected reports the connection flag.
func (l *Local) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// UpdatePlayerID rebinds the session and requests a fresh sync.
func (l *Local) UpdatePlayerID(id string) {
	l.mu.Lock()
	l.playerID = id
	connected := l.connected
	gameID := l.gameID
	l.mu.Unlock()

	if connected {
		_ = l.master.OnSync(context.Background(), gameID, id, l.opts.NumPlayers)
	}
}

// UpdateGameID rebinds the session and requests a fresh sync.
func (l *Local) UpdateGameID(id string) {
	l.mu.Lock()
	l.gameID = id
	connected := l.connected
	playerID := l.playerID
	l.mu.Unlock()

	if connected {
		_ = l.master.OnSync(context.Background(), id, playerID, l.opts.NumPlayers)
	}
}

// forwardMiddleware sends local moves and events to the master,
// stamped with the state version the client acted on for the master's
// staleness check.
func (l *Local) forwardMiddleware() store.Middleware {
	return func(s *store.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(act action.Action) {
				stateID := s.GetState().StateID
				next(act)

				if act.Type != action.MakeMove && act.Type != action.GameEvent {
					return
				}
				l.mu.Lock()
				connected := l.connected
				gameID, playerID := l.gameID, l.playerID
				l.mu.Unlock()
				if !connected {
					return
				}
				if err := l.master.OnUpdate(context.Background(), act, stateID, gameID, playerID); err != nil {
					l.logger.Warn("master refused action",
						zap.String("game_id", gameID),
						zap.String("name", act.Payload.Name),
						zap.Error(err),
					)
				}
			}
		}
	}
}

// matches reports whether this client should receive an emission
// addressed to the game and player.
func (l *Local) matches(gameID, playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected && l.gameID == gameID && l.playerID == playerID
}

// deliver dispatches a remote action into the store, dropping updates
// that would rewind state the client has already seen.
func (l *Local) deliver(act action.Action) {
	if l.store == nil {
		return
	}
	if act.Type == action.Update {
		if remote, ok := act.State.(game.State); ok {
			if remote.StateID < l.store.GetState().StateID {
				return
			}
		}
	}
	l.store.Dispatch(act)
}

func (l *Local) snapshotCallbacksLocked() []func() {
	out := make([]func(), len(l.callbacks))
	copy(out, l.callbacks)
	return out
}
