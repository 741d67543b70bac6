package transport

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/store"
)

const (
	defaultDialTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Socket synchronizes a client with a remote game server over a
// persistent websocket. Remote sync/update frames are dispatched into
// the client's store; local moves and events are forwarded to the
// server with the state version the client acted on.
type Socket struct {
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	store     *store.Store
	gameID    string
	playerID  string
	connected bool
	callbacks []func()
	done      chan struct{}
}

// NewSocket creates a websocket transport. No connection is attempted
// until Connect.
func NewSocket(opts Options) *Socket {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Socket{
		opts:     opts,
		logger:   logger,
		gameID:   opts.GameID,
		playerID: opts.PlayerID,
	}
}

// CreateStore builds the client store with the action-forwarding
// middleware appended outermost.
func (t *Socket) CreateStore(reducer game.Reducer, initial game.State, mws ...store.Middleware) *store.Store {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store = store.New(reducer, initial, append(mws, t.forwardMiddleware())...)
	return t.store
}

// Connect dials the server, starts the read loop, and requests an
// initial full sync. Calling Connect again after a disconnect dials a
// fresh connection.
func (t *Socket) Connect() error {
	dialTimeout := t.opts.Socket.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = defaultDialTimeout
	}

	u := url.URL{Scheme: "ws", Host: t.opts.Server, Path: "/socket/" + t.opts.GameName}
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", u.String(), err)
	}

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	t.connected = true
	t.done = make(chan struct{})
	done := t.done
	callbacks := t.snapshotCallbacksLocked()
	t.mu.Unlock()

	t.logger.Info("transport connected",
		zap.String("server", t.opts.Server),
		zap.String("game", t.opts.GameName),
	)
	for _, fn := range callbacks {
		fn()
	}

	go t.readLoop(conn, done)
	if interval := t.opts.Socket.PingInterval; interval > 0 {
		go t.pingLoop(conn, done, interval)
	}

	t.requestSync()
	return nil
}

// Subscribe registers fn for connection-state changes.
func (t *Socket) Subscribe(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, fn)
}

// IsConnected reports the live connection flag.
func (t *Socket) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// UpdatePlayerID rebinds the session and requests a fresh sync.
func (t *Socket) UpdatePlayerID(id string) {
	t.mu.Lock()
	t.playerID = id
	connected := t.connected
	t.mu.Unlock()
	if connected {
		t.requestSync()
	}
}

// UpdateGameID rebinds the session and requests a fresh sync.
func (t *Socket) UpdateGameID(id string) {
	t.mu.Lock()
	t.gameID = id
	connected := t.connected
	t.mu.Unlock()
	if connected {
		t.requestSync()
	}
}

// requestSync asks the server for a full authoritative snapshot of
// the current game.
func (t *Socket) requestSync() {
	t.mu.Lock()
	msg := Message{
		Type:       MsgSync,
		GameID:     t.gameID,
		PlayerID:   t.playerID,
		NumPlayers: t.opts.NumPlayers,
	}
	t.mu.Unlock()
	t.write(msg)
}

// forwardMiddleware sends local moves and events to the server.
func (t *Socket) forwardMiddleware() store.Middleware {
	return func(s *store.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(act action.Action) {
				stateID := s.GetState().StateID
				next(act)

				if act.Type != action.MakeMove && act.Type != action.GameEvent {
					return
				}
				t.mu.Lock()
				connected := t.connected
				gameID, playerID := t.gameID, t.playerID
				t.mu.Unlock()
				if !connected {
					return
				}
				payload := act.Payload
				t.write(Message{
					Type:       MsgAction,
					GameID:     gameID,
					PlayerID:   playerID,
					StateID:    stateID,
					ActionType: act.Type,
					Action:     &payload,
				})
			}
		}
	}
}

// write serializes one frame onto the connection. Writes are
// serialized by the transport mutex; websocket connections allow only
// one concurrent writer.
func (t *Socket) write(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil || !t.connected {
		return
	}

	writeTimeout := t.opts.Socket.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}
	t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := t.conn.WriteJSON(msg); err != nil {
		t.logger.Warn("transport write failed", zap.Error(err))
	}
}

// readLoop decodes frames until the connection fails, then flips the
// connection flag and notifies subscribers.
func (t *Socket) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer t.disconnect(conn, done)
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.logger.Info("transport read loop ended", zap.Error(err))
			return
		}
		t.handle(msg)
	}
}

// handle routes one server frame into the store.
func (t *Socket) handle(msg Message) {
	t.mu.Lock()
	gameID := t.gameID
	st := t.store
	t.mu.Unlock()

	if st == nil || msg.GameID != gameID || msg.State == nil {
		return
	}
	state := stateFromWire(msg.State, t.opts.Game)

	switch msg.Type {
	case MsgSync:
		st.Dispatch(action.NewSync(state, msg.Log))
	case MsgUpdate:
		// Drop updates that would rewind state already seen.
		if state.StateID < st.GetState().StateID {
			return
		}
		st.Dispatch(action.NewUpdate(state, msg.Deltalog))
	}
}

// pingLoop keeps the connection alive until done closes.
func (t *Socket) pingLoop(conn *websocket.Conn, done chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			t.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// disconnect tears down one connection's state and notifies
// subscribers of the flag change.
func (t *Socket) disconnect(conn *websocket.Conn, done chan struct{}) {
	conn.Close()

	t.mu.Lock()
	// Only the active connection may flip the flag; a stale read loop
	// from a replaced connection must not mark the new one down.
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	t.connected = false
	close(done)
	callbacks := t.snapshotCallbacksLocked()
	t.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (t *Socket) snapshotCallbacksLocked() []func() {
	out := make([]func(), len(t.callbacks))
	copy(out, t.callbacks)
	return out
}
