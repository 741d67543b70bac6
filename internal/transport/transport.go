// Package transport synchronizes a client's store with a remote game
// authority. The Socket implementation speaks JSON frames over a
// persistent websocket; the Local implementation wires a client
// straight to an in-process master for tests and demos.
package transport

import (
	"time"

	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/store"
)

// Transport is the contract the client runtime requires from a
// multiplayer synchronization component.
type Transport interface {
	// CreateStore builds the client's store so the transport can weave
	// its action-forwarding middleware into the dispatch chain.
	CreateStore(reducer game.Reducer, initial game.State, mws ...store.Middleware) *store.Store
	// Connect establishes the session with the remote authority and
	// requests an initial full sync.
	Connect() error
	// Subscribe registers fn for connection-state changes and remote
	// deliveries that do not flow through the local store.
	Subscribe(fn func())
	// IsConnected reports the live connection flag.
	IsConnected() bool
	// UpdatePlayerID rebinds the session to a new player identity and
	// requests a fresh sync.
	UpdatePlayerID(id string)
	// UpdateGameID rebinds the session to a new game and requests a
	// fresh sync.
	UpdateGameID(id string)
}

// SocketOptions tunes the websocket connection.
type SocketOptions struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// PingInterval of zero disables keepalive pings.
	PingInterval time.Duration
}

// Options configures a transport session.
type Options struct {
	// Game is used to rehydrate G after wire decoding.
	Game       *game.Game
	GameID     string
	PlayerID   string
	GameName   string
	NumPlayers int
	// Server is the host:port of the remote authority.
	Server string
	Socket SocketOptions
	Logger *zap.Logger
}
