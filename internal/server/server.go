// Package server exposes the authoritative game masters over a
// websocket gateway and a small REST lobby for creating, joining, and
// listing game instances.
package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/master"
	"github.com/sachgits/boardgame.io/internal/storage"
	"github.com/sachgits/boardgame.io/internal/transport"
)

// Server routes websocket frames to per-game masters and fans their
// emissions back out to the connections seated in each game. It
// implements master.Emitter.
type Server struct {
	logger   *zap.Logger
	storage  storage.Storage
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	masters map[string]*master.Master
	rooms   map[string]map[*conn]struct{}
}

// New creates a server over the given storage. Games must be
// registered before the handler serves traffic.
func New(st storage.Storage, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:  logger,
		storage: st,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		masters: make(map[string]*master.Master),
		rooms:   make(map[string]map[*conn]struct{}),
	}
}

// RegisterGame mounts a master for the game definition, making it
// reachable through the gateway and lobby under the game's name.
func (s *Server) RegisterGame(g *game.Game) *master.Master {
	m := master.New(g, s.storage, s, s.logger)
	s.mu.Lock()
	s.masters[g.Name] = m
	s.mu.Unlock()

	s.logger.Info("game registered", zap.String("game", g.Name))
	return m
}

// Handler returns the HTTP handler serving both the websocket gateway
// and the lobby routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/socket/{name}", s.handleSocket)
	r.HandleFunc("/games/{name}/create", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/games/{name}/{id}/join", s.handleJoin).Methods(http.MethodPost)
	r.HandleFunc("/games/{name}", s.handleList).Methods(http.MethodGet)
	return r
}

// Send implements master.Emitter: the action is framed and delivered
// to every connection in the game's room bound to the player.
func (s *Server) Send(gameID, playerID string, act action.Action) {
	msg, ok := frameAction(gameID, playerID, act)
	if !ok {
		return
	}

	s.mu.RLock()
	var targets []*conn
	for c := range s.rooms[gameID] {
		if c.boundTo(playerID) {
			targets = append(targets, c)
		}
	}
	s.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(msg)
	}
}

// masterFor returns the registered master for a game name.
func (s *Server) masterFor(name string) (*master.Master, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.masters[name]
	return m, ok
}

// join adds a connection to a game room.
func (s *Server) join(gameID string, c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[gameID] == nil {
		s.rooms[gameID] = make(map[*conn]struct{})
	}
	s.rooms[gameID][c] = struct{}{}
}

// leave removes a connection from every room it joined.
func (s *Server) leave(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for gameID, room := range s.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(s.rooms, gameID)
		}
	}
}

// frameAction converts a master emission into a wire frame. Only sync
// and update actions travel server to client.
func frameAction(gameID, playerID string, act action.Action) (transport.Message, bool) {
	state, ok := act.State.(game.State)
	if !ok {
		return transport.Message{}, false
	}

	msg := transport.Message{
		GameID:   gameID,
		PlayerID: playerID,
		State: &transport.WireState{
			G:       state.G,
			Ctx:     state.Ctx,
			StateID: state.StateID,
		},
	}
	switch act.Type {
	case action.Sync:
		msg.Type = transport.MsgSync
		msg.Log = act.Log
	case action.Update:
		msg.Type = transport.MsgUpdate
		msg.Deltalog = act.Deltalog
	default:
		return transport.Message{}, false
	}
	return msg, true
}
