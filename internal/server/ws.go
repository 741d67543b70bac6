package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/master"
	"github.com/sachgits/boardgame.io/internal/transport"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// conn is one websocket client attached to the gateway.
type conn struct {
	ws     *websocket.Conn
	send   chan transport.Message
	logger *zap.Logger

	mu       sync.Mutex
	gameID   string
	playerID string
	closed   bool
}

// boundTo reports whether this connection currently plays the given
// seat.
func (c *conn) boundTo(playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID == playerID
}

// bind records the game and seat from the latest sync request.
func (c *conn) bind(gameID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
	c.playerID = playerID
}

// enqueue hands a frame to the write pump, dropping it when the
// client cannot keep up or has already torn down. The mutex pairs
// with shutdown: a sender may hold a room snapshot taken before the
// connection left, so the closed check and the channel send must not
// race the close.
func (c *conn) enqueue(msg transport.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping frame for slow client",
			zap.String("game_id", msg.GameID),
			zap.String("player_id", msg.PlayerID),
		)
	}
}

// shutdown marks the connection closed and closes the send channel,
// stopping the write pump. Safe to call once per connection; enqueue
// calls after it are no-ops.
func (c *conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump serializes queued frames onto the connection and keeps it
// alive with pings.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleSocket upgrades the request and runs the read pump until the
// connection drops.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	m, ok := s.masterFor(name)
	if !ok {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &conn{
		ws:     ws,
		send:   make(chan transport.Message, sendBufferSize),
		logger: s.logger,
	}
	s.logger.Info("client connected", zap.String("game", name))

	go c.writePump()
	s.readPump(c, m)
}

// readPump decodes client frames and routes them to the master. It
// returns when the connection fails, unregistering the client.
func (s *Server) readPump(c *conn, m *master.Master) {
	defer func() {
		s.leave(c)
		c.shutdown()
		s.logger.Info("client disconnected",
			zap.String("game_id", c.gameID),
			zap.String("player_id", c.playerID),
		)
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg transport.Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			return
		}

		ctx := context.Background()
		switch msg.Type {
		case transport.MsgSync:
			c.bind(msg.GameID, msg.PlayerID)
			s.join(msg.GameID, c)
			if err := m.OnSync(ctx, msg.GameID, msg.PlayerID, msg.NumPlayers); err != nil {
				s.logger.Warn("sync failed",
					zap.String("game_id", msg.GameID),
					zap.Error(err),
				)
			}

		case transport.MsgAction:
			if msg.Action == nil {
				continue
			}
			act := action.Action{Type: msg.ActionType, Payload: *msg.Action}
			if err := m.OnUpdate(ctx, act, msg.StateID, msg.GameID, msg.PlayerID); err != nil {
				s.logger.Debug("action refused",
					zap.String("game_id", msg.GameID),
					zap.String("player_id", msg.PlayerID),
					zap.String("name", msg.Action.Name),
					zap.Error(err),
				)
			}
		}
	}
}
