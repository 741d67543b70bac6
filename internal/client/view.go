package client

import (
	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
)

// View is the externally observable snapshot returned by State. It is
// derived on every call and never cached.
type View struct {
	// G is the game state after the player-view projection. The
	// projection runs even in single-player mode so information-hiding
	// bugs show up during local development.
	G   any
	Ctx game.Ctx
	// Log is the client's reconciled log mirror.
	Log []action.LogEntry
	// IsActive reports whether this client may currently act.
	IsActive bool
	// IsConnected is the transport's live connection flag. Nil when
	// the client runs without a multiplayer transport.
	IsConnected *bool
}

// State computes the current view.
//
// Activity rule, first match wins:
//
//  1. game over              -> inactive
//  2. multiplayer, player cannot move -> inactive
//  3. single-player with an assigned player that cannot move -> inactive
//  4. otherwise              -> active
//
// A single-player client with no assigned player is always active; it
// plays every seat, which is what local hot-seat prototyping wants.
func (c *Client) State() View {
	s := c.store.GetState()

	c.mu.Lock()
	playerID := c.playerID
	log := make([]action.LogEntry, len(c.log))
	copy(log, c.log)
	c.mu.Unlock()

	isActive := true
	switch {
	case s.Ctx.Gameover != nil:
		isActive = false
	case c.multiplayer.Enabled && !c.game.CanPlayerMakeMove(s.G, s.Ctx, playerID):
		isActive = false
	case !c.multiplayer.Enabled && playerID != "" && !c.game.CanPlayerMakeMove(s.G, s.Ctx, playerID):
		isActive = false
	}

	view := View{
		G:        c.game.View(s.G, s.Ctx, playerID),
		Ctx:      s.Ctx,
		Log:      log,
		IsActive: isActive,
	}
	if c.transport != nil {
		connected := c.transport.IsConnected()
		view.IsConnected = &connected
	}
	return view
}
