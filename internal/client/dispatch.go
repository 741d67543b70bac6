package client

import (
	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
)

// resolvePlayerID determines the effective acting player for a
// dispatch. Single-player clients with no assigned player act as
// whoever's turn it currently is; multiplayer clients never guess
// locally, since the server is authoritative for turn identity, so
// the configured id passes through even when unassigned.
func resolvePlayerID(configured string, multiplayer bool, state game.State) string {
	if !multiplayer && configured == "" {
		return state.Ctx.CurrentPlayer
	}
	return configured
}

// rebuildDispatchers replaces both dispatcher sets with closures over
// the client's current identity fields. Identity is read at call
// time, not build time, so turn order may change between calls
// without another rebuild.
func (c *Client) rebuildDispatchers() {
	moves := make(map[string]Dispatcher, len(c.game.Moves))
	for _, name := range c.game.MoveNames() {
		moves[name] = c.dispatcher(action.MakeMove, name)
	}

	eventNames := c.game.EventNames()
	events := make(map[string]Dispatcher, len(eventNames))
	for _, name := range eventNames {
		events[name] = c.dispatcher(action.GameEvent, name)
	}

	c.mu.Lock()
	c.moves = moves
	c.events = events
	c.mu.Unlock()
}

// dispatcher builds the callable for one move or event name.
func (c *Client) dispatcher(kind action.Type, name string) Dispatcher {
	return func(args ...any) {
		c.mu.Lock()
		configured := c.playerID
		credentials := c.credentials
		c.mu.Unlock()

		playerID := resolvePlayerID(configured, c.multiplayer.Enabled, c.store.GetState())

		var act action.Action
		switch kind {
		case action.GameEvent:
			act = action.NewGameEvent(name, args, playerID, credentials)
		default:
			act = action.NewMakeMove(name, args, playerID, credentials)
		}

		c.logger.Debug("dispatching action",
			zap.String("type", string(kind)),
			zap.String("name", name),
			zap.String("player_id", playerID),
		)
		c.store.Dispatch(act)
	}
}
