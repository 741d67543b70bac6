// Package game holds the game definition types and the reducer that
// applies actions to game state. A Game is a pure description: setup,
// named moves, flow rules, and a per-player view projection. The
// reducer produced by NewReducer is the only thing that transitions
// state.
package game

import (
	"sort"

	"github.com/sachgits/boardgame.io/internal/action"
)

// Ctx is the game-flow context maintained by the reducer alongside G.
type Ctx struct {
	NumPlayers    int      `json:"numPlayers"`
	Turn          int      `json:"turn"`
	CurrentPlayer string   `json:"currentPlayer"`
	ActionPlayers []string `json:"actionPlayers"`
	// Gameover is nil while the game is in progress. Once set by the
	// flow's EndGameIf it never changes.
	Gameover any `json:"gameover,omitempty"`
}

// Snapshot captures G and ctx for the undo/redo stacks.
type Snapshot struct {
	G   any
	Ctx Ctx
}

// State is the full store state: the game payload, flow context, the
// authoritative log and the deltalog for the most recently applied
// action. StateID increments on every applied move or event and is
// used for optimistic-concurrency checks between client and server.
type State struct {
	G        any               `json:"G"`
	Ctx      Ctx               `json:"ctx"`
	Log      []action.LogEntry `json:"log,omitempty"`
	Deltalog []action.LogEntry `json:"deltalog,omitempty"`
	StateID  int               `json:"_stateID"`

	undo []Snapshot
	redo []Snapshot
}

// MoveFn applies a named move to G and returns the new G. Moves must
// treat G as immutable and return a fresh value; returning nil marks
// the move invalid and leaves state untouched.
type MoveFn func(g any, ctx Ctx, args ...any) any

// Game describes a turn-based game.
type Game struct {
	Name  string
	Setup func(numPlayers int) any
	Moves map[string]MoveFn
	Flow  *Flow
	// PlayerView projects G down to what the given player is allowed
	// to see. Nil means every player sees everything.
	PlayerView func(g any, ctx Ctx, playerID string) any
	// HydrateG restores a concrete G from the generic value produced
	// by a JSON round trip through storage or the wire. Nil means G
	// survives decoding as-is.
	HydrateG func(g any) any
}

// MoveNames returns the game's move names in sorted order.
func (g *Game) MoveNames() []string {
	names := make([]string, 0, len(g.Moves))
	for name := range g.Moves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View applies the game's player-view projection, defaulting to the
// identity when none is configured.
func (g *Game) View(state any, ctx Ctx, playerID string) any {
	if g.PlayerView == nil {
		return state
	}
	return g.PlayerView(state, ctx, playerID)
}

// EventNames returns the flow events players may dispatch.
func (g *Game) EventNames() []string {
	return g.flow().EventNames()
}

// CanPlayerMakeMove reports whether the player may act on the current
// state under the game's flow rules.
func (g *Game) CanPlayerMakeMove(state any, ctx Ctx, playerID string) bool {
	return g.flow().CanPlayerMakeMove(state, ctx, playerID)
}

// flow returns the game's flow, substituting the default turn-based
// flow when none is configured.
func (g *Game) flow() *Flow {
	if g.Flow == nil {
		g.Flow = &Flow{}
	}
	return g.Flow
}
