package game

import (
	"time"

	"github.com/sachgits/boardgame.io/internal/action"
)

// Reducer transitions a State by one action. Reducers are pure: the
// same state and action always produce the same result, and the input
// state is never mutated.
type Reducer func(s State, act action.Action) State

// ReducerConfig configures NewReducer.
type ReducerConfig struct {
	Game       *Game
	NumPlayers int
	// Multiplayer disables local undo/redo; the remote authority owns
	// history in that mode.
	Multiplayer bool
}

// NewReducer builds the reducer for a game along with the initial
// state it reduces from.
func NewReducer(cfg ReducerConfig) (Reducer, State) {
	g := cfg.Game
	flow := g.flow()

	numPlayers := cfg.NumPlayers
	if numPlayers <= 0 {
		numPlayers = 2
	}

	initial := State{
		Ctx: flow.setup(numPlayers),
	}
	if g.Setup != nil {
		initial.G = g.Setup(numPlayers)
	}

	reducer := func(s State, act action.Action) State {
		switch act.Type {
		case action.MakeMove:
			// In multiplayer mode moves are judged and applied by the
			// remote authority; the result arrives as an update. The
			// deltalog is cleared so observers never re-read entries
			// from a previous action.
			if cfg.Multiplayer {
				s.Deltalog = nil
				return s
			}
			return applyMove(g, flow, s, act)

		case action.GameEvent:
			if cfg.Multiplayer {
				s.Deltalog = nil
				return s
			}
			return applyEvent(g, flow, s, act)

		case action.Reset:
			fresh := initial
			return fresh

		case action.Undo:
			if cfg.Multiplayer || len(s.undo) == 0 {
				return s
			}
			top := s.undo[len(s.undo)-1]
			s.redo = append(s.redo, Snapshot{G: s.G, Ctx: s.Ctx})
			s.undo = s.undo[:len(s.undo)-1]
			s.G, s.Ctx = top.G, top.Ctx
			return s

		case action.Redo:
			if cfg.Multiplayer || len(s.redo) == 0 {
				return s
			}
			top := s.redo[len(s.redo)-1]
			s.undo = append(s.undo, Snapshot{G: s.G, Ctx: s.Ctx})
			s.redo = s.redo[:len(s.redo)-1]
			s.G, s.Ctx = top.G, top.Ctx
			return s

		case action.Update:
			remote, ok := act.State.(State)
			if !ok {
				return s
			}
			remote.Log = append(s.Log, act.Deltalog...)
			remote.Deltalog = act.Deltalog
			return remote

		case action.Sync:
			remote, ok := act.State.(State)
			if !ok {
				return s
			}
			remote.Log = act.Log
			remote.Deltalog = nil
			return remote

		default:
			return s
		}
	}

	return reducer, initial
}

// applyMove runs one named move through the game and its flow hooks.
// Unknown moves, moves by a player who may not act, and moves the game
// rejects (nil result) all leave the state untouched.
func applyMove(g *Game, flow *Flow, s State, act action.Action) State {
	fn, ok := g.Moves[act.Payload.Name]
	if !ok {
		return s
	}
	if g.HydrateG != nil {
		s.G = g.HydrateG(s.G)
	}
	if !flow.CanPlayerMakeMove(s.G, s.Ctx, act.Payload.PlayerID) {
		return s
	}

	newG := fn(s.G, s.Ctx, act.Payload.Args...)
	if newG == nil {
		return s
	}

	s.undo = append(s.undo, Snapshot{G: s.G, Ctx: s.Ctx})
	s.redo = nil

	entry := action.LogEntry{
		Type:    action.MakeMove,
		Payload: act.Payload,
		Turn:    s.Ctx.Turn,
		Time:    time.Now().UTC(),
	}

	s.G = newG
	s.Ctx = flow.afterAction(newG, s.Ctx)
	s.Deltalog = []action.LogEntry{entry}
	s.Log = append(s.Log, entry)
	s.StateID++
	return s
}

// applyEvent runs one flow event. Events are rejected once the game
// is over; unknown event names are ignored.
func applyEvent(g *Game, flow *Flow, s State, act action.Action) State {
	if s.Ctx.Gameover != nil {
		return s
	}
	if g.HydrateG != nil {
		s.G = g.HydrateG(s.G)
	}

	ctx, ok := flow.processEvent(s.G, s.Ctx, act.Payload.Name)
	if !ok {
		return s
	}

	entry := action.LogEntry{
		Type:    action.GameEvent,
		Payload: act.Payload,
		Turn:    s.Ctx.Turn,
		Time:    time.Now().UTC(),
	}

	s.Ctx = flow.afterAction(s.G, ctx)
	s.Deltalog = []action.LogEntry{entry}
	s.Log = append(s.Log, entry)
	s.StateID++
	return s
}
