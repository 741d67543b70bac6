package game

import "strconv"

// EventEndTurn passes the turn to the next player in order.
const EventEndTurn = "endTurn"

// Flow owns the turn structure of a game: when turns end, when the
// game ends, and which flow events players may trigger directly.
type Flow struct {
	// EndTurnIf ends the turn automatically after a move when it
	// returns true.
	EndTurnIf func(g any, ctx Ctx) bool
	// EndGameIf inspects the state after every move and event; a
	// non-nil result becomes ctx.Gameover.
	EndGameIf func(g any, ctx Ctx) any
	// FirstPlayer overrides the player that opens the game.
	// Defaults to "0".
	FirstPlayer string
}

// EventNames returns the flow events players may dispatch.
func (f *Flow) EventNames() []string {
	return []string{EventEndTurn}
}

// CanPlayerMakeMove reports whether the player may act on the current
// state. The game being over always means no.
func (f *Flow) CanPlayerMakeMove(g any, ctx Ctx, playerID string) bool {
	if ctx.Gameover != nil {
		return false
	}
	for _, p := range ctx.ActionPlayers {
		if p == playerID {
			return true
		}
	}
	return false
}

// setup builds the initial flow context for a game of numPlayers.
func (f *Flow) setup(numPlayers int) Ctx {
	first := f.FirstPlayer
	if first == "" {
		first = "0"
	}
	return Ctx{
		NumPlayers:    numPlayers,
		Turn:          0,
		CurrentPlayer: first,
		ActionPlayers: []string{first},
	}
}

// processEvent applies a named flow event and returns the new context.
// Unknown events leave the context unchanged and report false.
func (f *Flow) processEvent(g any, ctx Ctx, name string) (Ctx, bool) {
	switch name {
	case EventEndTurn:
		return f.endTurn(ctx), true
	default:
		return ctx, false
	}
}

// endTurn advances to the next player in numeric order, wrapping at
// NumPlayers, and bumps the turn counter.
func (f *Flow) endTurn(ctx Ctx) Ctx {
	cur, err := strconv.Atoi(ctx.CurrentPlayer)
	if err != nil {
		cur = 0
	}
	next := strconv.Itoa((cur + 1) % ctx.NumPlayers)
	ctx.CurrentPlayer = next
	ctx.ActionPlayers = []string{next}
	ctx.Turn++
	return ctx
}

// afterAction runs the automatic flow hooks that follow every applied
// move or event: game-over detection first, then automatic turn end.
func (f *Flow) afterAction(g any, ctx Ctx) Ctx {
	if ctx.Gameover == nil && f.EndGameIf != nil {
		if result := f.EndGameIf(g, ctx); result != nil {
			ctx.Gameover = result
			return ctx
		}
	}
	if ctx.Gameover == nil && f.EndTurnIf != nil && f.EndTurnIf(g, ctx) {
		ctx = f.endTurn(ctx)
	}
	return ctx
}
