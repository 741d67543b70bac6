// Package action defines the closed set of actions the game store
// recognizes. Every state transition in the system, local or remote,
// is expressed as one of these values.
package action

import "time"

// Type identifies the kind of an action. The set is closed: the
// reducer and the client's log reconciliation switch over exactly
// these values.
type Type string

const (
	MakeMove  Type = "MAKE_MOVE"
	GameEvent Type = "GAME_EVENT"
	Reset     Type = "RESET"
	Undo      Type = "UNDO"
	Redo      Type = "REDO"
	// Update is a partial sync from the remote authority: an
	// authoritative state plus the incremental log entries that
	// produced it.
	Update Type = "UPDATE"
	// Sync is a full sync from the remote authority: an authoritative
	// state plus the complete log.
	Sync Type = "SYNC"
)

// Payload carries the move or event a player is attempting.
// PlayerID may be empty, meaning the acting player is unassigned;
// single-player clients resolve it to the current player at dispatch
// time, multiplayer clients pass it through for the server to judge.
type Payload struct {
	Name        string `json:"name"`
	Args        []any  `json:"args,omitempty"`
	PlayerID    string `json:"playerID,omitempty"`
	Credentials string `json:"credentials,omitempty"`
	// Metadata is attached by an autoplay strategy to describe how it
	// chose this action. Opaque to the reducer.
	Metadata any `json:"metadata,omitempty"`
}

// LogEntry records one applied move or event. Entries are produced by
// the reducer, never mutated afterwards, and only ever appended,
// replaced wholesale, or cleared.
type LogEntry struct {
	Type    Type      `json:"type"`
	Payload Payload   `json:"payload"`
	Turn    int       `json:"turn"`
	Time    time.Time `json:"time"`
}

// Action is the single unit of work dispatched into a store.
// Which fields are meaningful depends on Type:
//
//   - MakeMove/GameEvent use Payload.
//   - Update/Sync use State (the authoritative *game.State, kept
//     untyped here to avoid a dependency cycle with the reducer
//     package) plus Deltalog or Log respectively.
//   - Reset/Undo/Redo carry nothing.
type Action struct {
	Type     Type       `json:"type"`
	Payload  Payload    `json:"payload,omitempty"`
	State    any        `json:"state,omitempty"`
	Log      []LogEntry `json:"log,omitempty"`
	Deltalog []LogEntry `json:"deltalog,omitempty"`
}

// NewMakeMove builds a move action for the named move.
func NewMakeMove(name string, args []any, playerID, credentials string) Action {
	return Action{
		Type: MakeMove,
		Payload: Payload{
			Name:        name,
			Args:        args,
			PlayerID:    playerID,
			Credentials: credentials,
		},
	}
}

// NewGameEvent builds a game-event action for the named flow event.
func NewGameEvent(name string, args []any, playerID, credentials string) Action {
	return Action{
		Type: GameEvent,
		Payload: Payload{
			Name:        name,
			Args:        args,
			PlayerID:    playerID,
			Credentials: credentials,
		},
	}
}

// NewReset builds an action restoring the initial game state.
func NewReset() Action { return Action{Type: Reset} }

// NewUndo builds an action reverting the most recent move.
func NewUndo() Action { return Action{Type: Undo} }

// NewRedo builds an action re-applying the most recently undone move.
func NewRedo() Action { return Action{Type: Redo} }

// NewUpdate builds a partial-sync action carrying an authoritative
// state and the incremental log entries that produced it.
func NewUpdate(state any, deltalog []LogEntry) Action {
	return Action{Type: Update, State: state, Deltalog: deltalog}
}

// NewSync builds a full-sync action carrying an authoritative state
// and the complete log.
func NewSync(state any, log []LogEntry) Action {
	return Action{Type: Sync, State: state, Log: log}
}
