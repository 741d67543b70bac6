package transport

import (
	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
)

// MessageType tags a wire frame.
type MessageType string

const (
	// MsgSync requests a full sync (client to server) or delivers one
	// (server to client).
	MsgSync MessageType = "sync"
	// MsgUpdate delivers an incremental authoritative update.
	MsgUpdate MessageType = "update"
	// MsgAction forwards a client move or event to the server.
	MsgAction MessageType = "action"
)

// WireState is the player-filtered state snapshot carried by sync and
// update frames.
type WireState struct {
	G       any      `json:"G"`
	Ctx     game.Ctx `json:"ctx"`
	StateID int      `json:"_stateID"`
}

// Message is one JSON frame on the websocket. Which fields are set
// depends on Type.
type Message struct {
	Type       MessageType       `json:"type"`
	GameID     string            `json:"gameID,omitempty"`
	PlayerID   string            `json:"playerID,omitempty"`
	NumPlayers int               `json:"numPlayers,omitempty"`
	StateID    int               `json:"stateID,omitempty"`
	ActionType action.Type       `json:"actionType,omitempty"`
	Action     *action.Payload   `json:"action,omitempty"`
	State      *WireState        `json:"state,omitempty"`
	Log        []action.LogEntry `json:"log,omitempty"`
	Deltalog   []action.LogEntry `json:"deltalog,omitempty"`
}

// stateFromWire converts a wire snapshot into store state.
func stateFromWire(ws *WireState, g *game.Game) game.State {
	s := game.State{
		G:       ws.G,
		Ctx:     ws.Ctx,
		StateID: ws.StateID,
	}
	if g != nil && g.HydrateG != nil {
		s.G = g.HydrateG(s.G)
	}
	return s
}
