package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/store"
)

type deckG struct {
	Drawn []any
}

type deckView struct {
	ViewerID string
	Drawn    []any
}

// deckGame draws cards and can be won explicitly; its player view
// stamps the viewer so projection is observable.
func deckGame() *game.Game {
	return &game.Game{
		Name: "deck",
		Setup: func(int) any {
			return deckG{}
		},
		Moves: map[string]game.MoveFn{
			"draw": func(g any, ctx game.Ctx, args ...any) any {
				d := g.(deckG)
				return deckG{Drawn: append(append([]any(nil), d.Drawn...), args...)}
			},
			"win": func(g any, ctx game.Ctx, args ...any) any {
				d := g.(deckG)
				return deckG{Drawn: append(append([]any(nil), d.Drawn...), "win")}
			},
		},
		Flow: &game.Flow{
			EndGameIf: func(g any, ctx game.Ctx) any {
				for _, card := range g.(deckG).Drawn {
					if card == "win" {
						return "won"
					}
				}
				return nil
			},
		},
		PlayerView: func(g any, ctx game.Ctx, playerID string) any {
			return deckView{ViewerID: playerID, Drawn: g.(deckG).Drawn}
		},
	}
}

// fakeTransport satisfies the transport contract in-process, letting
// tests deliver remote actions straight into the client's store.
type fakeTransport struct {
	store     *store.Store
	connected bool
	callbacks []func()
	playerID  string
	gameID    string
	syncs     int
}

func (f *fakeTransport) CreateStore(reducer game.Reducer, initial game.State, mws ...store.Middleware) *store.Store {
	f.store = store.New(reducer, initial, mws...)
	return f.store
}

func (f *fakeTransport) Connect() error {
	f.connected = true
	for _, fn := range f.callbacks {
		fn()
	}
	return nil
}

func (f *fakeTransport) Subscribe(fn func())  { f.callbacks = append(f.callbacks, fn) }
func (f *fakeTransport) IsConnected() bool    { return f.connected }
func (f *fakeTransport) UpdatePlayerID(id string) { f.playerID = id; f.syncs++ }
func (f *fakeTransport) UpdateGameID(id string)   { f.gameID = id; f.syncs++ }

func (f *fakeTransport) deliver(act action.Action) { f.store.Dispatch(act) }

func newLocalClient(t *testing.T, playerID string) *Client {
	t.Helper()
	return New(Config{
		Game:       deckGame(),
		NumPlayers: 2,
		GameID:     "default",
		PlayerID:   playerID,
	})
}

func newMultiplayerClient(t *testing.T, playerID string) (*Client, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	c := New(Config{
		Game:        deckGame(),
		NumPlayers:  2,
		GameID:      "default",
		PlayerID:    playerID,
		Multiplayer: Multiplayer{Enabled: true},
		Transport:   tr,
	})
	return c, tr
}

// scriptedBot returns a fixed action and records the player it was
// asked to act for.
type scriptedBot struct {
	move     string
	args     []any
	metadata any
	ok       bool

	askedFor string
}

func (b *scriptedBot) Play(state game.State, playerID string) (action.Action, any, bool) {
	b.askedFor = playerID
	if !b.ok {
		return action.Action{}, nil, false
	}
	return action.NewMakeMove(b.move, b.args, playerID, ""), b.metadata, true
}

func TestStepDispatchesBotAction(t *testing.T) {
	b := &scriptedBot{move: "draw", args: []any{"ace"}, metadata: "scripted", ok: true}
	c := New(Config{
		Game:       deckGame(),
		NumPlayers: 2,
		GameID:     "default",
		AI:         b,
	})

	act, err := c.Step()
	require.NoError(t, err)
	require.NotNil(t, act)

	// The bot acts for the player expected to act, and its metadata
	// rides on the dispatched payload.
	assert.Equal(t, "0", b.askedFor)
	assert.Equal(t, "draw", act.Payload.Name)
	assert.Equal(t, "scripted", act.Payload.Metadata)

	view := c.State()
	assert.Equal(t, deckView{ViewerID: "", Drawn: []any{"ace"}}, view.G)
	require.Len(t, view.Log, 1)
	assert.Equal(t, "scripted", view.Log[0].Payload.Metadata)
}

func TestStepBotDeclines(t *testing.T) {
	c := New(Config{
		Game:       deckGame(),
		NumPlayers: 2,
		GameID:     "default",
		AI:         &scriptedBot{ok: false},
	})

	act, err := c.Step()
	assert.NoError(t, err)
	assert.Nil(t, act)
	assert.Empty(t, c.State().Log)
}

func TestStepRequiresLocalBot(t *testing.T) {
	c := newLocalClient(t, "")
	_, err := c.Step()
	assert.ErrorIs(t, err, ErrNoBot)

	tr := &fakeTransport{}
	mc := New(Config{
		Game:        deckGame(),
		NumPlayers:  2,
		GameID:      "default",
		AI:          &scriptedBot{move: "draw", ok: true},
		Multiplayer: Multiplayer{Enabled: true},
		Transport:   tr,
	})
	_, err = mc.Step()
	assert.ErrorIs(t, err, ErrNoBot)
}

func TestHotseatAlwaysActive(t *testing.T) {
	c := newLocalClient(t, "")

	require.True(t, c.State().IsActive)
	c.Events()[game.EventEndTurn]()
	assert.True(t, c.State().IsActive, "unassigned single-player client stays active on any turn")
	c.Events()[game.EventEndTurn]()
	assert.True(t, c.State().IsActive)
}

func TestHotseatResolvesCurrentPlayer(t *testing.T) {
	c := newLocalClient(t, "")

	c.Moves()["draw"]("ace")
	view := c.State()
	require.Len(t, view.Log, 1)
	assert.Equal(t, "0", view.Log[0].Payload.PlayerID)

	c.Events()[game.EventEndTurn]()
	c.Moves()["draw"]("king")
	view = c.State()
	require.Len(t, view.Log, 3)
	assert.Equal(t, "1", view.Log[2].Payload.PlayerID)
}

func TestSinglePlayerConfiguredActivity(t *testing.T) {
	c := newLocalClient(t, "1")

	// Turn 0 belongs to player 0.
	assert.False(t, c.State().IsActive)

	c.Events()[game.EventEndTurn]()
	assert.True(t, c.State().IsActive)

	c.Moves()["win"]()
	view := c.State()
	require.NotNil(t, view.Ctx.Gameover)
	assert.False(t, view.IsActive, "game over always means inactive")
}

func TestMultiplayerActivity(t *testing.T) {
	c0, tr0 := newMultiplayerClient(t, "0")
	c1, tr1 := newMultiplayerClient(t, "1")

	remote := game.State{
		G:       deckG{},
		Ctx:     game.Ctx{NumPlayers: 2, CurrentPlayer: "0", ActionPlayers: []string{"0"}},
		StateID: 1,
	}
	tr0.deliver(action.NewSync(remote, nil))
	tr1.deliver(action.NewSync(remote, nil))

	assert.True(t, c0.State().IsActive)
	assert.False(t, c1.State().IsActive)

	over := remote
	over.Ctx.Gameover = "won"
	tr0.deliver(action.NewSync(over, nil))
	assert.False(t, c0.State().IsActive)
}

func TestMoveAppendsDeltalogEntries(t *testing.T) {
	c := newLocalClient(t, "")

	c.Moves()["draw"](1)
	c.Moves()["draw"](2)
	c.Events()[game.EventEndTurn]()

	log := c.State().Log
	require.Len(t, log, 3)
	assert.Equal(t, "draw", log[0].Payload.Name)
	assert.Equal(t, []any{1}, log[0].Payload.Args)
	assert.Equal(t, "draw", log[1].Payload.Name)
	assert.Equal(t, []any{2}, log[1].Payload.Args)
	assert.Equal(t, game.EventEndTurn, log[2].Payload.Name)
}

func TestResetClearsLog(t *testing.T) {
	c := newLocalClient(t, "")

	c.Moves()["draw"](1)
	c.Moves()["draw"](2)
	require.Len(t, c.State().Log, 2)

	c.Reset()
	assert.Empty(t, c.State().Log)
	assert.Equal(t, deckView{ViewerID: "", Drawn: nil}, c.State().G)
}

func TestSyncReplacesLogWholesale(t *testing.T) {
	c, tr := newMultiplayerClient(t, "0")

	tr.deliver(action.NewUpdate(
		game.State{G: deckG{}, Ctx: game.Ctx{NumPlayers: 2}, StateID: 1},
		[]action.LogEntry{{Type: action.MakeMove, Payload: action.Payload{Name: "old"}}},
	))
	require.Len(t, c.State().Log, 1)

	remoteLog := []action.LogEntry{
		{Type: action.MakeMove, Payload: action.Payload{Name: "a"}},
		{Type: action.MakeMove, Payload: action.Payload{Name: "b"}},
	}
	tr.deliver(action.NewSync(
		game.State{G: deckG{}, Ctx: game.Ctx{NumPlayers: 2}, StateID: 2},
		remoteLog,
	))

	assert.Equal(t, remoteLog, c.State().Log, "sync replaces, never appends")
}

func TestUpdateAppendsWithoutAlteringPrior(t *testing.T) {
	c, tr := newMultiplayerClient(t, "0")

	first := []action.LogEntry{{Type: action.MakeMove, Payload: action.Payload{Name: "a"}}}
	second := []action.LogEntry{
		{Type: action.MakeMove, Payload: action.Payload{Name: "b"}},
		{Type: action.GameEvent, Payload: action.Payload{Name: game.EventEndTurn}},
	}

	tr.deliver(action.NewUpdate(game.State{G: deckG{}, StateID: 1}, first))
	tr.deliver(action.NewUpdate(game.State{G: deckG{}, StateID: 2}, second))

	log := c.State().Log
	require.Len(t, log, 3)
	assert.Equal(t, "a", log[0].Payload.Name)
	assert.Equal(t, "b", log[1].Payload.Name)
	assert.Equal(t, game.EventEndTurn, log[2].Payload.Name)
}

func TestUpdateWithoutDeltalogIsNoop(t *testing.T) {
	c, tr := newMultiplayerClient(t, "0")

	tr.deliver(action.NewUpdate(game.State{G: deckG{}, StateID: 1}, nil))
	assert.Empty(t, c.State().Log)
}

func TestScenarioSinglePlayerDraw(t *testing.T) {
	// Single-player, 2 players, no configured player id: dispatch
	// draw(1) and observe the mirror grow by the reducer's delta and
	// the view reflect the unassigned player projection.
	c := newLocalClient(t, "")

	c.Moves()["draw"](1)

	view := c.State()
	require.Len(t, view.Log, 1)
	assert.Equal(t, deckView{ViewerID: "", Drawn: []any{1}}, view.G)
	assert.True(t, view.IsActive)
}

func TestScenarioMultiplayerSyncOfThree(t *testing.T) {
	c, tr := newMultiplayerClient(t, "0")

	remoteLog := []action.LogEntry{
		{Type: action.MakeMove, Payload: action.Payload{Name: "a", PlayerID: "0"}},
		{Type: action.MakeMove, Payload: action.Payload{Name: "b", PlayerID: "1"}},
		{Type: action.GameEvent, Payload: action.Payload{Name: game.EventEndTurn, PlayerID: "1"}},
	}
	tr.deliver(action.NewSync(game.State{G: deckG{}, Ctx: game.Ctx{NumPlayers: 2}, StateID: 3}, remoteLog))

	log := c.State().Log
	require.Len(t, log, 3)
	assert.Equal(t, remoteLog, log)
}

func TestDispatchersTargetUpdatedPlayerID(t *testing.T) {
	var captured []action.Action
	capture := func(s *store.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(act action.Action) {
				next(act)
				captured = append(captured, act)
			}
		}
	}

	c := New(Config{
		Game:       deckGame(),
		NumPlayers: 2,
		GameID:     "default",
		PlayerID:   "0",
		Enhancer:   capture,
	})

	before := c.Moves()
	c.UpdatePlayerID("1")

	// Both the freshly read set and the previously obtained one stamp
	// the new identity: dispatchers read identity at call time.
	c.Moves()["draw"](1)
	before["draw"](2)

	require.Len(t, captured, 2)
	assert.Equal(t, "1", captured[0].Payload.PlayerID)
	assert.Equal(t, "1", captured[1].Payload.PlayerID)
}

func TestUpdateCredentialsStampsActions(t *testing.T) {
	var captured []action.Action
	capture := func(s *store.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(act action.Action) {
				next(act)
				captured = append(captured, act)
			}
		}
	}

	c := New(Config{
		Game:       deckGame(),
		NumPlayers: 2,
		GameID:     "default",
		Enhancer:   capture,
	})

	c.UpdateCredentials("secret")
	c.Moves()["draw"](1)

	require.Len(t, captured, 1)
	assert.Equal(t, "secret", captured[0].Payload.Credentials)
}

func TestEnhancerObservesLogUpdatedDispatch(t *testing.T) {
	var observed int
	var c *Client
	enhancer := func(s *store.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(act action.Action) {
				next(act)
				observed = len(c.State().Log)
			}
		}
	}

	c = New(Config{
		Game:       deckGame(),
		NumPlayers: 2,
		GameID:     "default",
		Enhancer:   enhancer,
	})

	c.Moves()["draw"](1)
	assert.Equal(t, 1, observed, "caller middleware sees the mirror already reconciled")
}

func TestIsConnectedPresence(t *testing.T) {
	local := newLocalClient(t, "")
	assert.Nil(t, local.State().IsConnected)

	c, tr := newMultiplayerClient(t, "0")
	view := c.State()
	require.NotNil(t, view.IsConnected)
	assert.False(t, *view.IsConnected)

	require.NoError(t, c.Connect())
	view = c.State()
	require.NotNil(t, view.IsConnected)
	assert.True(t, *view.IsConnected)
	assert.True(t, tr.connected)
}

func TestIdentityUpdatesPropagateToTransport(t *testing.T) {
	c, tr := newMultiplayerClient(t, "0")

	c.UpdatePlayerID("1")
	assert.Equal(t, "1", tr.playerID)
	assert.Equal(t, "1", c.PlayerID())

	c.UpdateGameID("other")
	assert.Equal(t, "other", tr.gameID)
	assert.Equal(t, "other", c.GameID())

	assert.Equal(t, 2, tr.syncs)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	c := newLocalClient(t, "")

	c.Moves()["draw"](1)
	require.Equal(t, deckView{ViewerID: "", Drawn: []any{1}}, c.State().G)

	c.Undo()
	assert.Equal(t, deckView{ViewerID: "", Drawn: nil}, c.State().G)

	c.Redo()
	assert.Equal(t, deckView{ViewerID: "", Drawn: []any{1}}, c.State().G)
}

func TestSubscribeNotifiedOnDispatch(t *testing.T) {
	c := newLocalClient(t, "")

	notified := 0
	c.Subscribe(func() { notified++ })

	c.Moves()["draw"](1)
	c.Events()[game.EventEndTurn]()

	assert.Equal(t, 2, notified)
}
