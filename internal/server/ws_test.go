package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/client"
	"github.com/sachgits/boardgame.io/internal/game"
	"github.com/sachgits/boardgame.io/internal/storage"
	"github.com/sachgits/boardgame.io/internal/transport"
)

type sumG struct {
	Total int `json:"total"`
}

func sumGame() *game.Game {
	hydrate := func(g any) any {
		if s, ok := g.(sumG); ok {
			return s
		}
		raw, err := json.Marshal(g)
		if err != nil {
			return g
		}
		var s sumG
		if err := json.Unmarshal(raw, &s); err != nil {
			return g
		}
		return s
	}
	return &game.Game{
		Name: "sum",
		Setup: func(int) any {
			return sumG{}
		},
		Moves: map[string]game.MoveFn{
			"add": func(g any, ctx game.Ctx, args ...any) any {
				return sumG{Total: g.(sumG).Total + 1}
			},
		},
		Flow: &game.Flow{
			EndTurnIf: func(g any, ctx game.Ctx) bool { return true },
		},
		HydrateG: hydrate,
	}
}

func wsClient(t *testing.T, host, playerID string) *client.Client {
	t.Helper()
	c := client.New(client.Config{
		Game:       sumGame(),
		NumPlayers: 2,
		GameID:     "table-1",
		PlayerID:   playerID,
		Multiplayer: client.Multiplayer{
			Enabled: true,
			Server:  host,
		},
	})
	require.NoError(t, c.Connect())
	return c
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 10*time.Millisecond, msg)
}

func TestGatewayEndToEnd(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	s.RegisterGame(sumGame())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	host := strings.TrimPrefix(ts.URL, "http://")

	c0 := wsClient(t, host, "0")
	c1 := wsClient(t, host, "1")

	// Both clients receive the initial sync.
	eventually(t, func() bool {
		return c0.State().Ctx.NumPlayers == 2 && c1.State().Ctx.NumPlayers == 2
	}, "initial sync never arrived")
	assert.Equal(t, sumG{}, c0.State().G)

	c0.Moves()["add"]()

	// The accepted move fans out to every seat.
	eventually(t, func() bool {
		return c0.State().G == sumG{Total: 1} && c1.State().G == sumG{Total: 1}
	}, "update never fanned out")

	v0, v1 := c0.State(), c1.State()
	assert.Equal(t, "1", v0.Ctx.CurrentPlayer)
	require.Len(t, v0.Log, 1)
	assert.Equal(t, "add", v0.Log[0].Payload.Name)
	assert.Equal(t, "0", v0.Log[0].Payload.PlayerID)
	require.Len(t, v1.Log, 1)

	assert.False(t, v0.IsActive)
	assert.True(t, v1.IsActive)

	// Out-of-turn moves are refused server-side; nothing changes.
	c0.Moves()["add"]()
	c1.Moves()["add"]()
	eventually(t, func() bool {
		return c0.State().G == sumG{Total: 2} && c1.State().G == sumG{Total: 2}
	}, "second update never fanned out")
	assert.Len(t, c0.State().Log, 2)
}

func TestGatewayLateJoinerSyncsLog(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	s.RegisterGame(sumGame())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	host := strings.TrimPrefix(ts.URL, "http://")

	c0 := wsClient(t, host, "0")
	eventually(t, func() bool { return c0.State().Ctx.NumPlayers == 2 }, "initial sync never arrived")
	c0.Moves()["add"]()
	eventually(t, func() bool { return c0.State().G == sumG{Total: 1} }, "update never arrived")

	spectator := wsClient(t, host, "")
	eventually(t, func() bool { return len(spectator.State().Log) == 1 }, "spectator never synced")

	view := spectator.State()
	assert.Equal(t, sumG{Total: 1}, view.G)
	assert.Equal(t, "add", view.Log[0].Payload.Name)
	assert.False(t, view.IsActive)
}

func TestSendToTornDownConnection(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	s.RegisterGame(sumGame())

	c := &conn{
		send:   make(chan transport.Message, 1),
		logger: s.logger,
	}
	c.bind("table-1", "0")
	s.join("table-1", c)

	// The connection tears down after a sender has already seen it in
	// the room; the late enqueue must be dropped, not panic.
	c.shutdown()
	s.Send("table-1", "0", action.NewSync(game.State{}, nil))

	// Teardown is idempotent, and direct enqueues after it are no-ops.
	c.shutdown()
	c.enqueue(transport.Message{Type: transport.MsgSync})
}

func TestGatewayUnknownGameRejected(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	host := strings.TrimPrefix(ts.URL, "http://")

	tr := transport.NewSocket(transport.Options{
		Game:     sumGame(),
		GameName: "unregistered",
		Server:   host,
	})
	assert.Error(t, tr.Connect())
}
